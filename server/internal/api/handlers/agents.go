package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opsx/collab/server/internal/metrics"
	wshandlers "github.com/opsx/collab/server/internal/websocket/handlers"
	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
)

type AgentHandler struct {
	agents      AgentStore
	broadcaster Broadcaster
}

func NewAgentHandler(agents AgentStore, broadcaster Broadcaster) *AgentHandler {
	return &AgentHandler{agents: agents, broadcaster: broadcaster}
}

// ListAgents serves GET /v1/projects/:id/agents.
func (h *AgentHandler) ListAgents(c *gin.Context) {
	project, ok := projectID(c)
	if !ok {
		return
	}

	agents, err := h.agents.ListAgents(c.Request.Context(), project)
	if err != nil {
		logger.Errorf("List agents (project %s): %v", project, err)
		fail(c, http.StatusInternalServerError, "failed to list agents")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(agents))
}

// UpdateStatus serves POST /v1/projects/:id/agents/:agentId/status and
// broadcasts the merged record as agent:status.
func (h *AgentHandler) UpdateStatus(c *gin.Context) {
	project, ok := projectID(c)
	if !ok {
		return
	}

	var req wire.UpdateAgentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	agent := wire.Agent{
		ID:            wire.ID(c.Param("agentId")),
		ProjectID:     wire.ID(project),
		Type:          req.Type,
		Name:          req.Name,
		Status:        req.Status,
		CurrentTask:   req.CurrentTask,
		AgentverseURL: req.AgentverseURL,
	}
	if err := wshandlers.ValidateAgent(agent); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	merged, err := h.agents.UpsertAgent(c.Request.Context(), agent)
	if err != nil {
		logger.Errorf("Store agent status (agent %s): %v", agent.ID, err)
		fail(c, http.StatusInternalServerError, "failed to store agent status")
		return
	}
	metrics.AgentStatusUpdates.WithLabelValues(string(merged.Status)).Inc()

	h.broadcaster.Broadcast(project, wire.EventAgentStatus, merged)
	respond(c, http.StatusOK, merged)
}
