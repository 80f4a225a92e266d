package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opsx/collab/shared/wire"
)

// Broadcaster pushes an event to every socket in a room.
type Broadcaster interface {
	Broadcast(room, event string, payload any)
}

// AgentStore is the agent storage used by REST handlers.
type AgentStore interface {
	UpsertAgent(ctx context.Context, agent wire.Agent) (wire.Agent, error)
	ListAgents(ctx context.Context, projectID string) ([]wire.Agent, error)
}

// StakeholderStore is the stakeholder storage used by REST handlers.
type StakeholderStore interface {
	CreateStakeholder(ctx context.Context, st wire.Stakeholder) (wire.Stakeholder, error)
	GetStakeholder(ctx context.Context, projectID, id string) (wire.Stakeholder, error)
	ListStakeholders(ctx context.Context, projectID string) ([]wire.Stakeholder, error)
}

func respond[T any](c *gin.Context, status int, data T) {
	c.JSON(status, wire.APIResponse[T]{Success: true, Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, wire.APIResponse[any]{Success: false, Error: msg})
}

// emptyIfNil keeps list responses as JSON arrays.
func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func projectID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" {
		fail(c, http.StatusBadRequest, "project id is required")
		return "", false
	}
	return id, true
}
