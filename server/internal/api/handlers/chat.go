package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsx/collab/server/internal/api/middleware"
	"github.com/opsx/collab/server/internal/metrics"
	"github.com/opsx/collab/server/internal/store"
	wshandlers "github.com/opsx/collab/server/internal/websocket/handlers"
	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
)

// ChatHandler serves project chat history and REST-posted messages.
type ChatHandler struct {
	history      store.History
	stakeholders StakeholderStore
	broadcaster  Broadcaster
	now          func() time.Time
	newID        func() string
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(
	history store.History,
	stakeholders StakeholderStore,
	broadcaster Broadcaster,
	now func() time.Time,
	newID func() string,
) *ChatHandler {
	return &ChatHandler{
		history:      history,
		stakeholders: stakeholders,
		broadcaster:  broadcaster,
		now:          now,
		newID:        newID,
	}
}

// ListMessages serves GET /v1/projects/:id/chat/messages?limit=.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	project, ok := projectID(c)
	if !ok {
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 0 {
			fail(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = l
	}

	msgs, err := h.history.Recent(c.Request.Context(), project, limit)
	if err != nil {
		logger.Errorf("List chat messages (project %s): %v", project, err)
		fail(c, http.StatusInternalServerError, "failed to load messages")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(msgs))
}

// PostMessage serves POST /v1/projects/:id/chat/message. The author is the
// named stakeholder when stakeholder_id is given, otherwise the caller with
// the supplied role.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	project, ok := projectID(c)
	if !ok {
		return
	}

	var req wire.SendChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		fail(c, http.StatusBadRequest, "message is required")
		return
	}
	if len(text) > wshandlers.MaxMessageLength {
		fail(c, http.StatusBadRequest, "message is too long")
		return
	}

	userID, _ := middleware.GetUserID(c)
	msg := wire.ChatMessage{
		ID:         wire.ID(h.newID()),
		ProjectID:  wire.ID(project),
		AuthorID:   wire.ID(userID),
		AuthorName: req.AuthorName,
		Text:       text,
		Timestamp:  h.now().UTC().Format(wire.TimestampLayout),
		IsAI:       req.IsAI,
	}

	if req.StakeholderID != "" {
		st, err := h.stakeholders.GetStakeholder(c.Request.Context(), project, req.StakeholderID)
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "stakeholder not found")
			return
		}
		if err != nil {
			logger.Errorf("Load stakeholder %s: %v", req.StakeholderID, err)
			fail(c, http.StatusInternalServerError, "failed to load stakeholder")
			return
		}
		msg.AuthorID = wire.ID(st.ID)
		msg.AuthorName = st.Name
		msg.Role = st.Role
	} else {
		rawRole := string(req.Role)
		if claims, found := middleware.GetClaims(c); found {
			if rawRole == "" {
				rawRole = claims.Role
			}
			if msg.AuthorName == "" {
				msg.AuthorName = claims.Name
			}
		}
		role, err := wire.ParseRole(rawRole)
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		msg.Role = role
	}

	if err := h.history.Append(c.Request.Context(), msg); err != nil {
		logger.Errorf("Store chat message (project %s): %v", project, err)
		fail(c, http.StatusInternalServerError, "failed to store message")
		return
	}
	metrics.ChatMessagesPosted.WithLabelValues("rest").Inc()

	h.broadcaster.Broadcast(project, wire.EventChatMessage, wire.ChatBatch{
		ProjectID: msg.ProjectID,
		Messages:  []wire.ChatMessage{msg},
	})
	respond(c, http.StatusCreated, msg)
}
