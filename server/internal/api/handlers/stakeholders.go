package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
)

type StakeholderHandler struct {
	store StakeholderStore
	now   func() time.Time
	newID func() string
}

func NewStakeholderHandler(store StakeholderStore, now func() time.Time, newID func() string) *StakeholderHandler {
	return &StakeholderHandler{store: store, now: now, newID: newID}
}

// ListStakeholders serves GET /v1/projects/:id/stakeholders.
func (h *StakeholderHandler) ListStakeholders(c *gin.Context) {
	project, ok := projectID(c)
	if !ok {
		return
	}

	items, err := h.store.ListStakeholders(c.Request.Context(), project)
	if err != nil {
		logger.Errorf("List stakeholders (project %s): %v", project, err)
		fail(c, http.StatusInternalServerError, "failed to list stakeholders")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(items))
}

// CreateStakeholder serves POST /v1/projects/:id/stakeholders.
func (h *StakeholderHandler) CreateStakeholder(c *gin.Context) {
	project, ok := projectID(c)
	if !ok {
		return
	}

	var req wire.CreateStakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		fail(c, http.StatusBadRequest, "name is required")
		return
	}
	role, err := wire.ParseRole(req.Role)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.store.CreateStakeholder(c.Request.Context(), wire.Stakeholder{
		ID:        h.newID(),
		ProjectID: wire.ID(project),
		Name:      name,
		Email:     strings.TrimSpace(req.Email),
		Role:      role,
		CreatedAt: h.now().UTC().Format(wire.TimestampLayout),
	})
	if err != nil {
		logger.Errorf("Create stakeholder (project %s): %v", project, err)
		fail(c, http.StatusInternalServerError, "failed to create stakeholder")
		return
	}
	respond(c, http.StatusCreated, created)
}
