package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
)

// ValidateAgent checks an agent report before it is stored.
func ValidateAgent(agent wire.Agent) error {
	if strings.TrimSpace(agent.ID.String()) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(agent.ProjectID.String()) == "" {
		return fmt.Errorf("project_id is required")
	}
	if !agent.Status.Valid() {
		return fmt.Errorf("invalid status %q", agent.Status)
	}
	if agent.Type != "" && !agent.Type.Valid() {
		return fmt.Errorf("invalid type %q", agent.Type)
	}
	return nil
}

// AgentStatus stores an agent report and broadcasts the merged record to the
// agent's project room.
func AgentStatus(ctx context.Context, deps Deps, auth AuthContext, req wire.Agent) EventResult {
	if err := ValidateAgent(req); err != nil {
		return NewEventResult(wire.Ack{OK: false, Error: err.Error()}, nil)
	}

	merged, err := deps.Agents().UpsertAgent(ctx, req)
	if err != nil {
		logger.Warnf("Failed to store agent status (agent %s, user %s): %v", req.ID, auth.UserID(), err)
		return NewEventResult(wire.Ack{OK: false, Error: "failed to store agent status"}, nil)
	}

	return NewEventResult(
		wire.Ack{OK: true, ID: merged.ID},
		[]Broadcast{newRoomBroadcast(merged.ProjectID.String(), wire.EventAgentStatus, merged)},
	)
}
