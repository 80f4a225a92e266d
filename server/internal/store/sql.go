package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/opsx/collab/server/internal/models"
	"github.com/opsx/collab/shared/wire"
)

// SQL persists rooms, chat history, agents and stakeholders in SQLite.
type SQL struct {
	q   *models.Queries
	now func() time.Time
}

// NewSQL wraps db.
func NewSQL(db *sql.DB) *SQL {
	return &SQL{q: models.New(db), now: time.Now}
}

func (s *SQL) ensureProject(ctx context.Context, projectID string) error {
	if projectID == "" {
		return fmt.Errorf("project id is required")
	}
	return s.q.EnsureProject(ctx, models.EnsureProjectParams{
		ID:        projectID,
		CreatedAt: models.FormatTime(s.now()),
	})
}

// Append implements History.
func (s *SQL) Append(ctx context.Context, msg wire.ChatMessage) error {
	if err := s.ensureProject(ctx, msg.ProjectID.String()); err != nil {
		return err
	}
	createdAt, err := normalizeTimestamp(msg.Timestamp)
	if err != nil {
		return err
	}
	return s.q.CreateChatMessage(ctx, models.ChatMessage{
		ID:         msg.ID.String(),
		ProjectID:  msg.ProjectID.String(),
		AuthorID:   msg.AuthorID.String(),
		AuthorName: msg.AuthorName,
		Role:       string(msg.Role),
		Text:       msg.Text,
		IsAI:       msg.IsAI,
		CreatedAt:  createdAt,
	})
}

// Recent implements History.
func (s *SQL) Recent(ctx context.Context, projectID string, limit int) ([]wire.ChatMessage, error) {
	rows, err := s.q.ListChatMessages(ctx, models.ListChatMessagesParams{
		ProjectID: projectID,
		Limit:     int64(ClampLimit(limit)),
	})
	if err != nil {
		return nil, err
	}
	out := make([]wire.ChatMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, chatFromRow(row))
	}
	return out, nil
}

// UpsertAgent records an agent report and returns the merged record.
func (s *SQL) UpsertAgent(ctx context.Context, agent wire.Agent) (wire.Agent, error) {
	projectID := agent.ProjectID.String()
	if err := s.ensureProject(ctx, projectID); err != nil {
		return wire.Agent{}, err
	}
	if err := s.q.UpsertAgent(ctx, models.Agent{
		ID:            agent.ID.String(),
		ProjectID:     projectID,
		Type:          string(agent.Type),
		Name:          agent.Name,
		Status:        string(agent.Status),
		CurrentTask:   agent.CurrentTask,
		AgentverseURL: agent.AgentverseURL,
		UpdatedAt:     models.FormatTime(s.now()),
	}); err != nil {
		return wire.Agent{}, err
	}
	row, err := s.q.GetAgent(ctx, models.GetAgentParams{ProjectID: projectID, ID: agent.ID.String()})
	if err != nil {
		return wire.Agent{}, err
	}
	return agentFromRow(row), nil
}

// ListAgents returns the agents of a project ordered by id.
func (s *SQL) ListAgents(ctx context.Context, projectID string) ([]wire.Agent, error) {
	rows, err := s.q.ListAgents(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]wire.Agent, 0, len(rows))
	for _, row := range rows {
		out = append(out, agentFromRow(row))
	}
	return out, nil
}

// CreateStakeholder stores a new stakeholder. CreatedAt is stamped when
// empty.
func (s *SQL) CreateStakeholder(ctx context.Context, st wire.Stakeholder) (wire.Stakeholder, error) {
	if !st.Role.Valid() {
		return wire.Stakeholder{}, fmt.Errorf("%w: %q", wire.ErrInvalidRole, st.Role)
	}
	if err := s.ensureProject(ctx, st.ProjectID.String()); err != nil {
		return wire.Stakeholder{}, err
	}
	if st.CreatedAt == "" {
		st.CreatedAt = models.FormatTime(s.now())
	}
	err := s.q.CreateStakeholder(ctx, models.Stakeholder{
		ID:        st.ID,
		ProjectID: st.ProjectID.String(),
		Name:      st.Name,
		Email:     st.Email,
		Role:      string(st.Role),
		CreatedAt: st.CreatedAt,
	})
	if err != nil {
		return wire.Stakeholder{}, err
	}
	return st, nil
}

// GetStakeholder loads a stakeholder of a project.
func (s *SQL) GetStakeholder(ctx context.Context, projectID, id string) (wire.Stakeholder, error) {
	row, err := s.q.GetStakeholder(ctx, models.GetStakeholderParams{ProjectID: projectID, ID: id})
	if errors.Is(err, sql.ErrNoRows) {
		return wire.Stakeholder{}, ErrNotFound
	}
	if err != nil {
		return wire.Stakeholder{}, err
	}
	return stakeholderFromRow(row), nil
}

// ListStakeholders returns the stakeholders of a project in join order.
func (s *SQL) ListStakeholders(ctx context.Context, projectID string) ([]wire.Stakeholder, error) {
	rows, err := s.q.ListStakeholders(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]wire.Stakeholder, 0, len(rows))
	for _, row := range rows {
		out = append(out, stakeholderFromRow(row))
	}
	return out, nil
}

func normalizeTimestamp(ts string) (string, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return "", fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}
	return models.FormatTime(t), nil
}

func chatFromRow(row models.ChatMessage) wire.ChatMessage {
	return wire.ChatMessage{
		ID:         wire.ID(row.ID),
		ProjectID:  wire.ID(row.ProjectID),
		AuthorID:   wire.ID(row.AuthorID),
		AuthorName: row.AuthorName,
		Role:       wire.Role(row.Role),
		Text:       row.Text,
		Timestamp:  row.CreatedAt,
		IsAI:       row.IsAI,
	}
}

func agentFromRow(row models.Agent) wire.Agent {
	return wire.Agent{
		ID:            wire.ID(row.ID),
		ProjectID:     wire.ID(row.ProjectID),
		Type:          wire.AgentType(row.Type),
		Name:          row.Name,
		Status:        wire.AgentStatus(row.Status),
		CurrentTask:   row.CurrentTask,
		AgentverseURL: row.AgentverseURL,
	}
}

func stakeholderFromRow(row models.Stakeholder) wire.Stakeholder {
	return wire.Stakeholder{
		ID:        row.ID,
		ProjectID: wire.ID(row.ProjectID),
		Name:      row.Name,
		Email:     row.Email,
		Role:      wire.Role(row.Role),
		CreatedAt: row.CreatedAt,
	}
}
