package models

import "context"

// Empty type/name/url keep the stored value so status-only reports do not
// erase an agent's identity.
const upsertAgent = `
INSERT INTO agents (id, project_id, type, name, status, current_task, agentverse_url, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(project_id, id) DO UPDATE SET
	type = CASE WHEN excluded.type = '' THEN agents.type ELSE excluded.type END,
	name = CASE WHEN excluded.name = '' THEN agents.name ELSE excluded.name END,
	status = excluded.status,
	current_task = excluded.current_task,
	agentverse_url = CASE WHEN excluded.agentverse_url = '' THEN agents.agentverse_url ELSE excluded.agentverse_url END,
	updated_at = excluded.updated_at
`

// UpsertAgent records the latest state of an agent.
func (q *Queries) UpsertAgent(ctx context.Context, arg Agent) error {
	_, err := q.db.ExecContext(ctx, upsertAgent,
		arg.ID, arg.ProjectID, arg.Type, arg.Name, arg.Status, arg.CurrentTask, arg.AgentverseURL, arg.UpdatedAt)
	return err
}

const getAgent = `
SELECT id, project_id, type, name, status, current_task, agentverse_url, updated_at
FROM agents WHERE project_id = ? AND id = ?
`

// GetAgentParams scopes an agent lookup to a project.
type GetAgentParams struct {
	ProjectID string
	ID        string
}

// GetAgent loads one agent.
func (q *Queries) GetAgent(ctx context.Context, arg GetAgentParams) (Agent, error) {
	var a Agent
	err := q.db.QueryRowContext(ctx, getAgent, arg.ProjectID, arg.ID).Scan(
		&a.ID, &a.ProjectID, &a.Type, &a.Name, &a.Status, &a.CurrentTask, &a.AgentverseURL, &a.UpdatedAt,
	)
	return a, err
}

const listAgents = `
SELECT id, project_id, type, name, status, current_task, agentverse_url, updated_at
FROM agents WHERE project_id = ?
ORDER BY id
`

// ListAgents returns every agent of a project ordered by id.
func (q *Queries) ListAgents(ctx context.Context, projectID string) ([]Agent, error) {
	rows, err := q.db.QueryContext(ctx, listAgents, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(
			&a.ID, &a.ProjectID, &a.Type, &a.Name, &a.Status, &a.CurrentTask, &a.AgentverseURL, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
