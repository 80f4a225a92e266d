package models

import "context"

const createStakeholder = `
INSERT INTO stakeholders (id, project_id, name, email, role, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

// CreateStakeholder inserts a stakeholder row.
func (q *Queries) CreateStakeholder(ctx context.Context, arg Stakeholder) error {
	_, err := q.db.ExecContext(ctx, createStakeholder,
		arg.ID, arg.ProjectID, arg.Name, arg.Email, arg.Role, arg.CreatedAt)
	return err
}

const getStakeholder = `
SELECT id, project_id, name, email, role, created_at
FROM stakeholders WHERE project_id = ? AND id = ?
`

// GetStakeholderParams scopes a stakeholder lookup to a project.
type GetStakeholderParams struct {
	ProjectID string
	ID        string
}

// GetStakeholder loads a stakeholder of a project.
func (q *Queries) GetStakeholder(ctx context.Context, arg GetStakeholderParams) (Stakeholder, error) {
	var s Stakeholder
	err := q.db.QueryRowContext(ctx, getStakeholder, arg.ProjectID, arg.ID).Scan(
		&s.ID, &s.ProjectID, &s.Name, &s.Email, &s.Role, &s.CreatedAt,
	)
	return s, err
}

const listStakeholders = `
SELECT id, project_id, name, email, role, created_at
FROM stakeholders WHERE project_id = ?
ORDER BY created_at, id
`

// ListStakeholders returns the stakeholders of a project in join order.
func (q *Queries) ListStakeholders(ctx context.Context, projectID string) ([]Stakeholder, error) {
	rows, err := q.db.QueryContext(ctx, listStakeholders, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Stakeholder
	for rows.Next() {
		var s Stakeholder
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.Name, &s.Email, &s.Role, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
