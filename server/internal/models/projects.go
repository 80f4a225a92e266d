package models

import "context"

const ensureProject = `
INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)
ON CONFLICT(id) DO NOTHING
`

// EnsureProjectParams identifies a project to create on first use.
type EnsureProjectParams struct {
	ID        string
	Name      string
	CreatedAt string
}

// EnsureProject creates the project row if it does not exist yet. Rooms are
// created implicitly by the first write that references them.
func (q *Queries) EnsureProject(ctx context.Context, arg EnsureProjectParams) error {
	_, err := q.db.ExecContext(ctx, ensureProject, arg.ID, arg.Name, arg.CreatedAt)
	return err
}

const getProject = `SELECT id, name, created_at FROM projects WHERE id = ?`

// GetProject loads a project by id. It returns sql.ErrNoRows when missing.
func (q *Queries) GetProject(ctx context.Context, id string) (Project, error) {
	var p Project
	err := q.db.QueryRowContext(ctx, getProject, id).Scan(&p.ID, &p.Name, &p.CreatedAt)
	return p, err
}
