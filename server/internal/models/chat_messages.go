package models

import "context"

const createChatMessage = `
INSERT INTO chat_messages (id, project_id, author_id, author_name, role, text, is_ai, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

// CreateChatMessage inserts a chat message row.
func (q *Queries) CreateChatMessage(ctx context.Context, arg ChatMessage) error {
	isAI := 0
	if arg.IsAI {
		isAI = 1
	}
	_, err := q.db.ExecContext(ctx, createChatMessage,
		arg.ID, arg.ProjectID, arg.AuthorID, arg.AuthorName, arg.Role, arg.Text, isAI, arg.CreatedAt)
	return err
}

// Latest limit messages, returned oldest first.
const listChatMessages = `
SELECT id, project_id, author_id, author_name, role, text, is_ai, created_at FROM (
	SELECT id, project_id, author_id, author_name, role, text, is_ai, created_at
	FROM chat_messages
	WHERE project_id = ?
	ORDER BY created_at DESC, id DESC
	LIMIT ?
) ORDER BY created_at, id
`

// ListChatMessagesParams selects the tail of a room's history.
type ListChatMessagesParams struct {
	ProjectID string
	Limit     int64
}

// ListChatMessages returns the newest Limit messages of a project, oldest
// first.
func (q *Queries) ListChatMessages(ctx context.Context, arg ListChatMessagesParams) ([]ChatMessage, error) {
	rows, err := q.db.QueryContext(ctx, listChatMessages, arg.ProjectID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ChatMessage
	for rows.Next() {
		var m ChatMessage
		var isAI int64
		if err := rows.Scan(
			&m.ID, &m.ProjectID, &m.AuthorID, &m.AuthorName, &m.Role, &m.Text, &isAI, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		m.IsAI = isAI != 0
		items = append(items, m)
	}
	return items, rows.Err()
}
