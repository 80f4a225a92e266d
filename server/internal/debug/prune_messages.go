package debug

import (
	"context"
	"database/sql"
	"time"

	"github.com/opsx/collab/server/internal/models"
	"github.com/opsx/collab/shared/logger"
)

// PruneChatMessages deletes chat messages created before cutoff. An empty
// projectID prunes every project. It returns the number of rows removed.
func PruneChatMessages(ctx context.Context, db *sql.DB, projectID string, cutoff time.Time) (int64, error) {
	query := `DELETE FROM chat_messages WHERE created_at < ?`
	args := []any{models.FormatTime(cutoff)}
	if projectID != "" {
		query += ` AND project_id = ?`
		args = append(args, projectID)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	logger.Infof("[Debug] Pruned chat_messages rows: %d", n)
	return n, nil
}
