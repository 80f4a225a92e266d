package store

import (
	"context"
	"errors"

	"github.com/opsx/collab/shared/wire"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")

// DefaultHistoryLimit bounds history reads when the caller gives no limit.
const DefaultHistoryLimit = 50

// MaxHistoryLimit caps history reads.
const MaxHistoryLimit = 500

// History stores the chat log of every room.
type History interface {
	// Append records a fully formed message. ID, ProjectID and Timestamp must
	// be set.
	Append(ctx context.Context, msg wire.ChatMessage) error
	// Recent returns the newest limit messages of a room, oldest first.
	Recent(ctx context.Context, projectID string, limit int) ([]wire.ChatMessage, error)
}

// ClampLimit applies DefaultHistoryLimit and MaxHistoryLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}
