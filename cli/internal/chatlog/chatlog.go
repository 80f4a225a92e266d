// Package chatlog keeps per-room chat logs deduplicated by message id.
//
// A room log only grows: merged messages are appended after everything
// already known and existing entries are never reordered. When a history fetch
// and live events race, the log follows the order in which the batches were
// merged, not message timestamps.
package chatlog

import (
	"sync"

	"github.com/opsx/collab/shared/wire"
)

type room struct {
	msgs []wire.ChatMessage
	seen map[wire.ID]struct{}
}

// Log holds the chat logs of every room. It is safe for concurrent use; each
// MergeBatch call is applied atomically.
type Log struct {
	mu    sync.Mutex
	rooms map[string]*room
}

// New returns an empty Log.
func New() *Log {
	return &Log{rooms: make(map[string]*room)}
}

// MergeBatch appends the messages of batch whose ids are not yet in the room
// log, keeping their relative order, and returns the appended messages.
// Duplicates inside batch collapse to their first occurrence. Messages
// without an id cannot be deduplicated and are skipped.
func (l *Log) MergeBatch(roomID string, batch []wire.ChatMessage) []wire.ChatMessage {
	if len(batch) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	r := l.rooms[roomID]
	if r == nil {
		r = &room{seen: make(map[wire.ID]struct{})}
		l.rooms[roomID] = r
	}

	var added []wire.ChatMessage
	for _, msg := range batch {
		if msg.ID == "" {
			continue
		}
		if _, ok := r.seen[msg.ID]; ok {
			continue
		}
		r.seen[msg.ID] = struct{}{}
		r.msgs = append(r.msgs, msg)
		added = append(added, msg)
	}
	return added
}

// Messages returns a copy of the room log.
func (l *Log) Messages(roomID string) []wire.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	r := l.rooms[roomID]
	if r == nil {
		return []wire.ChatMessage{}
	}
	out := make([]wire.ChatMessage, len(r.msgs))
	copy(out, r.msgs)
	return out
}

// Len returns the number of messages in the room log.
func (l *Log) Len(roomID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r := l.rooms[roomID]; r != nil {
		return len(r.msgs)
	}
	return 0
}

// Forget drops a room log.
func (l *Log) Forget(roomID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rooms, roomID)
}
