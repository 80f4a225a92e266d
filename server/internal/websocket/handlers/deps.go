package handlers

import (
	"context"
	"time"

	"github.com/opsx/collab/shared/wire"
)

// ChatStore is the subset of history storage used by websocket handlers.
type ChatStore interface {
	Append(ctx context.Context, msg wire.ChatMessage) error
}

// AgentStore is the subset of agent storage used by websocket handlers.
type AgentStore interface {
	UpsertAgent(ctx context.Context, agent wire.Agent) (wire.Agent, error)
}

// RoomRegistry tracks which sockets are members of which rooms.
type RoomRegistry interface {
	// Join adds the socket and reports whether it was newly added.
	Join(room, socketID string) bool
	// Leave removes the socket and reports whether it was a member.
	Leave(room, socketID string) bool
	// LeaveAll removes the socket from every room and returns those rooms.
	LeaveAll(socketID string) []string
}

// Deps holds the narrow dependencies required by extracted websocket handlers.
type Deps struct {
	chat   ChatStore
	agents AgentStore
	now    func() time.Time
	newID  func() string
}

// NewDeps builds a dependency bundle for handler calls.
func NewDeps(
	chat ChatStore,
	agents AgentStore,
	now func() time.Time,
	newID func() string,
) Deps {
	return Deps{
		chat:   chat,
		agents: agents,
		now:    now,
		newID:  newID,
	}
}

func (d Deps) Chat() ChatStore    { return d.chat }
func (d Deps) Agents() AgentStore { return d.agents }
func (d Deps) Now() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}
func (d Deps) NewID() string {
	if d.newID != nil {
		return d.newID()
	}
	return ""
}
