package handlers

import (
	"context"
	"time"

	"github.com/opsx/collab/shared/wire"
)

type fakeChatStore struct {
	append func(ctx context.Context, msg wire.ChatMessage) error
}

func (f fakeChatStore) Append(ctx context.Context, msg wire.ChatMessage) error {
	if f.append == nil {
		return nil
	}
	return f.append(ctx, msg)
}

type fakeAgentStore struct {
	upsert func(ctx context.Context, agent wire.Agent) (wire.Agent, error)
}

func (f fakeAgentStore) UpsertAgent(ctx context.Context, agent wire.Agent) (wire.Agent, error) {
	if f.upsert == nil {
		return agent, nil
	}
	return f.upsert(ctx, agent)
}

type fakeRooms struct {
	members map[string]map[string]bool
}

func newFakeRooms() *fakeRooms {
	return &fakeRooms{members: make(map[string]map[string]bool)}
}

func (f *fakeRooms) Join(room, socketID string) bool {
	set, ok := f.members[room]
	if !ok {
		set = make(map[string]bool)
		f.members[room] = set
	}
	if set[socketID] {
		return false
	}
	set[socketID] = true
	return true
}

func (f *fakeRooms) Leave(room, socketID string) bool {
	if !f.members[room][socketID] {
		return false
	}
	delete(f.members[room], socketID)
	return true
}

func (f *fakeRooms) LeaveAll(socketID string) []string {
	var left []string
	for room := range f.members {
		if f.Leave(room, socketID) {
			left = append(left, room)
		}
	}
	return left
}

func fixedDeps(chat ChatStore, agents AgentStore) Deps {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return NewDeps(chat, agents, func() time.Time { return now }, func() string { return "01HXID" })
}
