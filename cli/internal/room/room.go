// Package room composes the channel and the REST client into the two views
// the CLI renders: a chat room and an agent board.
package room

import (
	"context"

	"github.com/opsx/collab/cli/internal/channel"
	"github.com/opsx/collab/shared/wire"
)

// Channel is the part of *channel.Channel the helpers use.
type Channel interface {
	JoinRoom(ctx context.Context, room string) error
	LeaveRoom(ctx context.Context, room string) error
	MergeBatch(room string, msgs []wire.ChatMessage) []wire.ChatMessage
	Messages(room string) []wire.ChatMessage
	SendMessage(room, text string, role wire.Role)
	OnChat(fn func(channel.ChatUpdate)) func()
	OnAgentStatus(fn func(wire.Agent)) func()
	ApplyStatus(agentID string, rec wire.Agent)
	Presence() []wire.Agent
}

// ChatAPI is the REST surface used by ChatRoom.
type ChatAPI interface {
	GetChatMessages(ctx context.Context, projectID string, limit int) ([]wire.ChatMessage, error)
	SendChatMessage(ctx context.Context, projectID string, req wire.SendChatMessageRequest) (wire.ChatMessage, error)
}

// AgentAPI is the REST surface used by AgentBoard.
type AgentAPI interface {
	GetAgents(ctx context.Context, projectID string) ([]wire.Agent, error)
}

var _ Channel = (*channel.Channel)(nil)
