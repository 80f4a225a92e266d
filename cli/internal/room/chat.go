package room

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/opsx/collab/cli/internal/channel"
	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
)

// ChatConfig describes who is chatting where.
type ChatConfig struct {
	Room string
	Role wire.Role
	Name string
	// HistoryLimit caps the initial history fetch; zero uses the server
	// default.
	HistoryLimit int
}

// ChatRoom is an open chat room: history seeded from the REST API, live
// messages merged from the channel.
type ChatRoom struct {
	ch    Channel
	api   ChatAPI
	cfg   ChatConfig
	onNew func([]wire.ChatMessage)

	mu     sync.Mutex
	unsub  func()
	closed bool
}

// OpenChatRoom fetches the room history, seeds the room log with it, then
// joins the room. onNew receives every batch of messages that was new to the
// log, history first, each message exactly once whether it arrived live or
// through Post. It runs on the channel loop for live messages and must not
// block.
func OpenChatRoom(ctx context.Context, ch Channel, api ChatAPI, cfg ChatConfig, onNew func([]wire.ChatMessage)) (*ChatRoom, error) {
	if cfg.Room == "" {
		return nil, fmt.Errorf("room is required")
	}

	history, err := api.GetChatMessages(ctx, cfg.Room, cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	if added := ch.MergeBatch(cfg.Room, history); len(added) > 0 && onNew != nil {
		onNew(added)
	}

	r := &ChatRoom{ch: ch, api: api, cfg: cfg, onNew: onNew}
	r.unsub = ch.OnChat(func(u channel.ChatUpdate) {
		if u.Room != cfg.Room || onNew == nil {
			return
		}
		onNew(u.Added)
	})

	if err := ch.JoinRoom(ctx, cfg.Room); err != nil {
		r.unsub()
		return nil, fmt.Errorf("join %s: %w", cfg.Room, err)
	}
	logger.Debugf("Opened chat room %s with %d messages", cfg.Room, len(history))
	return r, nil
}

// Messages returns the room log.
func (r *ChatRoom) Messages() []wire.ChatMessage {
	return r.ch.Messages(r.cfg.Room)
}

// Send emits a chat message over the socket. It is dropped when the channel
// is not connected.
func (r *ChatRoom) Send(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	r.ch.SendMessage(r.cfg.Room, text, r.cfg.Role)
}

// Post sends a chat message through the REST API and merges the stored
// message into the log right away. Whichever of the response and the server
// broadcast merges first hands the message to onNew; the other is a
// duplicate.
func (r *ChatRoom) Post(ctx context.Context, text string) (wire.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return wire.ChatMessage{}, fmt.Errorf("message is empty")
	}
	msg, err := r.api.SendChatMessage(ctx, r.cfg.Room, wire.SendChatMessageRequest{
		Message:    text,
		Role:       r.cfg.Role,
		AuthorName: r.cfg.Name,
	})
	if err != nil {
		return wire.ChatMessage{}, err
	}
	if added := r.ch.MergeBatch(r.cfg.Room, []wire.ChatMessage{msg}); len(added) > 0 && r.onNew != nil {
		r.onNew(added)
	}
	return msg, nil
}

// Close unsubscribes and leaves the room. Calling Close again does nothing.
func (r *ChatRoom) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.unsub()
	return r.ch.LeaveRoom(ctx, r.cfg.Room)
}
