// Package channel is the client side of the realtime collaboration channel:
// one Socket.IO connection with room membership, typed event routing, per-room
// chat logs and an agent presence table.
//
// Every state change goes through a single actor loop. Socket callbacks and
// API calls become inputs; the reducer decides what to send, when to redial
// and which frames to deliver, and the runtime carries that out. Subscriber
// callbacks run on the loop goroutine, one frame at a time.
package channel

import (
	"context"
	"encoding/json"
	"time"

	"github.com/opsx/collab/cli/internal/actor"
	"github.com/opsx/collab/cli/internal/chatlog"
	"github.com/opsx/collab/cli/internal/presence"
	"github.com/opsx/collab/cli/internal/websocket"
	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
)

// DefaultDegradedAfter is the number of consecutive failed connection
// attempts after which the channel reports degraded connectivity.
const DefaultDegradedAfter = 5

// Config configures a Channel.
type Config struct {
	// URL is the collaboration server base URL.
	URL string
	// Token is the bearer token presented in the Socket.IO handshake.
	Token string
	// Path overrides the Socket.IO path.
	Path string

	// Backoff defaults to DefaultBackoff.
	Backoff Backoff
	// DegradedAfter defaults to DefaultDegradedAfter. Negative disables the
	// degraded signal.
	DegradedAfter int

	// Clock stamps outgoing chat messages. Defaults to the wall clock.
	Clock actor.Clock
}

type options struct {
	dialer      websocket.Dialer
	mailboxSize int
}

// Option customizes a Channel.
type Option func(*options)

// WithDialer replaces the Socket.IO dialer.
func WithDialer(d websocket.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithMailboxSize sets the actor mailbox size.
func WithMailboxSize(n int) Option {
	return func(o *options) { o.mailboxSize = n }
}

// Channel is a realtime collaboration client. Create one with New; it is
// safe for concurrent use.
type Channel struct {
	actor    *actor.Actor[State]
	runtime  *Runtime
	router   *Router
	log      *chatlog.Log
	presence *presence.Table
	clock    actor.Clock
}

// New builds a Channel and starts its loop. No connection is made until
// Connect or JoinRoom.
func New(cfg Config, opts ...Option) *Channel {
	if cfg.Backoff == (Backoff{}) {
		cfg.Backoff = DefaultBackoff
	}
	switch {
	case cfg.DegradedAfter == 0:
		cfg.DegradedAfter = DefaultDegradedAfter
	case cfg.DegradedAfter < 0:
		cfg.DegradedAfter = 0
	}
	if cfg.Clock == nil {
		cfg.Clock = actor.RealClock{}
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialer == nil {
		o.dialer = &websocket.SocketDialer{URL: cfg.URL, Token: cfg.Token, Path: cfg.Path}
	}

	c := &Channel{
		router:   NewRouter(),
		log:      chatlog.New(),
		presence: presence.New(),
		clock:    cfg.Clock,
	}
	c.runtime = newRuntime(o.dialer, c.router, c.log, c.presence)

	var actorOpts []actor.Option[State]
	if o.mailboxSize > 0 {
		actorOpts = append(actorOpts, actor.WithMailboxSize[State](o.mailboxSize))
	}
	actorOpts = append(actorOpts, actor.WithHooks(actor.Hooks[State]{
		OnTransition: func(prev, next State, _ actor.Input) {
			if prev.Conn != next.Conn {
				logger.Debugf("Channel %s -> %s (gen %d, attempt %d)", prev.Conn, next.Conn, next.Gen, next.Attempt)
			}
		},
	}))
	c.actor = actor.New(newState(cfg), Reduce, c.runtime, actorOpts...)
	c.runtime.sender = func(in actor.Input) {
		_ = c.actor.Send(c.actor.Context(), in)
	}
	c.actor.Start()
	return c
}

// Close stops the loop and tears down the connection. The Channel cannot be
// used afterwards.
func (c *Channel) Close() {
	c.actor.Stop()
	<-c.actor.Done()
}

// Connect starts connecting and returns without waiting for the handshake.
// It does nothing when the channel is already connected or connecting.
func (c *Channel) Connect(ctx context.Context) error {
	return c.actor.Send(ctx, cmdConnect{})
}

// Disconnect closes the connection, forgets all rooms and cancels any
// pending reconnect.
func (c *Channel) Disconnect() {
	_ = c.actor.Send(context.Background(), cmdDisconnect{})
}

// IsConnected reports whether the connection is up.
func (c *Channel) IsConnected() bool {
	return c.actor.State().Conn == ConnConnected
}

// ConnState returns the connection state.
func (c *Channel) ConnState() ConnState {
	return c.actor.State().Conn
}

// Degraded reports whether repeated connection attempts have failed.
func (c *Channel) Degraded() bool {
	return c.actor.State().Degraded
}

// JoinRoom adds room to the membership set and tells the server. Joining a
// room twice sends nothing the second time. When the channel is not
// connected, JoinRoom connects it.
func (c *Channel) JoinRoom(ctx context.Context, room string) error {
	return c.actor.Send(ctx, cmdJoin{Room: room})
}

// LeaveRoom removes room from the membership set and tells the server.
func (c *Channel) LeaveRoom(ctx context.Context, room string) error {
	return c.actor.Send(ctx, cmdLeave{Room: room})
}

// Rooms returns the membership set, sorted.
func (c *Channel) Rooms() []string {
	return sortedRooms(c.actor.State().Rooms)
}

// Emit sends a frame if connected. Frames sent while disconnected are
// dropped with a warning; nothing is queued. Emit never blocks.
func (c *Channel) Emit(event string, payload any) {
	if !c.actor.Enqueue(cmdEmit{Event: event, Payload: payload}) {
		logger.Warnf("Dropping %s: channel busy or closed", event)
	}
}

// SendMessage emits a chat message to room stamped with the current time.
func (c *Channel) SendMessage(room, text string, role wire.Role) {
	c.Emit(wire.EventChatMessage, wire.ChatSendPayload{
		ChatID:    room,
		Text:      text,
		Role:      role,
		Timestamp: c.clock.Now().UTC().Format(time.RFC3339Nano),
	})
}

// On subscribes h to event and returns its unsubscribe func.
func (c *Channel) On(event string, h Handler) func() {
	unsubscribe := c.router.On(event, h)
	c.runtime.watch(event)
	return unsubscribe
}

// OnChat subscribes to chat frames that added at least one new message.
func (c *Channel) OnChat(fn func(ChatUpdate)) func() {
	return c.On(wire.EventChatMessage, func(f Frame) {
		if f.Chat != nil && len(f.Chat.Added) > 0 {
			fn(*f.Chat)
		}
	})
}

// OnAgentStatus subscribes to agent status records.
func (c *Channel) OnAgentStatus(fn func(wire.Agent)) func() {
	return c.On(wire.EventAgentStatus, func(f Frame) {
		if f.Agent != nil {
			fn(*f.Agent)
		}
	})
}

// OnTyped subscribes fn to event with the payload decoded as T. Frames that
// do not decode are logged and skipped.
func OnTyped[T any](c *Channel, event string, fn func(T)) func() {
	return c.On(event, func(f Frame) {
		var v T
		if err := json.Unmarshal(f.Payload, &v); err != nil {
			logger.Warnf("Skipping %s frame: %v", event, err)
			return
		}
		fn(v)
	})
}

// MergeBatch merges messages into the room log and returns the ones that
// were new.
func (c *Channel) MergeBatch(room string, msgs []wire.ChatMessage) []wire.ChatMessage {
	return c.log.MergeBatch(room, msgs)
}

// Messages returns a copy of the room log.
func (c *Channel) Messages(room string) []wire.ChatMessage {
	return c.log.Messages(room)
}

// ApplyStatus replaces the presence record for agentID.
func (c *Channel) ApplyStatus(agentID string, rec wire.Agent) {
	c.presence.Apply(wire.ID(agentID), rec)
}

// Presence returns every known agent record, sorted by id.
func (c *Channel) Presence() []wire.Agent {
	return c.presence.Snapshot()
}
