// Package websocket owns the physical Socket.IO connection used by the
// collaboration channel.
//
// A Conn is one connection attempt. The library's own reconnection is turned
// off: a dropped Conn is discarded and the channel decides when to dial again.
package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	socket "github.com/zishang520/socket.io/clients/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/opsx/collab/shared/logger"
)

// DefaultPath is the Socket.IO endpoint path on the collaboration server.
const DefaultPath = "/v1/updates"

// ErrNotConnected is returned by Emit when the socket is not connected.
var ErrNotConnected = errors.New("not connected")

// Handlers receives connection callbacks. They run on library goroutines.
type Handlers struct {
	OnConnect      func()
	OnDisconnect   func(reason string)
	OnConnectError func(err error)
	// OnFrame receives every watched inbound event with its first argument
	// re-encoded as JSON. Payload is nil for events without arguments.
	OnFrame func(event string, payload json.RawMessage)
}

// Conn is a single connection attempt.
type Conn interface {
	// Emit sends one frame. It does not wait for delivery.
	Emit(event string, payload any) error
	// Watch starts forwarding an inbound event to Handlers.OnFrame. Watching
	// the same event twice has no effect.
	Watch(event string)
	// Close tears the connection down. No callbacks fire afterwards.
	Close()
}

// Dialer opens connections. Dial must return once the handshake has been
// started; the outcome is reported through Handlers.
type Dialer interface {
	Dial(events []string, h Handlers) (Conn, error)
}

// SocketDialer dials the collaboration server with the zishang520 Socket.IO
// client.
type SocketDialer struct {
	URL   string
	Token string
	// Path defaults to DefaultPath.
	Path string
	// Timeout bounds the handshake; zero keeps the library default.
	Timeout time.Duration
}

var _ Dialer = (*SocketDialer)(nil)

// Dial implements Dialer.
func (d *SocketDialer) Dial(events []string, h Handlers) (Conn, error) {
	path := d.Path
	if path == "" {
		path = DefaultPath
	}

	opts := socket.DefaultOptions()
	opts.SetPath(path)
	opts.SetTransports(types.NewSet(socket.Polling, socket.WebSocket))
	opts.SetAuth(map[string]any{"token": d.Token})
	opts.SetReconnection(false)
	opts.SetForceNew(true)
	if d.Timeout > 0 {
		opts.SetTimeout(d.Timeout)
	}

	logger.Debugf("Dialing Socket.IO %s (path: %s)", d.URL, path)
	sock, err := socket.Connect(d.URL, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	c := &socketConn{
		sock:    sock,
		h:       h,
		watched: make(map[string]struct{}),
	}

	sock.On(types.EventName("connect"), func(args ...any) {
		if c.isClosed() {
			return
		}
		logger.Debugf("Socket.IO connected: %s", sock.Id())
		if h.OnConnect != nil {
			h.OnConnect()
		}
	})
	sock.On(types.EventName("disconnect"), func(args ...any) {
		if c.isClosed() {
			return
		}
		reason := ""
		if len(args) > 0 {
			if r, ok := args[0].(string); ok {
				reason = r
			}
		}
		logger.Debugf("Socket.IO disconnected: %s", reason)
		if h.OnDisconnect != nil {
			h.OnDisconnect(reason)
		}
	})
	sock.On(types.EventName("connect_error"), func(args ...any) {
		if c.isClosed() {
			return
		}
		var err error = errors.New("connect error")
		if len(args) > 0 {
			if e, ok := args[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("connect error: %v", args[0])
			}
		}
		if h.OnConnectError != nil {
			h.OnConnectError(err)
		}
	})

	for _, ev := range events {
		c.Watch(ev)
	}
	return c, nil
}

// reserved events are owned by Dial and never forwarded as frames.
var reserved = map[string]struct{}{
	"connect":       {},
	"disconnect":    {},
	"connect_error": {},
}

type socketConn struct {
	sock *socket.Socket
	h    Handlers

	mu      sync.Mutex
	watched map[string]struct{}
	closed  bool
}

func (c *socketConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Emit implements Conn.
func (c *socketConn) Emit(event string, payload any) error {
	if c.isClosed() || !c.sock.Connected() {
		return ErrNotConnected
	}
	data, err := NormalizePayload(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}
	if data == nil {
		c.sock.Emit(event)
		return nil
	}
	c.sock.Emit(event, data)
	return nil
}

// Watch implements Conn.
func (c *socketConn) Watch(event string) {
	if _, ok := reserved[event]; ok || event == "" {
		return
	}
	c.mu.Lock()
	if _, ok := c.watched[event]; ok || c.closed {
		c.mu.Unlock()
		return
	}
	c.watched[event] = struct{}{}
	c.mu.Unlock()

	c.sock.On(types.EventName(event), func(args ...any) {
		if c.isClosed() || c.h.OnFrame == nil {
			return
		}
		payload, err := EncodeArgs(args)
		if err != nil {
			logger.Warnf("Dropping %s frame: %v", event, err)
			return
		}
		c.h.OnFrame(event, payload)
	})
}

// Close implements Conn.
func (c *socketConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.sock.Disconnect()
}

// NormalizePayload converts payload into the generic JSON shape (maps, slices,
// strings, numbers) the Socket.IO encoder handles natively.
func NormalizePayload(payload any) (any, error) {
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case string, bool, float64, int, int64, map[string]any, []any:
		return v, nil
	case json.RawMessage:
		var out any
		if err := json.Unmarshal(v, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeArgs re-encodes the first event argument as JSON.
func EncodeArgs(args []any) (json.RawMessage, error) {
	if len(args) == 0 || args[0] == nil {
		return nil, nil
	}
	if raw, ok := args[0].(json.RawMessage); ok {
		return raw, nil
	}
	data, err := json.Marshal(args[0])
	if err != nil {
		return nil, err
	}
	return data, nil
}
