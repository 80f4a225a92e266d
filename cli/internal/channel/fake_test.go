package channel

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/opsx/collab/cli/internal/websocket"
	"github.com/opsx/collab/shared/wire"
)

type sentFrame struct {
	Event   string
	Payload any
}

// fakeConn stands in for a Socket.IO connection. Tests drive it through the
// handlers captured at dial time.
type fakeConn struct {
	h websocket.Handlers

	mu      sync.Mutex
	sent    []sentFrame
	watched map[string]bool
	closed  bool
}

func (c *fakeConn) Emit(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrNotConnected
	}
	c.sent = append(c.sent, sentFrame{Event: event, Payload: payload})
	return nil
}

func (c *fakeConn) Watch(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watched[event] = true
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) Sent() []sentFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentFrame(nil), c.sent...)
}

func (c *fakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) Watching(event string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.watched[event]
}

// Frame simulates an inbound server frame.
func (c *fakeConn) Frame(event string, payload string) {
	c.h.OnFrame(event, json.RawMessage(payload))
}

type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	fail  bool
}

func (d *fakeDialer) Dial(events []string, h websocket.Handlers) (websocket.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		d.conns = append(d.conns, nil)
		return nil, errors.New("connection refused")
	}
	c := &fakeConn{h: h, watched: make(map[string]bool)}
	for _, ev := range events {
		c.watched[ev] = true
	}
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) SetFail(fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail = fail
}

func (d *fakeDialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

// Conn returns the i-th dialed connection (nil for failed dials).
func (d *fakeDialer) Conn(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.conns) {
		return nil
	}
	return d.conns[i]
}

// joinCounts tallies join_room frames per room over every connection.
func (d *fakeDialer) joinCounts() map[string]int {
	d.mu.Lock()
	conns := append([]*fakeConn(nil), d.conns...)
	d.mu.Unlock()

	counts := map[string]int{}
	for _, c := range conns {
		if c == nil {
			continue
		}
		for _, f := range c.Sent() {
			if f.Event == wire.EventJoinRoom {
				counts[f.Payload.(wire.RoomPayload).RoomID.String()]++
			}
		}
	}
	return counts
}
