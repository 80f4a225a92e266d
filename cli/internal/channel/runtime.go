package channel

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/opsx/collab/cli/internal/actor"
	"github.com/opsx/collab/cli/internal/chatlog"
	"github.com/opsx/collab/cli/internal/presence"
	"github.com/opsx/collab/cli/internal/websocket"
	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
)

const reconnectTimerName = "reconnect"

// Runtime executes channel effects. It runs on the actor goroutine and never
// touches State; outcomes come back as events through the emit func or
// through Sender for callbacks that arrive on socket goroutines.
type Runtime struct {
	dialer   websocket.Dialer
	router   *Router
	log      *chatlog.Log
	presence *presence.Table

	// sender delivers socket callbacks to the actor, blocking so frames are
	// never dropped.
	sender func(actor.Input)

	mu      sync.Mutex
	conn    websocket.Conn
	timers  map[string]*time.Timer
	watched map[string]struct{}
}

func newRuntime(dialer websocket.Dialer, router *Router, log *chatlog.Log, table *presence.Table) *Runtime {
	return &Runtime{
		dialer:   dialer,
		router:   router,
		log:      log,
		presence: table,
		timers:   make(map[string]*time.Timer),
		watched: map[string]struct{}{
			wire.EventChatMessage: {},
			wire.EventAgentStatus: {},
		},
	}
}

// HandleEffects implements actor.Runtime.
func (r *Runtime) HandleEffects(ctx context.Context, effects []actor.Effect, emit func(actor.Input)) {
	for _, eff := range effects {
		select {
		case <-ctx.Done():
			return
		default:
		}

		switch e := eff.(type) {
		case effDial:
			r.dial(e, emit)
		case effClose:
			r.closeConn()
		case effEmit:
			r.emitFrame(e)
		case effDropped:
			logger.Warnf("Dropping %s: not connected", e.Event)
		case effScheduleReconnect:
			r.startTimer(ctx, reconnectTimerName, e.Delay, func() {
				emit(evReconnectTimer{Gen: e.Gen})
			})
		case effCancelReconnect:
			r.cancelTimer(reconnectTimerName)
		case effDispatch:
			r.dispatch(e)
		case effConnectivity:
			r.connectivity(e)
		default:
			// Unknown effect: ignore.
		}
	}
}

// Stop implements actor.Runtime.
func (r *Runtime) Stop() {
	r.cancelTimer(reconnectTimerName)
	r.closeConn()
}

// watch makes sure frames for event are forwarded by current and future
// connections.
func (r *Runtime) watch(event string) {
	r.mu.Lock()
	if _, ok := r.watched[event]; ok {
		r.mu.Unlock()
		return
	}
	r.watched[event] = struct{}{}
	conn := r.conn
	r.mu.Unlock()

	if conn != nil {
		conn.Watch(event)
	}
}

func (r *Runtime) dial(eff effDial, emit func(actor.Input)) {
	r.closeConn()

	send := r.sender
	if send == nil {
		send = emit
	}
	gen := eff.Gen
	handlers := websocket.Handlers{
		OnConnect: func() { send(evConnected{Gen: gen}) },
		OnDisconnect: func(reason string) {
			send(evDisconnected{Gen: gen, Reason: reason})
		},
		OnConnectError: func(err error) {
			logger.Debugf("Connection attempt %d failed: %v", gen, err)
			send(evDialFailed{Gen: gen, Err: err})
		},
		OnFrame: func(event string, payload json.RawMessage) {
			send(evFrame{Gen: gen, Event: event, Payload: payload})
		},
	}

	r.mu.Lock()
	events := make([]string, 0, len(r.watched))
	for event := range r.watched {
		events = append(events, event)
	}
	r.mu.Unlock()

	conn, err := r.dialer.Dial(events, handlers)
	if err != nil {
		logger.Warnf("Dial failed: %v", err)
		emit(evDialFailed{Gen: gen, Err: err})
		return
	}

	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
}

func (r *Runtime) closeConn() {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (r *Runtime) emitFrame(eff effEmit) {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()

	if conn == nil {
		logger.Warnf("Dropping %s: no connection", eff.Event)
		return
	}
	if err := conn.Emit(eff.Event, eff.Payload); err != nil {
		logger.Warnf("Dropping %s: %v", eff.Event, err)
	}
}

// startTimer arms a named timer, replacing one with the same name.
func (r *Runtime) startTimer(ctx context.Context, name string, after time.Duration, fire func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev := r.timers[name]; prev != nil {
		prev.Stop()
	}
	r.timers[name] = time.AfterFunc(after, func() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		fire()
	})
}

func (r *Runtime) cancelTimer(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t := r.timers[name]; t != nil {
		t.Stop()
	}
	delete(r.timers, name)
}

// dispatch decodes recognized frames, applies them to the stores, then hands
// them to subscribers. Malformed recognized frames are dropped.
func (r *Runtime) dispatch(eff effDispatch) {
	f := Frame{Event: eff.Event, Payload: eff.Payload}

	switch eff.Event {
	case wire.EventChatMessage:
		decoded, err := wire.DecodeChatFrame(eff.Payload)
		if err != nil {
			logger.Warnf("Dropping %s frame: %v", eff.Event, err)
			return
		}
		added := r.log.MergeBatch(decoded.Room, decoded.Messages)
		f.Chat = &ChatUpdate{Room: decoded.Room, Messages: decoded.Messages, Added: added}

	case wire.EventAgentStatus:
		var agent wire.Agent
		if err := json.Unmarshal(eff.Payload, &agent); err != nil {
			logger.Warnf("Dropping %s frame: %v", eff.Event, err)
			return
		}
		if agent.ID == "" {
			logger.Warnf("Dropping %s frame: missing agent id", eff.Event)
			return
		}
		r.presence.Apply(agent.ID, agent)
		f.Agent = &agent
	}

	if n := r.router.Dispatch(f); n == 0 {
		logger.Tracef("No subscribers for %s", eff.Event)
	}
}

func (r *Runtime) connectivity(eff effConnectivity) {
	event := wire.EventConnectionRestored
	if eff.Degraded {
		event = wire.EventConnectionDegraded
		logger.Warnf("Connection degraded after %d failed attempts", eff.Attempt)
	} else {
		logger.Infof("Connection restored")
	}
	payload, _ := json.Marshal(wire.ConnectivityPayload{Attempt: eff.Attempt})
	r.router.Dispatch(Frame{Event: event, Payload: payload})
}
