package channel

import (
	"encoding/json"
	"time"

	"github.com/opsx/collab/cli/internal/actor"
)

// ConnState is the state of the physical connection.
type ConnState string

const (
	ConnDisconnected ConnState = "disconnected"
	ConnConnecting   ConnState = "connecting"
	ConnConnected    ConnState = "connected"
)

// State is owned by the channel actor loop.
type State struct {
	Conn ConnState

	// Wanted is true between Connect and Disconnect. Lost connections are
	// only redialed while it is set.
	Wanted bool

	// Gen identifies the current connection attempt. It increments on every
	// dial and on Disconnect; runtime events and timers carrying an older
	// generation are ignored.
	Gen int64

	// Attempt counts consecutive failed attempts since the last successful
	// connect.
	Attempt int

	// Rooms is the membership set. It is replaced, never mutated, so a
	// snapshot taken from State stays valid.
	Rooms map[string]struct{}

	Degraded bool

	Backoff       Backoff
	DegradedAfter int
}

func newState(cfg Config) State {
	return State{
		Conn:          ConnDisconnected,
		Rooms:         map[string]struct{}{},
		Backoff:       cfg.Backoff,
		DegradedAfter: cfg.DegradedAfter,
	}
}

// Commands from the public API.

type cmdConnect struct {
	actor.InputBase
}

type cmdDisconnect struct {
	actor.InputBase
}

type cmdJoin struct {
	actor.InputBase
	Room string
}

type cmdLeave struct {
	actor.InputBase
	Room string
}

type cmdEmit struct {
	actor.InputBase
	Event   string
	Payload any
}

// Events from the runtime.

type evConnected struct {
	actor.InputBase
	Gen int64
}

type evDisconnected struct {
	actor.InputBase
	Gen    int64
	Reason string
}

type evDialFailed struct {
	actor.InputBase
	Gen int64
	Err error
}

type evReconnectTimer struct {
	actor.InputBase
	Gen int64
}

type evFrame struct {
	actor.InputBase
	Gen     int64
	Event   string
	Payload json.RawMessage
}

// Effects interpreted by the runtime.

// effDial closes any current connection and dials a new one tagged Gen.
type effDial struct {
	actor.EffectBase
	Gen int64
}

// effClose closes the current connection.
type effClose struct {
	actor.EffectBase
}

// effEmit writes one frame to the current connection.
type effEmit struct {
	actor.EffectBase
	Event   string
	Payload any
}

// effDropped records a send that was discarded while disconnected.
type effDropped struct {
	actor.EffectBase
	Event string
}

// effScheduleReconnect arms the reconnect timer. When it fires the runtime
// emits evReconnectTimer{Gen}.
type effScheduleReconnect struct {
	actor.EffectBase
	Gen   int64
	Delay time.Duration
}

// effCancelReconnect disarms the reconnect timer.
type effCancelReconnect struct {
	actor.EffectBase
}

// effDispatch routes an inbound frame to the stores and subscribers.
type effDispatch struct {
	actor.EffectBase
	Event   string
	Payload json.RawMessage
}

// effConnectivity announces a degraded or restored connection to
// subscribers.
type effConnectivity struct {
	actor.EffectBase
	Degraded bool
	Attempt  int
}
