package handlers

// Broadcast describes a single outbound room emission produced by a handler
// call.
type Broadcast struct {
	room    string
	event   string
	payload any
}

func newRoomBroadcast(room, event string, payload any) Broadcast {
	return Broadcast{room: room, event: event, payload: payload}
}

// Room returns the target room.
func (b Broadcast) Room() string { return b.room }

// Event returns the Socket.IO event name.
func (b Broadcast) Event() string { return b.event }

// Payload returns the event payload.
func (b Broadcast) Payload() any { return b.payload }

// EventResult is the output of a handler invocation.
type EventResult struct {
	ack        any
	broadcasts []Broadcast
}

// NewEventResult constructs a handler result.
func NewEventResult(ack any, broadcasts []Broadcast) EventResult {
	return EventResult{ack: ack, broadcasts: broadcasts}
}

// Ack returns the ACK payload to send to the caller, or nil.
func (r EventResult) Ack() any { return r.ack }

// Broadcasts returns the room emissions requested by the handler.
func (r EventResult) Broadcasts() []Broadcast { return r.broadcasts }
