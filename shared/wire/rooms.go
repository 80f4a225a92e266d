package wire

// RoomPayload is the payload of EventJoinRoom and EventLeaveRoom.
type RoomPayload struct {
	RoomID ID `json:"room_id"`
}

// Ack is the optional acknowledgement the server returns for client events
// that request one.
type Ack struct {
	OK bool `json:"ok"`
	// ID is the server-assigned id of a stored record, when there is one.
	ID    ID     `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}
