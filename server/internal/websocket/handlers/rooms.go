package handlers

import (
	"strings"

	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
)

// JoinRoom adds the caller to a room. Joining a room twice is a no-op that
// still acknowledges success.
func JoinRoom(rooms RoomRegistry, auth AuthContext, req wire.RoomPayload) EventResult {
	room := strings.TrimSpace(req.RoomID.String())
	if room == "" {
		return NewEventResult(wire.Ack{OK: false, Error: "room_id is required"}, nil)
	}
	if rooms.Join(room, auth.SocketID()) {
		logger.Debugf("Socket %s (user %s) joined room %s", auth.SocketID(), auth.UserID(), room)
	}
	return NewEventResult(wire.Ack{OK: true}, nil)
}

// LeaveRoom removes the caller from a room. Leaving a room the caller is not
// in is a no-op.
func LeaveRoom(rooms RoomRegistry, auth AuthContext, req wire.RoomPayload) EventResult {
	room := strings.TrimSpace(req.RoomID.String())
	if room == "" {
		return NewEventResult(wire.Ack{OK: false, Error: "room_id is required"}, nil)
	}
	if rooms.Leave(room, auth.SocketID()) {
		logger.Debugf("Socket %s (user %s) left room %s", auth.SocketID(), auth.UserID(), room)
	}
	return NewEventResult(wire.Ack{OK: true}, nil)
}

// Disconnect drops every membership of the caller and returns the rooms it
// was in.
func Disconnect(rooms RoomRegistry, auth AuthContext) []string {
	return rooms.LeaveAll(auth.SocketID())
}
