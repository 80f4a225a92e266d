package handlers

import (
	"testing"

	"github.com/opsx/collab/shared/wire"
	"github.com/stretchr/testify/require"
)

func TestJoinRoom_AcksAndIsIdempotent(t *testing.T) {
	t.Parallel()

	rooms := newFakeRooms()
	auth := NewAuthContext("u1", "", "", "sock1")

	res := JoinRoom(rooms, auth, wire.RoomPayload{RoomID: "42"})
	require.Equal(t, wire.Ack{OK: true}, res.Ack())
	require.Empty(t, res.Broadcasts())

	res = JoinRoom(rooms, auth, wire.RoomPayload{RoomID: "42"})
	require.Equal(t, wire.Ack{OK: true}, res.Ack())
	require.Len(t, rooms.members["42"], 1)
}

func TestJoinRoom_RejectsEmptyRoom(t *testing.T) {
	t.Parallel()

	rooms := newFakeRooms()
	res := JoinRoom(rooms, NewAuthContext("u1", "", "", "sock1"), wire.RoomPayload{RoomID: " "})

	ack, ok := res.Ack().(wire.Ack)
	require.True(t, ok)
	require.False(t, ack.OK)
	require.Empty(t, rooms.members)
}

func TestLeaveRoom_NonMemberIsNoop(t *testing.T) {
	t.Parallel()

	rooms := newFakeRooms()
	auth := NewAuthContext("u1", "", "", "sock1")

	res := LeaveRoom(rooms, auth, wire.RoomPayload{RoomID: "42"})
	require.Equal(t, wire.Ack{OK: true}, res.Ack())

	JoinRoom(rooms, auth, wire.RoomPayload{RoomID: "42"})
	LeaveRoom(rooms, auth, wire.RoomPayload{RoomID: "42"})
	require.Empty(t, rooms.members["42"])
}

func TestDisconnect_LeavesEveryRoom(t *testing.T) {
	t.Parallel()

	rooms := newFakeRooms()
	auth := NewAuthContext("u1", "", "", "sock1")
	other := NewAuthContext("u2", "", "", "sock2")

	JoinRoom(rooms, auth, wire.RoomPayload{RoomID: "a"})
	JoinRoom(rooms, auth, wire.RoomPayload{RoomID: "b"})
	JoinRoom(rooms, other, wire.RoomPayload{RoomID: "a"})

	left := Disconnect(rooms, auth)
	require.ElementsMatch(t, []string{"a", "b"}, left)
	require.True(t, rooms.members["a"]["sock2"])
}
