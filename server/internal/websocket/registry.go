package websocket

import (
	"sort"
	"sync"
)

// RoomRegistry tracks room membership per socket in a concurrency-safe way.
// It stores socket ids (not socket pointers) so lookups can be validated
// against the current connection map.
type RoomRegistry struct {
	mu       sync.RWMutex
	rooms    map[string]map[string]struct{} // room -> socketIDs
	bySocket map[string]map[string]struct{} // socketID -> rooms
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:    make(map[string]map[string]struct{}),
		bySocket: make(map[string]map[string]struct{}),
	}
}

// Join adds socketID to room and reports whether it was newly added.
func (r *RoomRegistry) Join(room, socketID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[room] = members
	}
	if _, ok := members[socketID]; ok {
		return false
	}
	members[socketID] = struct{}{}

	joined, ok := r.bySocket[socketID]
	if !ok {
		joined = make(map[string]struct{})
		r.bySocket[socketID] = joined
	}
	joined[room] = struct{}{}
	return true
}

// Leave removes socketID from room and reports whether it was a member.
func (r *RoomRegistry) Leave(room, socketID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.leaveLocked(room, socketID)
}

func (r *RoomRegistry) leaveLocked(room, socketID string) bool {
	members, ok := r.rooms[room]
	if !ok {
		return false
	}
	if _, ok := members[socketID]; !ok {
		return false
	}
	delete(members, socketID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}

	if joined, ok := r.bySocket[socketID]; ok {
		delete(joined, room)
		if len(joined) == 0 {
			delete(r.bySocket, socketID)
		}
	}
	return true
}

// LeaveAll removes socketID from every room and returns those rooms sorted.
func (r *RoomRegistry) LeaveAll(socketID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined := r.bySocket[socketID]
	left := make([]string, 0, len(joined))
	for room := range joined {
		left = append(left, room)
	}
	sort.Strings(left)
	for _, room := range left {
		r.leaveLocked(room, socketID)
	}
	return left
}

// Members returns the socket ids in room, sorted.
func (r *RoomRegistry) Members(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Rooms returns the rooms socketID is in, sorted.
func (r *RoomRegistry) Rooms(socketID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	joined := r.bySocket[socketID]
	out := make([]string, 0, len(joined))
	for room := range joined {
		out = append(out, room)
	}
	sort.Strings(out)
	return out
}
