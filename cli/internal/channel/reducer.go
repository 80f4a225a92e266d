package channel

import (
	"maps"
	"sort"

	"github.com/opsx/collab/cli/internal/actor"
	"github.com/opsx/collab/shared/wire"
)

// Reduce is the channel reducer.
func Reduce(state State, input actor.Input) (State, []actor.Effect) {
	switch in := input.(type) {
	case cmdConnect:
		return reduceConnect(state)
	case cmdDisconnect:
		return reduceDisconnect(state)
	case cmdJoin:
		return reduceJoin(state, in)
	case cmdLeave:
		return reduceLeave(state, in)
	case cmdEmit:
		return reduceEmit(state, in)

	case evConnected:
		return reduceConnected(state, in)
	case evDisconnected:
		if in.Gen != state.Gen {
			return state, nil
		}
		return reduceConnectionLost(state)
	case evDialFailed:
		if in.Gen != state.Gen {
			return state, nil
		}
		return reduceConnectionLost(state)
	case evReconnectTimer:
		return reduceReconnectTimer(state, in)
	case evFrame:
		if in.Gen != state.Gen || state.Conn != ConnConnected {
			return state, nil
		}
		return state, []actor.Effect{effDispatch{Event: in.Event, Payload: in.Payload}}
	default:
		return state, nil
	}
}

func reduceConnect(state State) (State, []actor.Effect) {
	if state.Wanted && state.Conn != ConnDisconnected {
		return state, nil
	}
	// Either a fresh connect or an explicit connect while a backoff timer is
	// pending: dial now.
	state.Wanted = true
	return dial(state, effCancelReconnect{})
}

func dial(state State, prefix ...actor.Effect) (State, []actor.Effect) {
	state.Gen++
	state.Conn = ConnConnecting
	return state, append(prefix, effDial{Gen: state.Gen})
}

func reduceDisconnect(state State) (State, []actor.Effect) {
	state.Wanted = false
	state.Gen++
	state.Conn = ConnDisconnected
	state.Attempt = 0
	state.Degraded = false
	state.Rooms = map[string]struct{}{}
	return state, []actor.Effect{effCancelReconnect{}, effClose{}}
}

func reduceJoin(state State, cmd cmdJoin) (State, []actor.Effect) {
	if cmd.Room == "" {
		return state, nil
	}
	if _, ok := state.Rooms[cmd.Room]; ok {
		return state, nil
	}
	rooms := maps.Clone(state.Rooms)
	rooms[cmd.Room] = struct{}{}
	state.Rooms = rooms

	switch {
	case state.Conn == ConnConnected:
		return state, []actor.Effect{joinFrame(cmd.Room)}
	case !state.Wanted:
		// Joining is what brings the connection up; the join goes out with
		// the replay once connected.
		return reduceConnect(state)
	default:
		return state, nil
	}
}

func reduceLeave(state State, cmd cmdLeave) (State, []actor.Effect) {
	if _, ok := state.Rooms[cmd.Room]; !ok {
		return state, nil
	}
	rooms := maps.Clone(state.Rooms)
	delete(rooms, cmd.Room)
	state.Rooms = rooms

	if state.Conn != ConnConnected {
		return state, nil
	}
	return state, []actor.Effect{effEmit{
		Event:   wire.EventLeaveRoom,
		Payload: wire.RoomPayload{RoomID: wire.ID(cmd.Room)},
	}}
}

func reduceEmit(state State, cmd cmdEmit) (State, []actor.Effect) {
	if state.Conn != ConnConnected {
		return state, []actor.Effect{effDropped{Event: cmd.Event}}
	}
	return state, []actor.Effect{effEmit{Event: cmd.Event, Payload: cmd.Payload}}
}

func reduceConnected(state State, ev evConnected) (State, []actor.Effect) {
	if ev.Gen != state.Gen || state.Conn != ConnConnecting {
		return state, nil
	}
	wasDegraded := state.Degraded
	state.Conn = ConnConnected
	state.Attempt = 0
	state.Degraded = false

	// Replay membership before anything else reaches the new connection.
	effects := make([]actor.Effect, 0, len(state.Rooms)+1)
	for _, room := range sortedRooms(state.Rooms) {
		effects = append(effects, joinFrame(room))
	}
	if wasDegraded {
		effects = append(effects, effConnectivity{Degraded: false})
	}
	return state, effects
}

func reduceConnectionLost(state State) (State, []actor.Effect) {
	if !state.Wanted || state.Conn == ConnDisconnected {
		return state, nil
	}
	state.Conn = ConnDisconnected
	state.Attempt++

	effects := []actor.Effect{
		effClose{},
		effScheduleReconnect{Gen: state.Gen, Delay: state.Backoff.Delay(state.Attempt)},
	}
	if !state.Degraded && state.DegradedAfter > 0 && state.Attempt >= state.DegradedAfter {
		state.Degraded = true
		effects = append(effects, effConnectivity{Degraded: true, Attempt: state.Attempt})
	}
	return state, effects
}

func reduceReconnectTimer(state State, ev evReconnectTimer) (State, []actor.Effect) {
	if ev.Gen != state.Gen || !state.Wanted || state.Conn != ConnDisconnected {
		return state, nil
	}
	return dial(state)
}

func joinFrame(room string) effEmit {
	return effEmit{
		Event:   wire.EventJoinRoom,
		Payload: wire.RoomPayload{RoomID: wire.ID(room)},
	}
}

func sortedRooms(rooms map[string]struct{}) []string {
	out := make([]string, 0, len(rooms))
	for room := range rooms {
		out = append(out, room)
	}
	sort.Strings(out)
	return out
}
