package room

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opsx/collab/cli/internal/api"
	"github.com/opsx/collab/cli/internal/channel"
	"github.com/opsx/collab/cli/internal/chatlog"
	"github.com/opsx/collab/cli/internal/presence"
	"github.com/opsx/collab/shared/wire"
)

type fakeChannel struct {
	log      *chatlog.Log
	presence *presence.Table

	mu       sync.Mutex
	joined   map[string]int
	sent     []wire.ChatSendPayload
	chatSubs map[int]func(channel.ChatUpdate)
	agentSub map[int]func(wire.Agent)
	next     int
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		log:      chatlog.New(),
		presence: presence.New(),
		joined:   map[string]int{},
		chatSubs: map[int]func(channel.ChatUpdate){},
		agentSub: map[int]func(wire.Agent){},
	}
}

func (f *fakeChannel) JoinRoom(_ context.Context, room string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined[room]++
	return nil
}

func (f *fakeChannel) LeaveRoom(_ context.Context, room string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined[room]--
	return nil
}

func (f *fakeChannel) MergeBatch(room string, msgs []wire.ChatMessage) []wire.ChatMessage {
	return f.log.MergeBatch(room, msgs)
}

func (f *fakeChannel) Messages(room string) []wire.ChatMessage { return f.log.Messages(room) }

func (f *fakeChannel) SendMessage(room, text string, role wire.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, wire.ChatSendPayload{ChatID: room, Text: text, Role: role})
}

func (f *fakeChannel) OnChat(fn func(channel.ChatUpdate)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.chatSubs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.chatSubs, id)
	}
}

func (f *fakeChannel) OnAgentStatus(fn func(wire.Agent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.agentSub[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.agentSub, id)
	}
}

func (f *fakeChannel) ApplyStatus(agentID string, rec wire.Agent) {
	f.presence.Apply(wire.ID(agentID), rec)
}

func (f *fakeChannel) Presence() []wire.Agent { return f.presence.Snapshot() }

// live simulates an inbound chat frame the way the channel runtime handles
// it.
func (f *fakeChannel) live(room string, msgs ...wire.ChatMessage) {
	added := f.log.MergeBatch(room, msgs)
	f.mu.Lock()
	subs := make([]func(channel.ChatUpdate), 0, len(f.chatSubs))
	for _, fn := range f.chatSubs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	if len(added) == 0 {
		return
	}
	for _, fn := range subs {
		fn(channel.ChatUpdate{Room: room, Messages: msgs, Added: added})
	}
}

func (f *fakeChannel) status(a wire.Agent) {
	f.presence.Apply(a.ID, a)
	f.mu.Lock()
	subs := make([]func(wire.Agent), 0, len(f.agentSub))
	for _, fn := range f.agentSub {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	for _, fn := range subs {
		fn(a)
	}
}

type fakeAPI struct {
	mu       sync.Mutex
	history  []wire.ChatMessage
	agents   []wire.Agent
	err      error
	posted   []wire.SendChatMessageRequest
	getCalls int
}

func (a *fakeAPI) GetChatMessages(context.Context, string, int) ([]wire.ChatMessage, error) {
	return a.history, a.err
}

func (a *fakeAPI) SendChatMessage(_ context.Context, room string, req wire.SendChatMessageRequest) (wire.ChatMessage, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.posted = append(a.posted, req)
	return wire.ChatMessage{ID: "srv-1", ProjectID: wire.ID(room), Text: req.Message, Role: req.Role}, nil
}

func (a *fakeAPI) GetAgents(context.Context, string) ([]wire.Agent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.getCalls++
	return append([]wire.Agent(nil), a.agents...), a.err
}

func (a *fakeAPI) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.getCalls
}

func ids(msgs []wire.ChatMessage) []wire.ID {
	out := make([]wire.ID, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

func TestChatRoomSeedsHistoryThenMergesLive(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	backend := &fakeAPI{history: []wire.ChatMessage{{ID: "1"}, {ID: "2"}}}

	var mu sync.Mutex
	var batches [][]wire.ID
	r, err := OpenChatRoom(context.Background(), ch, backend, ChatConfig{Room: "7", Role: wire.RoleFounder}, func(msgs []wire.ChatMessage) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, ids(msgs))
	})
	require.NoError(t, err)
	require.Equal(t, 1, ch.joined["7"])

	ch.live("7", wire.ChatMessage{ID: "2"}, wire.ChatMessage{ID: "3"})
	ch.live("other", wire.ChatMessage{ID: "9"})

	require.Equal(t, []wire.ID{"1", "2", "3"}, ids(r.Messages()))
	require.Equal(t, [][]wire.ID{{"1", "2"}, {"3"}}, batches)

	r.Send("  hello ")
	r.Send("   ")
	require.Equal(t, []wire.ChatSendPayload{{ChatID: "7", Text: "hello", Role: wire.RoleFounder}}, ch.sent)

	require.NoError(t, r.Close(context.Background()))
	require.NoError(t, r.Close(context.Background()))
	require.Equal(t, 0, ch.joined["7"])

	ch.live("7", wire.ChatMessage{ID: "4"})
	require.Len(t, batches, 2)
}

func TestChatRoomPostDedupsBroadcast(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	backend := &fakeAPI{}
	r, err := OpenChatRoom(context.Background(), ch, backend, ChatConfig{Room: "7", Role: wire.RoleBackend, Name: "Bo"}, nil)
	require.NoError(t, err)

	msg, err := r.Post(context.Background(), "ship it")
	require.NoError(t, err)
	require.Equal(t, wire.ID("srv-1"), msg.ID)
	require.Equal(t, "Bo", backend.posted[0].AuthorName)

	ch.live("7", msg)
	require.Equal(t, []wire.ID{"srv-1"}, ids(r.Messages()))

	_, err = r.Post(context.Background(), " ")
	require.Error(t, err)
}

func TestChatRoomPostedMessageReachesOnNewOnce(t *testing.T) {
	t.Parallel()

	for _, broadcastFirst := range []bool{false, true} {
		ch := newFakeChannel()
		backend := &fakeAPI{}

		var seen []wire.ID
		r, err := OpenChatRoom(context.Background(), ch, backend, ChatConfig{Room: "7"}, func(msgs []wire.ChatMessage) {
			seen = append(seen, ids(msgs)...)
		})
		require.NoError(t, err)

		stored := wire.ChatMessage{ID: "srv-1", ProjectID: "7", Text: "ship it"}
		if broadcastFirst {
			ch.live("7", stored)
		}
		_, err = r.Post(context.Background(), "ship it")
		require.NoError(t, err)
		if !broadcastFirst {
			ch.live("7", stored)
		}

		require.Equal(t, []wire.ID{"srv-1"}, seen, "broadcastFirst=%v", broadcastFirst)
	}
}

func TestChatRoomHistoryFailure(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	backend := &fakeAPI{err: &api.RequestError{Method: "GET", Path: "/x", Status: 503}}
	_, err := OpenChatRoom(context.Background(), ch, backend, ChatConfig{Room: "7"}, nil)
	require.Error(t, err)
	require.True(t, api.IsRetryable(err))
	require.Zero(t, ch.joined["7"])
	require.Empty(t, ch.chatSubs)
}

func TestAgentBoard(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	backend := &fakeAPI{agents: []wire.Agent{
		{ID: "a1", Type: wire.AgentPlanner, Name: "Planner", Status: wire.AgentIdle},
		{ID: "a2", Type: wire.AgentPitch, Name: "Pitch", Status: wire.AgentIdle},
	}}
	ch.ApplyStatus("other", wire.Agent{ProjectID: "9", Status: wire.AgentError})

	changes := make(chan wire.Agent, 4)
	b, err := OpenAgentBoard(context.Background(), ch, backend, BoardConfig{Project: "p"}, func(a wire.Agent) { changes <- a })
	require.NoError(t, err)
	require.Equal(t, 1, ch.joined["p"])
	require.Len(t, b.Agents(), 2)

	ch.status(wire.Agent{ID: "a1", ProjectID: "p", Status: wire.AgentExecuting, CurrentTask: "wireframes"})
	got := <-changes
	require.Equal(t, wire.AgentExecuting, got.Status)

	agents := b.Agents()
	require.Equal(t, wire.ID("a1"), agents[0].ID)
	require.Equal(t, "wireframes", agents[0].CurrentTask)
	require.Empty(t, agents[0].Name)

	require.NoError(t, b.Close(context.Background()))
	require.Equal(t, 0, ch.joined["p"])
}

func TestAgentBoardPolls(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	backend := &fakeAPI{agents: []wire.Agent{{ID: "a1", Status: wire.AgentIdle}}}
	b, err := OpenAgentBoard(context.Background(), ch, backend, BoardConfig{Project: "p", PollInterval: 10 * time.Millisecond}, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return backend.calls() >= 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, b.Close(context.Background()))

	after := backend.calls()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, after, backend.calls())
}

func TestAgentBoardSeedFailure(t *testing.T) {
	t.Parallel()

	ch := newFakeChannel()
	_, err := OpenAgentBoard(context.Background(), ch, &fakeAPI{err: errors.New("down")}, BoardConfig{Project: "p"}, nil)
	require.Error(t, err)
	require.Zero(t, ch.joined["p"])
}
