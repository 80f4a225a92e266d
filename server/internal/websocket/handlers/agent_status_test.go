package handlers

import (
	"context"
	"testing"

	"github.com/opsx/collab/shared/wire"
	"github.com/stretchr/testify/require"
)

func TestAgentStatus_BroadcastsMergedRecord(t *testing.T) {
	t.Parallel()

	agents := fakeAgentStore{upsert: func(_ context.Context, a wire.Agent) (wire.Agent, error) {
		a.Name = "Planner"
		a.Type = wire.AgentPlanner
		return a, nil
	}}
	deps := fixedDeps(nil, agents)

	res := AgentStatus(context.Background(), deps, NewAuthContext("u1", "", "", "s"), wire.Agent{
		ID: "a1", ProjectID: "42", Status: wire.AgentThinking,
	})

	require.Equal(t, wire.Ack{OK: true, ID: "a1"}, res.Ack())
	require.Len(t, res.Broadcasts(), 1)
	b := res.Broadcasts()[0]
	require.Equal(t, "42", b.Room())
	require.Equal(t, wire.EventAgentStatus, b.Event())
	require.Equal(t, wire.Agent{
		ID: "a1", ProjectID: "42", Type: wire.AgentPlanner, Name: "Planner", Status: wire.AgentThinking,
	}, b.Payload())
}

func TestValidateAgent(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateAgent(wire.Agent{ID: "a", ProjectID: "p", Status: wire.AgentIdle}))
	require.Error(t, ValidateAgent(wire.Agent{ProjectID: "p", Status: wire.AgentIdle}))
	require.Error(t, ValidateAgent(wire.Agent{ID: "a", Status: wire.AgentIdle}))
	require.Error(t, ValidateAgent(wire.Agent{ID: "a", ProjectID: "p", Status: "sleeping"}))
	require.Error(t, ValidateAgent(wire.Agent{ID: "a", ProjectID: "p", Status: wire.AgentIdle, Type: "intern"}))
}

func TestAgentStatus_InvalidIsNotStored(t *testing.T) {
	t.Parallel()

	deps := fixedDeps(nil, fakeAgentStore{upsert: func(context.Context, wire.Agent) (wire.Agent, error) {
		t.Fatal("must not store invalid agent")
		return wire.Agent{}, nil
	}})

	res := AgentStatus(context.Background(), deps, NewAuthContext("u1", "", "", "s"), wire.Agent{ID: "a1"})
	ack := res.Ack().(wire.Ack)
	require.False(t, ack.OK)
	require.Empty(t, res.Broadcasts())
}
