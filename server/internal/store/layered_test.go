package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/opsx/collab/shared/wire"
	"github.com/stretchr/testify/require"
)

type memHistory struct {
	mu      sync.Mutex
	msgs    map[string][]wire.ChatMessage
	failAdd error
	failGet error
	reads   int
}

func newMemHistory() *memHistory {
	return &memHistory{msgs: make(map[string][]wire.ChatMessage)}
}

func (m *memHistory) Append(_ context.Context, msg wire.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAdd != nil {
		return m.failAdd
	}
	room := msg.ProjectID.String()
	m.msgs[room] = append(m.msgs[room], msg)
	return nil
}

func (m *memHistory) Recent(_ context.Context, projectID string, limit int) ([]wire.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.failGet != nil {
		return nil, m.failGet
	}
	msgs := m.msgs[projectID]
	limit = ClampLimit(limit)
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]wire.ChatMessage(nil), msgs...), nil
}

func TestLayered_WritesThrough(t *testing.T) {
	t.Parallel()

	primary, cache := newMemHistory(), newMemHistory()
	l := &Layered{Primary: primary, Cache: cache}

	require.NoError(t, l.Append(context.Background(), msgAt("m1", "42", time.Now())))
	require.Len(t, primary.msgs["42"], 1)
	require.Len(t, cache.msgs["42"], 1)
}

func TestLayered_CacheFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	primary, cache := newMemHistory(), newMemHistory()
	cache.failAdd = errors.New("redis down")
	cache.failGet = errors.New("redis down")
	l := &Layered{Primary: primary, Cache: cache}
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, msgAt("m1", "42", time.Now())))
	msgs, err := l.Recent(ctx, "42", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestLayered_PrimaryFailureIsFatal(t *testing.T) {
	t.Parallel()

	primary, cache := newMemHistory(), newMemHistory()
	primary.failAdd = errors.New("disk full")
	l := &Layered{Primary: primary, Cache: cache}

	require.Error(t, l.Append(context.Background(), msgAt("m1", "42", time.Now())))
	require.Empty(t, cache.msgs["42"])
}

func TestLayered_ServesFullCacheAndFallsBackOtherwise(t *testing.T) {
	t.Parallel()

	primary, cache := newMemHistory(), newMemHistory()
	l := &Layered{Primary: primary, Cache: cache}
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, primary.Append(ctx, msgAt(id, "42", base.Add(time.Duration(i)*time.Second))))
	}
	// Cache only holds the newest message, as after a TTL expiry.
	require.NoError(t, cache.Append(ctx, msgAt("m3", "42", base.Add(2*time.Second))))

	msgs, err := l.Recent(ctx, "42", 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, 1, primary.reads)

	msgs, err = l.Recent(ctx, "42", 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, wire.ID("m3"), msgs[0].ID)
	require.Equal(t, 1, primary.reads)
}
