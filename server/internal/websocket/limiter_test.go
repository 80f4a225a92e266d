package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewChatLimiter_Disabled(t *testing.T) {
	t.Parallel()

	require.Nil(t, newChatLimiter(0))
	require.Nil(t, newChatLimiter(-1))
}

func TestNewChatLimiter_BurstThenThrottle(t *testing.T) {
	t.Parallel()

	l := newChatLimiter(1)
	require.NotNil(t, l)

	now := time.Now()
	require.True(t, l.AllowN(now, 1))
	require.True(t, l.AllowN(now, 1))
	require.False(t, l.AllowN(now, 1))
	require.True(t, l.AllowN(now.Add(time.Second), 1))
}

func TestNewChatLimiter_FractionalRate(t *testing.T) {
	t.Parallel()

	l := newChatLimiter(0.2)
	require.Equal(t, 1, l.Burst())
}
