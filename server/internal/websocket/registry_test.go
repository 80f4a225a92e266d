package websocket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomRegistry_JoinLookup(t *testing.T) {
	t.Parallel()

	r := NewRoomRegistry()
	require.True(t, r.Join("42", "sock1"))
	require.False(t, r.Join("42", "sock1"))
	require.True(t, r.Join("42", "sock2"))

	require.Equal(t, []string{"sock1", "sock2"}, r.Members("42"))
	require.Equal(t, []string{"42"}, r.Rooms("sock1"))
}

func TestRoomRegistry_LeaveIsSocketScoped(t *testing.T) {
	t.Parallel()

	r := NewRoomRegistry()
	r.Join("42", "sock1")

	require.False(t, r.Leave("42", "other"))
	require.Equal(t, []string{"sock1"}, r.Members("42"))

	require.True(t, r.Leave("42", "sock1"))
	require.Empty(t, r.Members("42"))
	require.Empty(t, r.Rooms("sock1"))
}

func TestRoomRegistry_LeaveAll(t *testing.T) {
	t.Parallel()

	r := NewRoomRegistry()
	r.Join("b", "sock1")
	r.Join("a", "sock1")
	r.Join("a", "sock2")

	require.Equal(t, []string{"a", "b"}, r.LeaveAll("sock1"))
	require.Empty(t, r.Rooms("sock1"))
	require.Equal(t, []string{"sock2"}, r.Members("a"))
	require.Empty(t, r.Members("b"))
	require.Empty(t, r.LeaveAll("sock1"))
}

func TestRoomRegistry_Concurrent(t *testing.T) {
	t.Parallel()

	r := NewRoomRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sock := fmt.Sprintf("sock%d", i)
			r.Join("shared", sock)
			r.Join(sock, sock)
			r.Leave(sock, sock)
		}(i)
	}
	wg.Wait()

	require.Len(t, r.Members("shared"), 16)
}
