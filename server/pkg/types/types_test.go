package types

import (
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestNewMessageID_Monotonic(t *testing.T) {
	t.Parallel()

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = NewMessageID()
		_, err := ulid.ParseStrict(ids[i])
		require.NoError(t, err)
	}
	require.True(t, sort.StringsAreSorted(ids))
}

func TestNewEntityID_IsUUID(t *testing.T) {
	t.Parallel()

	id := NewEntityID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	require.NotEqual(t, id, NewEntityID())
}
