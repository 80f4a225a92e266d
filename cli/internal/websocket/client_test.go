package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opsx/collab/shared/wire"
)

func TestNormalizePayload(t *testing.T) {
	t.Parallel()

	got, err := NormalizePayload(wire.RoomPayload{RoomID: "room-1"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"room_id": "room-1"}, got)

	got, err = NormalizePayload(json.RawMessage(`{"a":[1,2]}`))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": []any{1.0, 2.0}}, got)

	got, err = NormalizePayload("plain")
	require.NoError(t, err)
	require.Equal(t, "plain", got)

	got, err = NormalizePayload(nil)
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = NormalizePayload(make(chan int))
	require.Error(t, err)
}

func TestEncodeArgs(t *testing.T) {
	t.Parallel()

	raw, err := EncodeArgs([]any{map[string]any{"project_id": 1.0, "messages": []any{}}})
	require.NoError(t, err)
	require.JSONEq(t, `{"project_id":1,"messages":[]}`, string(raw))

	raw, err = EncodeArgs(nil)
	require.NoError(t, err)
	require.Nil(t, raw)

	raw, err = EncodeArgs([]any{json.RawMessage(`"x"`), "ignored"})
	require.NoError(t, err)
	require.Equal(t, `"x"`, string(raw))
}
