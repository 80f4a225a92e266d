package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeChatFrame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantRoom string
		wantIDs  []ID
		wantText []string
		wantErr  error
	}{
		{
			name:     "server batch with integer ids",
			input:    `{"project_id":7,"messages":[{"id":1,"project_id":7,"message":"hi","role":"Founder","is_ai":false,"created_at":"2024-01-01T00:00:00Z","author_name":"Ada"},{"id":2,"message":"yo"}]}`,
			wantRoom: "7",
			wantIDs:  []ID{"1", "2"},
			wantText: []string{"hi", "yo"},
		},
		{
			name:     "single message",
			input:    `{"chat_id":"room-1","id":"01HX","text":"hello","role":"Backend","timestamp":"2024-01-01T00:00:00Z"}`,
			wantRoom: "room-1",
			wantIDs:  []ID{"01HX"},
			wantText: []string{"hello"},
		},
		{
			name:     "empty batch",
			input:    `{"project_id":"p","messages":[]}`,
			wantRoom: "p",
			wantIDs:  []ID{},
			wantText: []string{},
		},
		{
			name:    "no room",
			input:   `{"id":"1","text":"orphan"}`,
			wantErr: ErrMissingRoom,
		},
		{
			name:    "not an object",
			input:   `"text"`,
			wantErr: ErrMalformedFrame,
		},
		{
			name:    "messages not a list",
			input:   `{"project_id":1,"messages":{"id":1}}`,
			wantErr: ErrMalformedFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			frame, err := DecodeChatFrame([]byte(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantRoom, frame.Room)
			ids := make([]ID, 0, len(frame.Messages))
			texts := make([]string, 0, len(frame.Messages))
			for _, m := range frame.Messages {
				ids = append(ids, m.ID)
				texts = append(texts, m.Text)
			}
			require.Equal(t, tt.wantIDs, ids)
			require.Equal(t, tt.wantText, texts)
		})
	}
}

func TestChatMessageBackendFields(t *testing.T) {
	t.Parallel()

	var msg ChatMessage
	err := json.Unmarshal([]byte(`{"id":12,"project_id":3,"message":"body","created_at":"2024-05-01T10:00:00Z","is_ai":true}`), &msg)
	require.NoError(t, err)
	require.Equal(t, ID("12"), msg.ID)
	require.Equal(t, "body", msg.Text)
	require.Equal(t, "2024-05-01T10:00:00Z", msg.Timestamp)
	require.True(t, msg.IsAI)
	require.Equal(t, "3", msg.Room())

	// text wins over message when both are present.
	err = json.Unmarshal([]byte(`{"id":"a","text":"t","message":"m"}`), &msg)
	require.NoError(t, err)
	require.Equal(t, "t", msg.Text)
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	role, err := ParseRole(" investor ")
	require.NoError(t, err)
	require.Equal(t, RoleInvestor, role)
	require.True(t, role.Valid())

	_, err = ParseRole("CEO")
	require.ErrorIs(t, err, ErrInvalidRole)
	require.False(t, Role("CEO").Valid())
}

func TestIDUnmarshal(t *testing.T) {
	t.Parallel()

	var payload RoomPayload
	require.NoError(t, json.Unmarshal([]byte(`{"room_id":42}`), &payload))
	require.Equal(t, ID("42"), payload.RoomID)

	require.NoError(t, json.Unmarshal([]byte(`{"room_id":"room-1"}`), &payload))
	require.Equal(t, ID("room-1"), payload.RoomID)

	require.NoError(t, json.Unmarshal([]byte(`{"room_id":null}`), &payload))
	require.Equal(t, ID(""), payload.RoomID)

	require.Error(t, json.Unmarshal([]byte(`{"room_id":true}`), &payload))
}
