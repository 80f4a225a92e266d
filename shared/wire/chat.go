package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Role tags a stakeholder in a project.
type Role string

const (
	RoleFounder     Role = "Founder"
	RoleFrontend    Role = "Frontend"
	RoleBackend     Role = "Backend"
	RoleInvestor    Role = "Investor"
	RoleFacilitator Role = "Facilitator"
)

// Roles lists every valid Role in display order.
var Roles = []Role{RoleFounder, RoleFrontend, RoleBackend, RoleInvestor, RoleFacilitator}

// ErrInvalidRole is returned by ParseRole for unknown role names.
var ErrInvalidRole = errors.New("invalid role")

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole resolves a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, known := range Roles {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// TimestampLayout is the layout the server uses for message timestamps. It
// parses as RFC 3339.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ChatMessage is one entry of a room's chat log.
type ChatMessage struct {
	// ID is server assigned and unique within a room.
	ID ID `json:"id"`
	// ChatID is the room the message belongs to when sent as a single
	// message.
	ChatID ID `json:"chat_id,omitempty"`
	// ProjectID is the owning project; batches are scoped by project.
	ProjectID  ID     `json:"project_id,omitempty"`
	AuthorID   ID     `json:"author_id,omitempty"`
	AuthorName string `json:"author_name,omitempty"`
	Role       Role   `json:"role,omitempty"`
	Text       string `json:"text"`
	// Timestamp is an RFC 3339 timestamp.
	Timestamp string `json:"timestamp,omitempty"`
	IsAI      bool   `json:"is_ai,omitempty"`
}

// UnmarshalJSON decodes a chat message, also accepting the backend field
// names `message` (for text) and `created_at` (for timestamp).
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	type plain ChatMessage
	var aux struct {
		plain
		Message   *string `json:"message"`
		CreatedAt string  `json:"created_at"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = ChatMessage(aux.plain)
	if m.Text == "" && aux.Message != nil {
		m.Text = *aux.Message
	}
	if m.Timestamp == "" {
		m.Timestamp = aux.CreatedAt
	}
	return nil
}

// Room returns the room the message is scoped to, preferring the chat id.
func (m ChatMessage) Room() string {
	if m.ChatID != "" {
		return m.ChatID.String()
	}
	return m.ProjectID.String()
}

// ChatBatch is the server broadcast shape of EventChatMessage.
type ChatBatch struct {
	ProjectID ID            `json:"project_id"`
	Messages  []ChatMessage `json:"messages"`
}

// ChatSendPayload is the client emit shape of EventChatMessage.
type ChatSendPayload struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	Role      Role   `json:"role"`
	Timestamp string `json:"timestamp"`
}

// ChatFrame is a decoded EventChatMessage frame in either shape.
type ChatFrame struct {
	Room     string
	Messages []ChatMessage
}

var (
	// ErrMalformedFrame is returned when a frame payload cannot be decoded.
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrMissingRoom is returned when a chat frame names no room.
	ErrMissingRoom = errors.New("chat frame has no room")
)

// DecodeChatFrame decodes an EventChatMessage payload. It accepts the batch
// form `{project_id, messages:[...]}` and the single form
// `{chat_id, ...message fields}`.
func DecodeChatFrame(data []byte) (ChatFrame, error) {
	var probe struct {
		ProjectID ID              `json:"project_id"`
		ChatID    ID              `json:"chat_id"`
		Messages  json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ChatFrame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	msgs := bytes.TrimSpace(probe.Messages)
	if len(msgs) == 0 || bytes.Equal(msgs, []byte("null")) {
		var msg ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return ChatFrame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		room := msg.Room()
		if room == "" {
			return ChatFrame{}, ErrMissingRoom
		}
		return ChatFrame{Room: room, Messages: []ChatMessage{msg}}, nil
	}

	room := probe.ProjectID.String()
	if room == "" {
		room = probe.ChatID.String()
	}
	if room == "" {
		return ChatFrame{}, ErrMissingRoom
	}
	var batch []ChatMessage
	if err := json.Unmarshal(msgs, &batch); err != nil {
		return ChatFrame{}, fmt.Errorf("%w: messages: %v", ErrMalformedFrame, err)
	}
	return ChatFrame{Room: room, Messages: batch}, nil
}
