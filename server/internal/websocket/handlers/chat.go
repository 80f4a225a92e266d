package handlers

import (
	"context"
	"strings"

	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
)

// MaxMessageLength bounds the text of a chat message in bytes.
const MaxMessageLength = 8 * 1024

// ChatMessage validates and stores a chat:message emitted by a client, then
// broadcasts it to the room as a single-message batch. The server assigns the
// id and timestamp. The sender receives its own message back.
func ChatMessage(ctx context.Context, deps Deps, auth AuthContext, req wire.ChatSendPayload) EventResult {
	room := strings.TrimSpace(req.ChatID)
	if room == "" {
		return NewEventResult(wire.Ack{OK: false, Error: "chat_id is required"}, nil)
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return NewEventResult(wire.Ack{OK: false, Error: "text is required"}, nil)
	}
	if len(text) > MaxMessageLength {
		return NewEventResult(wire.Ack{OK: false, Error: "text is too long"}, nil)
	}

	rawRole := string(req.Role)
	if rawRole == "" {
		rawRole = auth.Role()
	}
	role, err := wire.ParseRole(rawRole)
	if err != nil {
		return NewEventResult(wire.Ack{OK: false, Error: err.Error()}, nil)
	}

	msg := wire.ChatMessage{
		ID:         wire.ID(deps.NewID()),
		ProjectID:  wire.ID(room),
		AuthorID:   wire.ID(auth.UserID()),
		AuthorName: auth.Name(),
		Role:       role,
		Text:       text,
		Timestamp:  deps.Now().UTC().Format(wire.TimestampLayout),
	}
	if err := deps.Chat().Append(ctx, msg); err != nil {
		logger.Warnf("Failed to store chat message (room %s, user %s): %v", room, auth.UserID(), err)
		return NewEventResult(wire.Ack{OK: false, Error: "failed to store message"}, nil)
	}

	return NewEventResult(
		wire.Ack{OK: true, ID: msg.ID},
		[]Broadcast{newRoomBroadcast(room, wire.EventChatMessage, wire.ChatBatch{
			ProjectID: msg.ProjectID,
			Messages:  []wire.ChatMessage{msg},
		})},
	)
}
