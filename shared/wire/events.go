package wire

// Socket.IO event names exchanged between collaboration clients and the
// server.
const (
	// EventJoinRoom asks the server to add the socket to a room.
	EventJoinRoom = "join_room"
	// EventLeaveRoom asks the server to remove the socket from a room.
	EventLeaveRoom = "leave_room"

	// EventChatMessage carries chat traffic in both directions. Clients emit a
	// single ChatSendPayload; the server broadcasts a ChatBatch.
	EventChatMessage = "chat:message"
	// EventAgentStatus carries a full Agent record.
	EventAgentStatus = "agent:status"

	// Workspace notifications relayed to subscribers untouched.
	EventBranchUpdate     = "branch:update"
	EventConflictDetected = "conflict:detected"
	EventBuildProgress    = "build:progress"
	EventPRReview         = "pr:review"

	// EventError is sent by the server before it drops an unauthenticated
	// socket.
	EventError = "error"
)

// Synthetic events raised locally by the client channel. They never travel
// over the wire.
const (
	EventConnectionDegraded = "connection:degraded"
	EventConnectionRestored = "connection:restored"
)

// ConnectivityPayload is the payload of the synthetic connectivity events.
type ConnectivityPayload struct {
	// Attempt is the number of consecutive failed connection attempts.
	Attempt int `json:"attempt"`
}

// SocketAuthPayload is the handshake auth object sent by clients.
type SocketAuthPayload struct {
	Token string `json:"token"`
}

// ErrorPayload is the body of an EventError frame.
type ErrorPayload struct {
	Message string `json:"message"`
}
