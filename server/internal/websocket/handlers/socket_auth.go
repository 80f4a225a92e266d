package handlers

import (
	"errors"
	"strings"

	"github.com/opsx/collab/shared/wire"
)

// SocketHandshake is the validated Socket.IO handshake auth payload.
type SocketHandshake struct {
	Token string
}

// ValidateSocketAuthPayload validates the Socket.IO handshake auth payload.
func ValidateSocketAuthPayload(auth wire.SocketAuthPayload) (SocketHandshake, error) {
	token := strings.TrimSpace(auth.Token)
	if token == "" {
		return SocketHandshake{}, errors.New("Missing authentication token")
	}
	return SocketHandshake{Token: token}, nil
}
