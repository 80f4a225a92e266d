package websocket

import (
	"github.com/opsx/collab/server/internal/metrics"
	"github.com/opsx/collab/server/internal/websocket/handlers"
	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
)

func (s *SocketIOServer) reject(client *socket.Socket, message string) {
	metrics.SocketAuthFailures.Inc()
	client.Emit(wire.EventError, wire.ErrorPayload{Message: message})
	client.Disconnect(true)
}

func (s *SocketIOServer) handleConnection(client *socket.Socket) {
	socketID := string(client.Id())

	logger.Infof("Socket.IO connection attempt (socket ID: %s)", socketID)

	authMap := client.Handshake().Auth
	if len(authMap) == 0 {
		logger.Warnf("Socket.IO missing auth data (socket %s)", socketID)
		s.reject(client, "Missing authentication data")
		return
	}

	var authPayload wire.SocketAuthPayload
	if err := decodeAny(authMap, &authPayload); err != nil {
		logger.Warnf("Socket.IO invalid auth data (socket %s): %v", socketID, err)
		s.reject(client, "Invalid authentication data")
		return
	}

	handshake, err := handlers.ValidateSocketAuthPayload(authPayload)
	if err != nil {
		logger.Warnf("Socket.IO handshake auth rejected (socket %s): %v", socketID, err)
		s.reject(client, err.Error())
		return
	}

	claims, err := s.jwtManager.VerifyToken(handshake.Token)
	if err != nil {
		logger.Warnf("Socket.IO invalid token (socket %s): %v", socketID, err)
		s.reject(client, "Invalid authentication token")
		return
	}

	userID := claims.Subject
	s.socketData.Store(socketID, &SocketData{
		UserID:  userID,
		Name:    claims.Name,
		Role:    claims.Role,
		Limiter: newChatLimiter(s.chatRate),
		Socket:  client,
	})
	metrics.SocketConnections.Inc()

	logger.Infof("Socket.IO client ready (user: %s, socket: %s)", userID, socketID)

	s.registerClientHandlers(client, socketID)
}
