package websocket

import (
	"context"

	"github.com/opsx/collab/server/internal/metrics"
	"github.com/opsx/collab/server/internal/websocket/handlers"
	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
)

// chatAllowed applies the per-socket chat rate limit.
func (s *SocketIOServer) chatAllowed(socketID string) (any, bool) {
	sd := s.getSocketData(socketID)
	if sd.Limiter == nil || sd.Limiter.Allow() {
		return nil, true
	}
	metrics.RateLimitHits.WithLabelValues(wire.EventChatMessage).Inc()
	logger.Debugf("Rate limited %s from user %s (socket %s)", wire.EventChatMessage, sd.UserID, socketID)
	return wire.Ack{OK: false, Error: "rate limited"}, false
}

func (s *SocketIOServer) registerClientHandlers(client *socket.Socket, socketID string) {
	onRoomEvent(s, client, wire.EventJoinRoom, func(rooms handlers.RoomRegistry, auth handlers.AuthContext, req wire.RoomPayload) handlers.EventResult {
		res := handlers.JoinRoom(rooms, auth, req)
		if ack, ok := res.Ack().(wire.Ack); ok && ack.OK {
			metrics.RoomJoins.Inc()
		}
		return res
	})
	onRoomEvent(s, client, wire.EventLeaveRoom, handlers.LeaveRoom)

	onTypedAck(s, client, wire.EventChatMessage, func(ctx context.Context, deps handlers.Deps, auth handlers.AuthContext, req wire.ChatSendPayload) handlers.EventResult {
		res := handlers.ChatMessage(ctx, deps, auth, req)
		if len(res.Broadcasts()) > 0 {
			metrics.ChatMessagesPosted.WithLabelValues("socket").Inc()
		}
		return res
	}, s.chatAllowed)
	onTypedAck(s, client, wire.EventAgentStatus, func(ctx context.Context, deps handlers.Deps, auth handlers.AuthContext, req wire.Agent) handlers.EventResult {
		res := handlers.AgentStatus(ctx, deps, auth, req)
		if len(res.Broadcasts()) > 0 {
			metrics.AgentStatusUpdates.WithLabelValues(string(req.Status)).Inc()
		}
		return res
	}, nil)

	client.On("disconnect", func(data ...any) {
		sd := s.getSocketData(socketID)
		reason := ""
		if len(data) > 0 {
			if r, ok := data[0].(string); ok {
				reason = r
			}
		}

		left := handlers.Disconnect(s.rooms, s.authContext(socketID))
		logger.Infof(
			"User disconnected: %s (socket %s, rooms: %v, reason: %s)",
			sd.UserID,
			socketID,
			left,
			reason,
		)

		if _, loaded := s.socketData.LoadAndDelete(socketID); loaded {
			metrics.SocketConnections.Dec()
		}
	})
}
