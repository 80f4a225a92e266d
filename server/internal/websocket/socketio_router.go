package websocket

import (
	"context"

	"github.com/opsx/collab/server/internal/websocket/handlers"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
)

func (s *SocketIOServer) emitHandlerBroadcasts(result handlers.EventResult) {
	for _, b := range result.Broadcasts() {
		s.Broadcast(b.Room(), b.Event(), b.Payload())
	}
}

func (s *SocketIOServer) authContext(socketID string) handlers.AuthContext {
	sd := s.getSocketData(socketID)
	return handlers.NewAuthContext(sd.UserID, sd.Name, sd.Role, socketID)
}

// onTypedAck decodes the first argument of event into Req, runs handler, and
// answers the ACK when the client asked for one. allow, when set, gates the
// handler; a rejected frame is acknowledged with the returned ACK.
func onTypedAck[Req any](
	s *SocketIOServer,
	client *socket.Socket,
	event string,
	handler func(context.Context, handlers.Deps, handlers.AuthContext, Req) handlers.EventResult,
	allow func(socketID string) (any, bool),
) {
	socketID := string(client.Id())
	client.On(event, func(data ...any) {
		raw, ack := getFirstAnyWithAck(data)

		if allow != nil {
			if rejection, ok := allow(socketID); !ok {
				if ack != nil {
					ack(rejection)
				}
				return
			}
		}

		var req Req
		_ = decodeAny(raw, &req)

		result := handler(context.Background(), s.deps, s.authContext(socketID), req)

		if ack != nil && result.Ack() != nil {
			ack(result.Ack())
		}
		s.emitHandlerBroadcasts(result)
	})
}

// onRoomEvent is onTypedAck for handlers that only touch membership.
func onRoomEvent[Req any](
	s *SocketIOServer,
	client *socket.Socket,
	event string,
	handler func(handlers.RoomRegistry, handlers.AuthContext, Req) handlers.EventResult,
) {
	socketID := string(client.Id())
	client.On(event, func(data ...any) {
		raw, ack := getFirstAnyWithAck(data)

		var req Req
		_ = decodeAny(raw, &req)

		result := handler(s.rooms, s.authContext(socketID), req)

		if ack != nil && result.Ack() != nil {
			ack(result.Ack())
		}
		s.emitHandlerBroadcasts(result)
	})
}
