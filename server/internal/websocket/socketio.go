package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsx/collab/server/internal/crypto"
	"github.com/opsx/collab/server/internal/websocket/handlers"
	"github.com/opsx/collab/shared/logger"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
	sockettypes "github.com/zishang520/socket.io/v3/pkg/types"
	"golang.org/x/time/rate"
)

// Path is where the Socket.IO endpoint is mounted.
const Path = "/v1/updates"

const (
	// SocketIOPingInterval defines how frequently the server pings clients to
	// detect stale/disconnected sockets.
	SocketIOPingInterval = 5 * time.Second

	// SocketIOPingTimeout defines how long the server waits before
	// considering a socket dead (no pong received).
	SocketIOPingTimeout = 15 * time.Second
)

// Options configures a SocketIOServer.
type Options struct {
	// ChatRate limits chat:message frames per socket per second. Zero or
	// negative disables limiting.
	ChatRate float64
}

// SocketIOServer wraps the Socket.IO server for collaboration rooms.
type SocketIOServer struct {
	jwtManager *crypto.JWTManager
	server     *socket.Server
	socketData sync.Map // Maps socket ID to *SocketData
	rooms      *RoomRegistry
	deps       handlers.Deps
	chatRate   float64
}

// NewSocketIOServer creates a new Socket.IO v4 server.
func NewSocketIOServer(jwtManager *crypto.JWTManager, deps handlers.Deps, options Options) *SocketIOServer {
	opts := socket.DefaultServerOptions()

	opts.SetCors(&sockettypes.Cors{
		Origin:      "*",
		Credentials: false,
	})
	opts.SetPingTimeout(SocketIOPingTimeout)
	opts.SetPingInterval(SocketIOPingInterval)
	opts.SetPath(Path)

	server := socket.NewServer(nil, opts)

	s := &SocketIOServer{
		jwtManager: jwtManager,
		server:     server,
		rooms:      NewRoomRegistry(),
		deps:       deps,
		chatRate:   options.ChatRate,
	}

	s.server.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		s.handleConnection(client)
	})

	return s
}

// SocketData stores connection metadata for each socket.
type SocketData struct {
	UserID string
	Name   string
	Role   string
	// Limiter throttles chat:message; nil when limiting is disabled.
	Limiter *rate.Limiter
	Socket  *socket.Socket // Reference to the socket for emitting
}

func decodeAny(input any, out any) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Broadcast emits event to every socket currently in room.
func (s *SocketIOServer) Broadcast(room, event string, payload any) {
	for _, socketID := range s.rooms.Members(room) {
		sd := s.getSocketData(socketID)
		if sd.Socket == nil {
			continue
		}
		logger.Tracef("Emitting %s to room %s (socket %s)", event, room, socketID)
		sd.Socket.Emit(event, payload)
	}
}

// Rooms exposes the membership registry.
func (s *SocketIOServer) Rooms() *RoomRegistry {
	return s.rooms
}

func getFirstAnyWithAck(data []any) (any, func(...any)) {
	var ack func(...any)
	if len(data) == 0 {
		return nil, nil
	}
	if cb, ok := data[len(data)-1].(func(...any)); ok {
		ack = cb
		data = data[:len(data)-1]
	} else if cb, ok := data[len(data)-1].(socket.Ack); ok {
		ack = func(args ...any) {
			cb(args, nil)
		}
		data = data[:len(data)-1]
	}
	if len(data) == 0 {
		return nil, ack
	}
	return data[0], ack
}

// getSocketData retrieves socket metadata by socket ID.
func (s *SocketIOServer) getSocketData(socketID string) *SocketData {
	if data, ok := s.socketData.Load(socketID); ok {
		if sd, ok := data.(*SocketData); ok {
			return sd
		}
	}
	return &SocketData{} // Return empty struct if not found
}

// HandleSocketIO creates a Gin handler for Socket.IO.
func (s *SocketIOServer) HandleSocketIO() gin.HandlerFunc {
	httpHandler := s.server.ServeHandler(nil)

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "false")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusOK)
			return
		}

		logger.Tracef("Socket.IO request: %s %s", c.Request.Method, c.Request.URL.Path)

		httpHandler.ServeHTTP(c.Writer, c.Request)
	}
}

// Close shuts down the Socket.IO server.
func (s *SocketIOServer) Close() error {
	s.server.Close(nil)
	return nil
}
