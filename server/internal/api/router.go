package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/opsx/collab/server/internal/api/handlers"
	"github.com/opsx/collab/server/internal/api/middleware"
	"github.com/opsx/collab/server/internal/crypto"
	"github.com/opsx/collab/server/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps wires the REST API to storage, auth and the socket layer.
type Deps struct {
	JWT          *crypto.JWTManager
	History      store.History
	Agents       handlers.AgentStore
	Stakeholders handlers.StakeholderStore
	Broadcaster  handlers.Broadcaster
	// Socket serves the Socket.IO endpoint when set.
	Socket gin.HandlerFunc
	// SocketPath is where Socket is mounted.
	SocketPath     string
	Health         map[string]handlers.Pinger
	AllowedOrigins []string
	Now            func() time.Time
	NewMessageID   func() string
	NewEntityID    func() string
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// NewRouter builds the HTTP router.
func NewRouter(d Deps) *gin.Engine {
	if d.Now == nil {
		d.Now = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if len(d.AllowedOrigins) > 0 {
		router.Use(cors.New(corsConfig(d.AllowedOrigins)))
	}
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.LoggingMiddleware())

	// Root endpoint - returns plain text for client validation
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to OPS-X collaboration server!")
	})

	health := handlers.NewHealthHandler(d.Health)
	router.GET("/healthz", health.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chat := handlers.NewChatHandler(d.History, d.Stakeholders, d.Broadcaster, d.Now, d.NewMessageID)
	agents := handlers.NewAgentHandler(d.Agents, d.Broadcaster)
	stakeholders := handlers.NewStakeholderHandler(d.Stakeholders, d.Now, d.NewEntityID)

	// Protected routes (auth required)
	v1 := router.Group("/v1")
	protected := v1.Group("/projects/:id")
	protected.Use(middleware.AuthMiddleware(d.JWT))
	{
		protected.GET("/chat/messages", chat.ListMessages)
		protected.POST("/chat/message", chat.PostMessage)

		protected.GET("/agents", agents.ListAgents)
		protected.POST("/agents/:agentId/status", agents.UpdateStatus)

		protected.GET("/stakeholders", stakeholders.ListStakeholders)
		protected.POST("/stakeholders", stakeholders.CreateStakeholder)
	}

	// Socket.IO authenticates during its own handshake.
	if d.Socket != nil {
		router.Any(d.SocketPath, d.Socket)
		router.Any(d.SocketPath+"/*any", d.Socket)
	}

	return router
}
