package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"github.com/opsx/collab/server/internal/api"
	"github.com/opsx/collab/server/internal/api/handlers"
	"github.com/opsx/collab/server/internal/config"
	"github.com/opsx/collab/server/internal/crypto"
	"github.com/opsx/collab/server/internal/database"
	"github.com/opsx/collab/server/internal/store"
	"github.com/opsx/collab/server/internal/websocket"
	wshandlers "github.com/opsx/collab/server/internal/websocket/handlers"
	"github.com/opsx/collab/server/pkg/types"
	"github.com/opsx/collab/shared/logger"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP and Socket.IO server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen `ADDR` (overrides PORT)"},
			&cli.StringFlag{Name: "db", Usage: "SQLite database `PATH` (overrides DATABASE_PATH)"},
			&cli.StringFlag{Name: "redis", Usage: "Redis `URL` for the history cache (overrides REDIS_URL)"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(overridesFrom(c))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return serve(c.Context, cfg)
		},
	}
}

func overridesFrom(c *cli.Context) config.Overrides {
	var o config.Overrides
	if c.IsSet("addr") {
		v := c.String("addr")
		o.Addr = &v
	}
	if c.IsSet("db") {
		v := c.String("db")
		o.DatabasePath = &v
	}
	if c.IsSet("redis") {
		v := c.String("redis")
		o.RedisURL = &v
	}
	if c.IsSet("debug") {
		v := c.Bool("debug")
		o.Debug = &v
	}
	return o
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Infof("Opening database: %s", cfg.DatabasePath)
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	jwtManager, err := crypto.NewJWTManager(cfg.MasterSecret)
	if err != nil {
		return fmt.Errorf("failed to create JWT manager: %w", err)
	}

	sqlStore := store.NewSQL(db.DB)
	var history store.History = sqlStore
	health := map[string]handlers.Pinger{"database": handlers.PingFunc(db.PingContext)}

	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisStore.Close()
		history = &store.Layered{Primary: sqlStore, Cache: redisStore}
		health["redis"] = redisStore
		logger.Infof("Redis history cache enabled")
	}

	logger.Infof("Initializing Socket.IO server...")
	socketServer := websocket.NewSocketIOServer(
		jwtManager,
		wshandlers.NewDeps(history, sqlStore, time.Now, types.NewMessageID),
		websocket.Options{ChatRate: cfg.ChatRate},
	)
	defer socketServer.Close()

	router := api.NewRouter(api.Deps{
		JWT:            jwtManager,
		History:        history,
		Agents:         sqlStore,
		Stakeholders:   sqlStore,
		Broadcaster:    socketServer,
		Socket:         socketServer.HandleSocketIO(),
		SocketPath:     websocket.Path,
		Health:         health,
		AllowedOrigins: cfg.AllowedOrigins,
		Now:            time.Now,
		NewMessageID:   types.NewMessageID,
		NewEntityID:    types.NewEntityID,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("OPS-X server starting on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Infof("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
