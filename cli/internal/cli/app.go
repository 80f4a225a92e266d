// Package cli implements the opsx command line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/opsx/collab/cli/internal/api"
	"github.com/opsx/collab/cli/internal/channel"
	"github.com/opsx/collab/cli/internal/config"
	"github.com/opsx/collab/shared/logger"
	"github.com/opsx/collab/shared/wire"
)

// Version is reported by `opsx --version`.
const Version = "0.1.0"

type cfgKey struct{}

// NewApp builds the opsx application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "opsx",
		Usage:   "OPS-X project chat and agent presence from the terminal",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  "server",
				Usage: "Collaboration server `URL`",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Bearer `TOKEN`",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if c.IsSet("server") {
				cfg.ServerURL = c.String("server")
			}
			if c.IsSet("token") {
				cfg.Token = c.String("token")
			}
			if c.Bool("debug") {
				cfg.Debug = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger.SetOutput(c.App.ErrWriter)
			if cfg.Debug {
				logger.SetLevel(logger.LevelDebug)
				logger.Debugf("Config: server=%s path=%s", cfg.ServerURL, cfg.Path)
			} else {
				logger.SetLevel(logger.LevelWarn)
			}

			c.Context = context.WithValue(c.Context, cfgKey{}, cfg)
			return nil
		},
		Commands: []*cli.Command{
			ChatCommand(),
			AgentsCommand(),
			SendCommand(),
		},
		ErrWriter: os.Stderr,
	}
}

func configFrom(c *cli.Context) *config.Config {
	cfg, _ := c.Context.Value(cfgKey{}).(*config.Config)
	return cfg
}

// session bundles the clients a command needs.
type session struct {
	cfg *config.Config
	api *api.Client
	ch  *channel.Channel
	out io.Writer
}

func newSession(c *cli.Context, realtime bool) (*session, error) {
	cfg := configFrom(c)
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	if err := checkToken(cfg.Token); err != nil {
		return nil, err
	}

	s := &session{
		cfg: cfg,
		api: api.New(cfg.ServerURL, cfg.Token),
		out: c.App.Writer,
	}
	if realtime {
		s.ch = channel.New(channel.Config{
			URL:   cfg.ServerURL,
			Token: cfg.Token,
			Backoff: channel.Backoff{
				Base: cfg.Backoff.Base,
				Max:  cfg.Backoff.Max,
			},
			DegradedAfter: cfg.DegradedAfter,
		})
	}
	return s, nil
}

func (s *session) Close() {
	if s.ch != nil {
		s.ch.Disconnect()
		s.ch.Close()
	}
	_ = s.api.Close()
}

// watchConnectivity prints degraded/restored notices.
func (s *session) watchConnectivity() {
	s.ch.On(wire.EventConnectionDegraded, func(channel.Frame) {
		fmt.Fprintln(s.out, "! connection degraded, retrying in the background")
	})
	s.ch.On(wire.EventConnectionRestored, func(channel.Frame) {
		fmt.Fprintln(s.out, "! connection restored")
	})
}
