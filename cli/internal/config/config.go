// Package config loads CLI settings: built-in defaults, then
// ~/.opsx/config.toml, then OPSX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/opsx/collab/shared/wire"
)

const envPrefix = "OPSX_"

// Config is the CLI configuration.
type Config struct {
	// ServerURL is the base URL of the collaboration server.
	ServerURL string `koanf:"server_url"`
	// Token is the bearer token for REST calls and the socket handshake.
	Token string `koanf:"token"`
	// Debug enables verbose logging.
	Debug bool `koanf:"debug"`

	// Role and Name identify the local user in chat.
	Role string `koanf:"role"`
	Name string `koanf:"name"`

	Backoff struct {
		Base time.Duration `koanf:"base"`
		Max  time.Duration `koanf:"max"`
	} `koanf:"backoff"`
	// DegradedAfter is the failed attempt count that flags degraded
	// connectivity.
	DegradedAfter int `koanf:"degraded_after"`

	// PollInterval refreshes the agent board when positive.
	PollInterval time.Duration `koanf:"poll_interval"`

	// Path is the config file that was read, if any.
	Path string `koanf:"-"`
}

var defaults = map[string]any{
	"server_url":     "http://localhost:3005",
	"role":           string(wire.RoleFounder),
	"backoff.base":   "500ms",
	"backoff.max":    "30s",
	"degraded_after": 5,
	"poll_interval":  "10s",
}

// DefaultPath returns $OPSX_HOME/config.toml, or ~/.opsx/config.toml.
func DefaultPath() (string, error) {
	if home := os.Getenv("OPSX_HOME"); home != "" {
		return filepath.Join(home, "config.toml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".opsx", "config.toml"), nil
}

// Load reads the configuration. An explicit path must exist; when path is
// empty the default location is used if present.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading config %s: %w", path, err)
	} else {
		path = ""
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if v := os.Getenv("DEBUG"); v == "1" || v == "true" {
		_ = k.Set("debug", true)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps OPSX_BACKOFF_BASE to backoff.base and OPSX_SERVER_URL to
// server_url.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(key, "backoff_"); ok {
		return "backoff." + rest
	}
	return key
}

// Validate checks required fields and normalizes Role.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")

	role, err := wire.ParseRole(c.Role)
	if err != nil {
		return fmt.Errorf("role: %w", err)
	}
	c.Role = string(role)

	if c.Backoff.Base <= 0 {
		return fmt.Errorf("backoff.base must be positive")
	}
	if c.Backoff.Max < c.Backoff.Base {
		return fmt.Errorf("backoff.max must not be below backoff.base")
	}
	return nil
}
