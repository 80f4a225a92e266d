package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultChatRate is the sustained chat messages per second accepted from a
// single socket.
const DefaultChatRate = 5.0

// Config holds server configuration.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr         string
	DatabasePath string
	MasterSecret string
	Debug        bool
	// RedisURL enables the Redis-backed room history when set.
	RedisURL string
	// ChatRate limits chat:message frames per socket per second. Zero or
	// negative disables limiting.
	ChatRate       float64
	AllowedOrigins []string
}

// Overrides optionally overrides values from environment variables.
//
// A nil pointer means "use the environment/default value".
type Overrides struct {
	Addr         *string
	DatabasePath *string
	MasterSecret *string
	Debug        *bool
	RedisURL     *string
}

// Load loads server configuration from environment variables and applies any
// explicit overrides. A .env file in the working directory is read first when
// present; variables already set in the environment win.
func Load(overrides Overrides) (*Config, error) {
	_ = godotenv.Load()

	port := 3005
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		port = p
	}

	addr := fmt.Sprintf(":%d", port)
	if overrides.Addr != nil {
		addr = *overrides.Addr
	}

	dbPath := DatabasePath(overrides)

	masterSecret := os.Getenv("OPSX_MASTER_SECRET")
	if overrides.MasterSecret != nil {
		masterSecret = *overrides.MasterSecret
	}
	if masterSecret == "" {
		return nil, fmt.Errorf("OPSX_MASTER_SECRET environment variable is required")
	}

	debug := false
	if debugStr := os.Getenv("DEBUG"); debugStr == "true" || debugStr == "1" {
		debug = true
	}
	if overrides.Debug != nil {
		debug = *overrides.Debug
	}

	redisURL := os.Getenv("REDIS_URL")
	if overrides.RedisURL != nil {
		redisURL = *overrides.RedisURL
	}

	chatRate := DefaultChatRate
	if rateStr := os.Getenv("OPSX_CHAT_RATE"); rateStr != "" {
		r, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OPSX_CHAT_RATE %q: %w", rateStr, err)
		}
		chatRate = r
	}

	origins := []string{"*"}
	if raw := os.Getenv("OPSX_ALLOWED_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, entry := range strings.Split(raw, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				origins = append(origins, entry)
			}
		}
	}

	return &Config{
		Addr:           addr,
		DatabasePath:   dbPath,
		MasterSecret:   masterSecret,
		Debug:          debug,
		RedisURL:       redisURL,
		ChatRate:       chatRate,
		AllowedOrigins: origins,
	}, nil
}

// DatabasePath resolves the SQLite path without requiring the rest of the
// configuration. Maintenance commands use it.
func DatabasePath(overrides Overrides) string {
	_ = godotenv.Load()

	if overrides.DatabasePath != nil {
		return *overrides.DatabasePath
	}
	if p := os.Getenv("DATABASE_PATH"); p != "" {
		return p
	}
	return "./opsx.db"
}

// AllowAllOrigins reports whether CORS should accept any origin.
func (c *Config) AllowAllOrigins() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}
