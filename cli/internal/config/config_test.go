package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opsx/collab/shared/wire"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPSX_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3005", cfg.ServerURL)
	require.Equal(t, string(wire.RoleFounder), cfg.Role)
	require.Equal(t, 500*time.Millisecond, cfg.Backoff.Base)
	require.Equal(t, 30*time.Second, cfg.Backoff.Max)
	require.Equal(t, 5, cfg.DegradedAfter)
	require.Empty(t, cfg.Path)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPSX_HOME", dir)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_url = "https://collab.example/"
token = "file-token"
role = "investor"
name = "Ivy"

[backoff]
base = "1s"
max = "10s"
`), 0600))

	t.Setenv("OPSX_TOKEN", "env-token")
	t.Setenv("OPSX_BACKOFF_MAX", "20s")
	t.Setenv("OPSX_DEGRADED_AFTER", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, path, cfg.Path)
	require.Equal(t, "https://collab.example", cfg.ServerURL)
	require.Equal(t, "env-token", cfg.Token)
	require.Equal(t, string(wire.RoleInvestor), cfg.Role)
	require.Equal(t, "Ivy", cfg.Name)
	require.Equal(t, time.Second, cfg.Backoff.Base)
	require.Equal(t, 20*time.Second, cfg.Backoff.Max)
	require.Equal(t, 3, cfg.DegradedAfter)
}

func TestLoadRejectsInvalidRole(t *testing.T) {
	t.Setenv("OPSX_HOME", t.TempDir())
	t.Setenv("OPSX_ROLE", "CEO")

	_, err := Load("")
	require.ErrorIs(t, err, wire.ErrInvalidRole)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "server_url", envKey("OPSX_SERVER_URL"))
	require.Equal(t, "backoff.base", envKey("OPSX_BACKOFF_BASE"))
	require.Equal(t, "degraded_after", envKey("OPSX_DEGRADED_AFTER"))
}
