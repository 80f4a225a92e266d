package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATABASE_PATH", "OPSX_MASTER_SECRET", "DEBUG", "REDIS_URL",
		"OPSX_CHAT_RATE", "OPSX_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_RequiresMasterSecret(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	_, err := Load(Overrides{})
	require.ErrorContains(t, err, "OPSX_MASTER_SECRET")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("OPSX_MASTER_SECRET", "s3cret")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	require.Equal(t, ":3005", cfg.Addr)
	require.Equal(t, "./opsx.db", cfg.DatabasePath)
	require.False(t, cfg.Debug)
	require.Empty(t, cfg.RedisURL)
	require.Equal(t, DefaultChatRate, cfg.ChatRate)
	require.True(t, cfg.AllowAllOrigins())
}

func TestLoad_EnvAndOverrides(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("OPSX_MASTER_SECRET", "env-secret")
	t.Setenv("PORT", "4000")
	t.Setenv("DEBUG", "1")
	t.Setenv("OPSX_CHAT_RATE", "2.5")
	t.Setenv("OPSX_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	db := "/tmp/x.db"
	debug := false
	cfg, err := Load(Overrides{DatabasePath: &db, Debug: &debug})
	require.NoError(t, err)
	require.Equal(t, ":4000", cfg.Addr)
	require.Equal(t, db, cfg.DatabasePath)
	require.False(t, cfg.Debug)
	require.Equal(t, 2.5, cfg.ChatRate)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	require.False(t, cfg.AllowAllOrigins())
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("OPSX_MASTER_SECRET", "s")
	t.Setenv("PORT", "http")

	_, err := Load(Overrides{})
	require.Error(t, err)
}

func TestDatabasePath_NoSecretNeeded(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	require.Equal(t, "./opsx.db", DatabasePath(Overrides{}))

	t.Setenv("DATABASE_PATH", "/data/opsx.db")
	require.Equal(t, "/data/opsx.db", DatabasePath(Overrides{}))

	override := "/tmp/other.db"
	require.Equal(t, override, DatabasePath(Overrides{DatabasePath: &override}))
}
