package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STUDENT_REGISTRY_ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/registry")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres://app:secret@db:5432/registry", cfg.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}
