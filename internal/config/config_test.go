package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/srgjo27/driveezzy/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "PORT", "STORAGE_BACKEND", "BOLT_PATH", "DB_HOST", "DB_PORT", "DB_USER",
		"DB_PASSWORD", "DB_NAME", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
		"SESSION_SECRET", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, config.BackendBolt, cfg.Storage.Backend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.NotEmpty(t, cfg.Session.Secret)
	assert.Equal(t, "10-M", cfg.RateLimit.Auth)
}

func TestLoad_YAMLWithEnvExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_DB_PASSWORD", "hunter2")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
app:
  port: "9000"
storage:
  backend: Postgres
database:
  password: ${TEST_DB_PASSWORD}
session:
  ttl: 2h
rates:
  Hatchback: 1800
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, config.BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, "hunter2", cfg.Database.Password)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, int64(1800), cfg.Rates["Hatchback"])
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("PORT", "5000")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Address)
	assert.Equal(t, "5000", cfg.App.Port)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORAGE_BACKEND", "dynamo")

		_, err := config.Load("")
		assert.Error(t, err)
	})

	t.Run("production without secret", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ENV", "production")

		_, err := config.Load("")
		assert.ErrorContains(t, err, "SESSION_SECRET")
	})
}
