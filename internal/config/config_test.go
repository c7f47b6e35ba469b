package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/skillswap")
	t.Setenv("JWT_SECRET", "secret")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)
	for _, k := range []string{"ENV", "HTTP_ADDR", "JWT_ISSUER", "REDIS_ADDR", "REDIS_DB", "CATALOG_CACHE_TTL", "EXPIRY_SWEEP_INTERVAL", "CORS_ALLOWED_ORIGINS", "TELEGRAM_TOKEN"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "skill_swap", cfg.JWT.Issuer)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Zero(t, cfg.ExpirySweepInterval)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CATALOG_CACHE_TTL", "30s")
	t.Setenv("EXPIRY_SWEEP_INTERVAL", "1h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.edu, https://b.edu,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, time.Hour, cfg.ExpirySweepInterval)
	assert.Equal(t, []string{"https://a.edu", "https://b.edu"}, cfg.CORSAllowedOrigins)
}

func TestFromEnvRequired(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "DB_DSN")

	t.Setenv("DB_DSN", "postgres://localhost/skillswap")
	t.Setenv("JWT_SECRET", "")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestFromEnvInvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_DB", "two")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("REDIS_DB", "")
	t.Setenv("EXPIRY_SWEEP_INTERVAL", "-1m")
	_, err = FromEnv()
	assert.Error(t, err)
}
