package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "STORE_DRIVER", "DATABASE_URL", "SESSION_BACKEND", "SESSION_SECRET",
	"SESSION_TTL_HOURS", "REDIS_URL", "COOKIE_SECURE", "BCRYPT_COST", "LOG_LEVEL", "LOG_DEV",
	"DB_HOST", "DB_PORT", "DB_USERNAME", "DB_PASSWORD", "DB_NAME",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/app")
	t.Setenv("SESSION_SECRET", strings.Repeat("s", 32))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, SessionCookie, cfg.SessionBackend)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogDev)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_DEV", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddress())
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, SessionRedis, cfg.SessionBackend)
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogDev)
}

func TestLoad_InvalidTTLFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SESSION_SECRET", strings.Repeat("s", 32))
	t.Setenv("SESSION_TTL_HOURS", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
}

func TestLoad_DatabaseURLFromParts(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", strings.Repeat("s", 32))
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USERNAME", "app")
	t.Setenv("DB_PASSWORD", "p@ss word")
	t.Setenv("DB_NAME", "accounts")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:p%40ss%20word@db:6543/accounts", cfg.DatabaseURL)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "postgres without dsn",
			env:  map[string]string{"SESSION_SECRET": strings.Repeat("s", 32)},
			want: "DATABASE_URL",
		},
		{
			name: "short secret",
			env:  map[string]string{"STORE_DRIVER": "memory", "SESSION_SECRET": "short"},
			want: "SESSION_SECRET",
		},
		{
			name: "unknown store",
			env:  map[string]string{"STORE_DRIVER": "sqlite", "SESSION_SECRET": strings.Repeat("s", 32)},
			want: "STORE_DRIVER",
		},
		{
			name: "unknown session backend",
			env:  map[string]string{"STORE_DRIVER": "memory", "SESSION_BACKEND": "jwt"},
			want: "SESSION_BACKEND",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
