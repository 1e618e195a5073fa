package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hongminglow/profile-auth/internal/auth"
	"github.com/hongminglow/profile-auth/internal/config"
	"github.com/hongminglow/profile-auth/internal/storage/memory"
)

func testConfig() config.Config {
	return config.Config{
		Port:           "0",
		StoreDriver:    config.StoreMemory,
		SessionBackend: config.SessionCookie,
		SessionSecret:  strings.Repeat("k", 32),
		SessionTTL:     time.Hour,
		BcryptCost:     4,
	}
}

func TestHandler_Routes(t *testing.T) {
	cfg := testConfig()
	core, logs := observer.New(zap.InfoLevel)
	sessions := auth.NewCookieSessions([]byte(cfg.SessionSecret), cfg.SessionTTL, false)
	h := Handler(cfg, memory.New(), sessions, zap.New(core))

	tests := []struct {
		path string
		want int
	}{
		{"/", http.StatusOK},
		{"/health", http.StatusOK},
		{"/auth/login", http.StatusOK},
		{"/auth/register", http.StatusOK},
		{"/auth/profile", http.StatusFound},
		{"/nope", http.StatusNotFound},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.want, rec.Code, tc.path)
	}

	assert.Equal(t, len(tests), logs.FilterMessage("http request").Len(), "every request is access-logged")
}

func TestNew_UsesConfiguredAddress(t *testing.T) {
	cfg := testConfig()
	cfg.Port = "9191"
	sessions := auth.NewCookieSessions([]byte(cfg.SessionSecret), cfg.SessionTTL, false)

	srv := New(cfg, memory.New(), sessions, zap.NewNop())
	assert.Equal(t, ":9191", srv.inner.Addr)
	assert.NotNil(t, srv.inner.Handler)
}
