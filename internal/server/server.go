package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/profile-auth/internal/auth"
	"github.com/hongminglow/profile-auth/internal/config"
	"github.com/hongminglow/profile-auth/internal/http/handlers"
	"github.com/hongminglow/profile-auth/internal/middleware"
	"github.com/hongminglow/profile-auth/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.UserStore, sessions auth.Sessions, logger *zap.Logger) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Handler(cfg, store, sessions, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}

	return &Server{inner: httpServer}
}

// Handler builds the routed, middleware-wrapped handler tree.
func Handler(cfg config.Config, store storage.UserStore, sessions auth.Sessions, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), store, logger).Register(mux)
	handlers.NewHomeHandler(logger).Register(mux)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	handlers.NewAuthHandler(store, hasher, sessions, logger).Register(mux)

	return middleware.Recover(logger, middleware.Logging(logger, mux))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
