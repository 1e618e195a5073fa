package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/profile-auth/internal/http/respond"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
	db        Pinger
	logger    *zap.Logger
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, db: db, logger: logger}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code, database := "ok", http.StatusOK, "ok"
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health: database ping failed", zap.Error(err))
		status, code, database = "degraded", http.StatusServiceUnavailable, "unavailable"
	}
	respond.JSON(w, h.logger, code, status, map[string]string{
		"uptime":   time.Since(h.startedAt).Truncate(time.Second).String(),
		"database": database,
	})
}
