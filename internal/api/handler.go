// Package api exposes the analytics services over HTTP: the current
// /api/v1 endpoints, the first-generation /analytics endpoints kept for
// existing consumers, and the health and debug probes.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"booklake/internal/domain"
	"booklake/internal/service/analytics"
	"booklake/internal/service/books"
	"booklake/internal/service/sales"
	"booklake/internal/service/users"
)

// Handler carries the wired services for all endpoints.
type Handler struct {
	sales     *sales.Service
	books     *books.Service
	users     *users.Service
	analytics *analytics.Service
	exec      domain.Executor
	logger    *slog.Logger
	version   string
	started   time.Time
}

// NewHandler creates the endpoint handler. The executor is used directly only
// by the health probe.
func NewHandler(
	salesSvc *sales.Service,
	booksSvc *books.Service,
	usersSvc *users.Service,
	analyticsSvc *analytics.Service,
	exec domain.Executor,
	version string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		sales:     salesSvc,
		books:     booksSvc,
		users:     usersSvc,
		analytics: analyticsSvc,
		exec:      exec,
		logger:    logger.With("component", "api"),
		version:   version,
		started:   time.Now(),
	}
}

// Health reports service liveness plus a round trip through the warehouse.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	dbStatus := "connected"
	if _, err := h.exec.Query(r.Context(), "SELECT 1 AS test"); err != nil {
		h.logger.Warn("health probe failed", "error", err)
		status = "degraded"
		dbStatus = "error: " + err.Error()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          status,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"version":         h.version,
		"database_status": dbStatus,
		"uptime_seconds":  int64(time.Since(h.started).Seconds()),
	})
}
