package handler

import (
	"log/slog"
	"net/http"

	"testdeck/internal/httputil"
	"testdeck/internal/statuses"
)

// MetaHandler serves the statuses catalog and health check
type MetaHandler struct {
	registry *statuses.Registry
	logger   *slog.Logger
}

// NewMetaHandler creates a new meta handler
func NewMetaHandler(registry *statuses.Registry, logger *slog.Logger) *MetaHandler {
	return &MetaHandler{
		registry: registry,
		logger:   logger,
	}
}

// GetStatuses returns the execution status and priority catalog
// GET /api/meta/statuses
func (h *MetaHandler) GetStatuses(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.registry.Catalog())
}

// HealthCheck reports liveness
// GET /health
func (h *MetaHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
