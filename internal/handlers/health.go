package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/novaterra/npc-engine/internal/services"
)

// HealthResponse reports overall service health and per-backend
// component status.
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

// HealthHandler checks connectivity to the memory store and the
// roster batch store. Either may be nil when not configured.
type HealthHandler struct {
	memory services.HealthChecker
	roster services.HealthChecker
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(memory services.HealthChecker, roster services.HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		memory: memory,
		roster: roster,
		logger: logger,
	}
}

// ServeHTTP handles GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string)
	status := "healthy"

	check := func(name string, checker services.HealthChecker) {
		if checker == nil {
			components[name] = "not configured"
			return
		}
		if err := checker.Ping(ctx); err != nil {
			h.logger.Warn("Component health check failed", "component", name, "error", err)
			components[name] = "unhealthy"
			status = "degraded"
			return
		}
		components[name] = "healthy"
	}
	check("memory", h.memory)
	check("roster", h.roster)

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     status,
		Timestamp:  time.Now(),
		Service:    "npc-engine",
		Components: components,
	})
}
