package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Checker checks one dependency.
type Checker func(ctx context.Context) error

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	checkers  map[string]Checker
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler creates a health handler. Readiness runs every checker.
func NewHealthHandler(logger *slog.Logger, checkers map[string]Checker) *HealthHandler {
	return &HealthHandler{
		checkers:  checkers,
		logger:    logger,
		startTime: time.Now(),
	}
}

// HealthResponse is the JSON response for liveness checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Checks  map[string]string `json:"checks"`
	Status  string            `json:"status"`
	Service string            `json:"service"`
}

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz handles liveness checks.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: "fraud-detector",
		Uptime:  time.Since(h.startTime).String(),
	})
}

// Readyz handles readiness checks.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.checkers))
	ready := true
	for name, check := range h.checkers {
		if err := check(ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed",
				slog.String("check", name),
				slog.String("error", err.Error()),
			)
			checks[name] = "unavailable"
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	resp := ReadinessResponse{Status: "ready", Service: "fraud-detector", Checks: checks}
	code := http.StatusOK
	if !ready {
		resp.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}
