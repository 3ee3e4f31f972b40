package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/salonluxe/api/internal/platform/httpx"
)

var startTime = time.Now()

// ReadinessChecker verifies downstream dependencies before the instance accepts traffic.
type ReadinessChecker func(ctx context.Context) error

// HealthHandlers exposes liveness and readiness endpoints.
type HealthHandlers struct {
	ready ReadinessChecker
}

// NewHealthHandlers constructs health handlers. A nil checker marks the instance always ready.
func NewHealthHandlers(ready ReadinessChecker) *HealthHandlers {
	return &HealthHandlers{ready: ready}
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz reports whether downstream dependencies are reachable.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h != nil && h.ready != nil {
		if err := h.ready(ctx); err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("not_ready", err.Error(), http.StatusServiceUnavailable))
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
