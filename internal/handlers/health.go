package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether the backing database is reachable. *pgxpool.Pool
// satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds with service health information, including
// database reachability.
type HealthHandler struct {
	DB Pinger
}

// Handle implements GET /healthz.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	payload := map[string]string{"status": "ok", "database": "ok"}
	if h.DB != nil {
		if err := h.DB.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			payload["status"] = "degraded"
			payload["database"] = "unreachable"
		}
	}
	respondJSON(r.Context(), w, status, payload)
}
