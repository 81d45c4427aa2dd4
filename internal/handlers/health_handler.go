package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/unidesk/uniadmin/pkg/logger"
)

// HealthHandler reports whether the database answers.
type HealthHandler struct {
	Ping func(ctx context.Context) error
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{Ping: ping}
}

// GET /healthz
func (h *HealthHandler) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Ping(ctx); err != nil {
		logger.Log.WithError(err).Warn("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
