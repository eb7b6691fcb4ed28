package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/solexplorer/solexplorer/shared/api"
	"github.com/solexplorer/solexplorer/shared/logger"
	"github.com/solexplorer/solexplorer/shared/utils"
)

// Health is a liveness probe endpoint.
// Returns 200 OK if the server is running.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, api.HealthResponse{Status: "ok"})
}

// Ready is a readiness probe endpoint.
// Returns 503 Service Unavailable while the RPC node is unreachable or behind.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		logger.Log.Warn("readiness check failed", "component", "health", "error", err)
		utils.WriteJSON(w, http.StatusServiceUnavailable, api.HealthResponse{
			Status: "unavailable",
			Checks: map[string]string{"rpc": err.Error()},
		})
		return
	}

	writeJSON(w, api.HealthResponse{Status: "ok", Checks: map[string]string{"rpc": "ok"}})
}
