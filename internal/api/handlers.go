// Package api exposes the read-only dashboard query surface over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"prediction-dashboard/internal/dashboard"
)

// Handler holds dependencies for the HTTP handlers.
type Handler struct {
	dashboard *dashboard.Service
	logger    zerolog.Logger
}

// NewHandler creates a Handler.
func NewHandler(svc *dashboard.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		dashboard: svc,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// GetDashboard handles GET /api/dashboard. The response is never cached:
// the presentation layer must always see the freshest snapshot.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	noCache(w)

	snap, lastErr := h.dashboard.Latest()
	if snap == nil {
		msg := "no data yet"
		if lastErr != nil {
			msg = lastErr.Error()
		}
		respondError(w, http.StatusServiceUnavailable, msg)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// RefreshDashboard handles POST /api/dashboard/refresh, the manual refresh
// trigger. A failed refresh keeps the previous snapshot and reports the
// error to the caller.
func (h *Handler) RefreshDashboard(w http.ResponseWriter, r *http.Request) {
	noCache(w)

	snap, err := h.dashboard.Refresh(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

func noCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}
