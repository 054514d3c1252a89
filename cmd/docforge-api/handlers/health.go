package handlers

import (
	"net/http"

	"github.com/docforge/docforge/internal/convert"
)

// HealthResponseDTO reports service liveness and converter readiness.
type HealthResponseDTO struct {
	Status     string          `json:"status"`
	Service    string          `json:"service"`
	Version    string          `json:"version"`
	Converters map[string]bool `json:"converters"`
}

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	service *convert.Service
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service *convert.Service) *HealthHandler {
	return &HealthHandler{service: service}
}

// Health reports liveness plus per-format converter readiness, so a
// probe can tell a degraded host (LibreOffice missing) from a dead one.
// The status code stays 200 either way.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	converters := make(map[string]bool)
	degraded := false
	for _, st := range h.service.Formats() {
		converters[string(st.Info.Format)] = st.Ready
		if !st.Ready {
			degraded = true
		}
	}

	status := "healthy"
	if degraded {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, HealthResponseDTO{
		Status:     status,
		Service:    "docforge",
		Version:    "0.1.0",
		Converters: converters,
	})
}
