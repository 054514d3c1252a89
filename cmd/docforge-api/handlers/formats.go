package handlers

import (
	"net/http"

	"github.com/docforge/docforge/internal/convert"
	"github.com/docforge/docforge/internal/observability"
)

// FormatsHandler reports the supported input formats.
type FormatsHandler struct {
	logger  *observability.Logger
	service *convert.Service
}

// NewFormatsHandler creates a new formats handler.
func NewFormatsHandler(logger *observability.Logger, service *convert.Service) *FormatsHandler {
	return &FormatsHandler{logger: logger, service: service}
}

// FormatDTO describes one supported format.
type FormatDTO struct {
	Extension   string   `json:"extension"`
	Name        string   `json:"name"`
	MIMETypes   []string `json:"mimeTypes"`
	Ready       bool     `json:"ready"`
	Requirement string   `json:"requirement,omitempty"`
	Detail      string   `json:"detail,omitempty"`
}

// FormatsResponseDTO is the envelope for the formats listing.
type FormatsResponseDTO struct {
	Formats []FormatDTO `json:"formats"`
}

// List handles GET /api/v1/formats.
func (h *FormatsHandler) List(w http.ResponseWriter, r *http.Request) {
	statuses := h.service.Formats()

	resp := FormatsResponseDTO{Formats: make([]FormatDTO, 0, len(statuses))}
	for _, st := range statuses {
		resp.Formats = append(resp.Formats, FormatDTO{
			Extension:   st.Info.Extension(),
			Name:        st.Info.DisplayName,
			MIMETypes:   st.Info.MIMETypes,
			Ready:       st.Ready,
			Requirement: st.Info.Requirement,
			Detail:      st.Detail,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
