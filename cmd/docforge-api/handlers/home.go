package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/docforge/docforge/internal/convert"
	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/observability"
)

//go:embed templates/index.html
var templateFS embed.FS

var homeTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// HomeHandler serves the browser upload page.
type HomeHandler struct {
	logger         *observability.Logger
	service        *convert.Service
	maxUploadBytes int64
}

// NewHomeHandler creates a new home page handler.
func NewHomeHandler(logger *observability.Logger, service *convert.Service, maxUploadBytes int64) *HomeHandler {
	return &HomeHandler{
		logger:         logger,
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

type homePageData struct {
	MaxUpload string
	Formats   []FormatDTO
}

// Home handles GET /.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := homePageData{MaxUpload: document.FormatSize(h.maxUploadBytes)}
	for _, st := range h.service.Formats() {
		data.Formats = append(data.Formats, FormatDTO{
			Extension:   st.Info.Extension(),
			Name:        st.Info.DisplayName,
			Ready:       st.Ready,
			Requirement: st.Info.Requirement,
			Detail:      st.Detail,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := homeTemplate.Execute(w, data); err != nil {
		h.logger.Error().Err(err).Msg("Cannot render home page")
	}
}
