package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/docforge/docforge/internal/convert"
	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/observability"
)

// ConvertHandler handles document conversion requests.
type ConvertHandler struct {
	logger         *observability.Logger
	service        *convert.Service
	maxUploadBytes int64
}

// NewConvertHandler creates a new conversion handler.
func NewConvertHandler(logger *observability.Logger, service *convert.Service, maxUploadBytes int64) *ConvertHandler {
	return &ConvertHandler{
		logger:         logger,
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Convert handles POST /api/v1/convert. The upload arrives as a
// multipart form with a single "file" field; the response is either
// the PDF as an attachment or a JSON error envelope.
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	// Allow some multipart framing overhead on top of the payload cap.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+(1<<20))

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, domain.ValidationError("request body too large", err))
			return
		}
		writeError(w, domain.ValidationError(`multipart form must carry a "file" field`, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, domain.ValidationError("request body too large", err))
			return
		}
		writeError(w, domain.IOError("cannot read upload", err))
		return
	}

	res, err := h.service.Convert(r.Context(), header.Filename, data)
	if err != nil {
		h.logger.WithRequest(chimiddleware.GetReqID(r.Context())).Error().
			Err(err).
			Str("input", header.Filename).
			Str("code", string(domain.TypeOf(err))).
			Msg("Conversion failed")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.OutputName))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PDF)))
	w.Header().Set("X-Conversion-Id", res.ID.String())
	w.Header().Set("X-Page-Count", strconv.Itoa(res.Pages))
	w.Write(res.PDF)
}
