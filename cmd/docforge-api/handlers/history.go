package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/docforge/docforge/internal/convert"
	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/observability"
)

// HistoryHandler exposes the recent conversion log.
type HistoryHandler struct {
	logger  *observability.Logger
	service *convert.Service
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(logger *observability.Logger, service *convert.Service) *HistoryHandler {
	return &HistoryHandler{logger: logger, service: service}
}

// HistoryEntryDTO describes one conversion attempt.
type HistoryEntryDTO struct {
	ID          string `json:"id,omitempty"`
	Input       string `json:"input"`
	Output      string `json:"output,omitempty"`
	Format      string `json:"format,omitempty"`
	InputBytes  int64  `json:"inputBytes"`
	InputSize   string `json:"inputSize"`
	OutputBytes int64  `json:"outputBytes,omitempty"`
	OutputSize  string `json:"outputSize,omitempty"`
	Pages       int    `json:"pages,omitempty"`
	DurationMS  int64  `json:"durationMs"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	ErrorCode   string `json:"errorCode,omitempty"`
	At          string `json:"at"`
}

// HistoryResponseDTO is the envelope for the history listing.
type HistoryResponseDTO struct {
	Entries []HistoryEntryDTO `json:"entries"`
}

// List handles GET /api/v1/history. Entries come back newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	recs := h.service.History().Recent()

	resp := HistoryResponseDTO{Entries: make([]HistoryEntryDTO, 0, len(recs))}
	for _, rec := range recs {
		entry := HistoryEntryDTO{
			Input:      rec.InputName,
			Output:     rec.OutputName,
			Format:     string(rec.Format),
			InputBytes: rec.InputSize,
			InputSize:  document.FormatSize(rec.InputSize),
			Pages:      rec.Pages,
			DurationMS: rec.Duration.Milliseconds(),
			Success:    rec.Success,
			Error:      rec.Error,
			ErrorCode:  string(rec.ErrorType),
			At:         rec.At.Format(time.RFC3339),
		}
		if rec.ID != uuid.Nil {
			entry.ID = rec.ID.String()
		}
		if rec.OutputSize > 0 {
			entry.OutputBytes = rec.OutputSize
			entry.OutputSize = document.FormatSize(rec.OutputSize)
		}
		resp.Entries = append(resp.Entries, entry)
	}

	writeJSON(w, http.StatusOK, resp)
}
