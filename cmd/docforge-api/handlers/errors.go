// Package handlers provides HTTP handlers for the docforge API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docforge/docforge/internal/domain"
)

// ErrorResponseDTO is the JSON error envelope returned by every
// failing endpoint.
type ErrorResponseDTO struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Detail string   `json:"detail,omitempty"`
	Hints  []string `json:"hints,omitempty"`
}

// statusFor maps a domain error type onto an HTTP status.
func statusFor(t domain.ErrorType) int {
	switch t {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeUnsupported:
		return http.StatusUnsupportedMediaType
	case domain.ErrorTypeConversion:
		return http.StatusUnprocessableEntity
	case domain.ErrorTypeDependency:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the standard JSON envelope.
func writeError(w http.ResponseWriter, err error) {
	errType := domain.TypeOf(err)
	resp := ErrorResponseDTO{
		Code:  string(errType),
		Hints: domain.HintsOf(err),
	}

	var derr *domain.DomainError
	if errors.As(err, &derr) {
		resp.Error = derr.Message
		if derr.Err != nil {
			resp.Detail = derr.Err.Error()
		}
	} else {
		resp.Error = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(errType))
	json.NewEncoder(w).Encode(resp)
}

// writeJSON renders v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
