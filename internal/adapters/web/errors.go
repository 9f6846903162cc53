package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"invoice-engine/internal/core"
	"invoice-engine/internal/export"
)

type errorResponse struct {
	Error     string   `json:"error"`
	Code      string   `json:"code"`
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorDetails(w, r, message, code, status, nil)
}

func writeErrorDetails(w http.ResponseWriter, r *http.Request, message, code string, status int, details []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps domain errors onto HTTP status codes: input
// problems are 400, illegal lifecycle moves are 409, missing invoices
// are 404, everything else is 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *core.ValidationError
		itemErr       *core.ItemError
		invalidErr    *core.InvalidInvoiceError
		transitionErr *core.InvalidTransitionError
		lockedErr     *core.InvoiceLockedError
		renderErr     *export.RenderError
		serialErr     *export.SerializationError
	)

	switch {
	case errors.As(err, &invalidErr):
		details := make([]string, len(invalidErr.Items))
		for i, item := range invalidErr.Items {
			details[i] = item.Error()
		}
		writeErrorDetails(w, r, "invoice has invalid items", "VALIDATION_ERROR", http.StatusBadRequest, details)
	case errors.As(err, &validationErr), errors.As(err, &itemErr):
		writeError(w, r, err.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
	case errors.As(err, &transitionErr):
		writeError(w, r, err.Error(), "INVALID_TRANSITION", http.StatusConflict)
	case errors.As(err, &lockedErr):
		writeError(w, r, err.Error(), "INVOICE_LOCKED", http.StatusConflict)
	case errors.As(err, &renderErr), errors.As(err, &serialErr):
		writeError(w, r, err.Error(), "EXPORT_FAILED", http.StatusInternalServerError)
	case strings.Contains(err.Error(), "not found"):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
