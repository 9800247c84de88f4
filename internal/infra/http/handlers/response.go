package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/xavierca1/nesthome-leads/internal/usecase"
)

type errorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}

// writeUsecaseError maps use case errors to HTTP. Unknown errors are logged and hidden.
func writeUsecaseError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		de *usecase.DomainError
		te *usecase.TechnicalError
	)

	switch {
	case errors.As(err, &de):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: de.Message, Code: de.Code, Fields: de.Fields})
	case errors.Is(err, usecase.ErrInvalidCredentials):
		writeErrorResponse(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid password")
	case errors.Is(err, usecase.ErrUnauthorized):
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
	case errors.Is(err, usecase.ErrLeadNotFound):
		writeErrorResponse(w, http.StatusNotFound, "LEAD_NOT_FOUND", "Lead not found")
	case errors.Is(err, usecase.ErrNotConfigured):
		writeErrorResponse(w, http.StatusServiceUnavailable, "NOT_CONFIGURED", "Service not configured")
	case errors.As(err, &te):
		logger.Error("request failed", "code", te.Code, "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, te.Code, te.Message)
	default:
		logger.Error("request failed", "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
