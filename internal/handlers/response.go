package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"sharerapy/internal/contextutil"
	"sharerapy/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes returned alongside service errors.
const (
	CodeValidation      = "validation_error"
	CodeInvalidInput    = "invalid_input"
	CodeNotFound        = "not_found"
	CodeExternalService = "external_service_error"
	CodeInternal        = "internal_error"
)

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeErrorCode(w, statusCode, message, "")
}

func writeErrorCode(w http.ResponseWriter, statusCode int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		logger.WarnContext(ctx, "validation failed", "error", err)
		writeErrorCode(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()), CodeValidation)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		logger.WarnContext(ctx, "invalid input", "error", err)
		writeErrorCode(w, http.StatusBadRequest, "Invalid input", CodeInvalidInput)
	case errors.Is(err, service.ErrNotFound):
		logger.InfoContext(ctx, "resource not found", "error", err)
		writeErrorCode(w, http.StatusNotFound, "Resource not found", CodeNotFound)
	case errors.Is(err, service.ErrExternalService):
		logger.ErrorContext(ctx, "external service error", "error", err)
		writeErrorCode(w, http.StatusBadGateway, "External service error", CodeExternalService)
	default:
		logger.ErrorContext(ctx, "service error", "error", err)
		writeErrorCode(w, http.StatusInternalServerError, defaultMsg, CodeInternal)
	}
}
