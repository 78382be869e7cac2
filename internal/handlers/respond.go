package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cliptube/backend/internal/logging"
)

// apiResponse is the uniform success envelope returned by every endpoint.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// apiError is the uniform failure envelope.
type apiError struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// respondData wraps data in the success envelope and writes it.
func respondData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	respondJSON(ctx, w, status, apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// respondError wraps a failure in the error envelope and writes it.
func respondError(ctx context.Context, w http.ResponseWriter, status int, message string, errs ...string) {
	if len(errs) == 0 {
		errs = []string{message}
	}
	respondJSON(ctx, w, status, apiError{
		StatusCode: status,
		Message:    message,
		Success:    false,
		Errors:     errs,
	})
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}
