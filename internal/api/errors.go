package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"booklake/internal/domain"
)

// errorBody is the uniform error envelope for every endpoint.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP status codes. Statement failures and
// timeouts return a generic detail; the full error goes to the log only.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validation *domain.ValidationError
	var notFound *domain.NotFoundError
	var unavailable *domain.UnavailableError
	var stmt *domain.StatementError
	var timeout *domain.StatementTimeoutError

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: validation.Message})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorBody{Detail: notFound.Message})
	case errors.As(err, &unavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Detail: unavailable.Message})
	case errors.As(err, &stmt), errors.As(err, &timeout):
		logger.Error("statement failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "Failed to retrieve data"})
	default:
		logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "Internal server error"})
	}
}
