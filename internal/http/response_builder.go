// Package http serves the JSON API over the entity store and the
// derivation engines.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"despesas/internal/core"
	applog "despesas/internal/log"
)

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto status codes: missing entities are
// 404, validation failures 422, malformed payloads 400, the rest 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsNotFound(err):
		status = http.StatusNotFound
	case core.IsValidation(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errBadPayload):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path, applog.FieldError, err)
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}
