package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cbthost/voter-registry/internal/services"
	"github.com/cbthost/voter-registry/internal/storage"
	"github.com/cbthost/voter-registry/internal/store"
)

const maxBodyBytes = 1 << 20

// Envelope is the response shape shared by every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Message: message})
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError translates a workflow error into the response envelope.
// notFound is the message used when the target record does not exist.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, notFound string) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, services.ErrDuplicateVoter),
		errors.Is(err, services.ErrIneligible),
		errors.Is(err, services.ErrSelfDeletion):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrDuplicateKey):
		writeError(w, http.StatusConflict, "Admin with this username or email already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, store.ErrNotFound), errors.Is(err, storage.ErrObjectNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, services.ErrExportsDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
