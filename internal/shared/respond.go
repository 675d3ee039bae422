package shared

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// RespondJSON writes the {data: ...} envelope the front end consumes.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(dataEnvelope{Data: payload})
}

// RespondError writes an error body whose message is user-facing text.
func RespondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: message})
}

// RespondServiceError maps the error taxonomy onto HTTP status codes.
// Unclassified errors are logged and hidden behind a generic message.
func RespondServiceError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case IsPermissionError(err):
		RespondError(w, http.StatusForbidden, err.Error())
	case IsStateError(err):
		RespondError(w, http.StatusConflict, err.Error())
	case IsValidationError(err):
		RespondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrNotFound):
		RespondError(w, http.StatusNotFound, "data tidak ditemukan")
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidCredentials):
		RespondError(w, http.StatusUnauthorized, "autentikasi gagal")
	default:
		if logger != nil {
			logger.Error(op, slog.Any("error", err))
		}
		RespondError(w, http.StatusInternalServerError, "terjadi kesalahan pada server")
	}
}
