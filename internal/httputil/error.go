package httputil

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func Forbidden(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("forbidden", "message", msg, "error", err)
	} else {
		slog.Warn("forbidden", "message", msg)
	}
	http.Error(w, msg, http.StatusForbidden)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}

// Error maps a service error to a response. Domain errors carry a message that is safe to
// show, everything else is logged and hidden behind msg or a 500.
func Error(w http.ResponseWriter, msg string, err error) {
	var domainErr *bracket.DomainError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		NotFound(w, msg, err)
	case errors.Is(err, bracket.ErrUnauthorized) && errors.As(err, &domainErr):
		Forbidden(w, domainErr.Error(), nil)
	case errors.Is(err, bracket.ErrValidation) && errors.As(err, &domainErr):
		BadRequest(w, domainErr.Error(), nil)
	default:
		InternalServerError(w, msg, err)
	}
}
