package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dom/qr-code-website/internal/domain"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const internalErrorMessage = "An internal server error occurred."

// HandlerFunc is an http handler that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorMapper is the single place where errors become HTTP responses.
type ErrorMapper struct {
	log *slog.Logger
}

func NewErrorMapper(log *slog.Logger) *ErrorMapper {
	return &ErrorMapper{log: log}
}

// Handle adapts fn to http.HandlerFunc, mapping any returned error.
func (m *ErrorMapper) Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			m.WriteError(w, r, err)
		}
	}
}

func (m *ErrorMapper) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)

	if status >= http.StatusInternalServerError {
		m.log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			slog.Any("error", err),
		)
	} else {
		m.log.DebugContext(r.Context(), "request rejected",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}

	writeJSON(w, status, ErrorResponse{Error: message})
}

// classify maps the domain error taxonomy to a status and a message that is
// safe to return. Unknown errors never leak their text.
func classify(err error) (int, string) {
	var validationErr *domain.ValidationError
	var notFoundErr *domain.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Message
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "Invalid request."
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, "User with this email already exists."
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, domain.ErrAuthentication):
		return http.StatusForbidden, "User not logged in"
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, notFoundErr.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}
