package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dom/qr-code-website/internal/domain"
	"github.com/dom/qr-code-website/internal/service"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
)

// ErrorWriter turns an error into a response.
type ErrorWriter interface {
	WriteError(w http.ResponseWriter, r *http.Request, err error)
}

// Session resolves the session cookie, if any, and stores the user id in the
// request context. Requests without a live session pass through anonymous;
// a stale cookie is cleared. With sliding sessions the cookie is reissued so
// its lifetime tracks the server side.
func Session(sessions *service.SessionService, cookies *SessionCookie, errs ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handle, ok := cookies.Read(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessions.Resolve(r.Context(), handle)
			if err != nil {
				if errors.Is(err, domain.ErrAuthentication) {
					cookies.Clear(w)
					next.ServeHTTP(w, r)
					return
				}
				errs.WriteError(w, r, err)
				return
			}

			cookies.Set(w, handle, time.Until(session.ExpiresAt))

			ctx := context.WithValue(r.Context(), UserIDKey, session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests that Session left anonymous.
func RequireSession(errs ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetUserID(r.Context()); !ok {
				errs.WriteError(w, r, domain.ErrAuthentication)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// WithUserID is used by tests to fake an authenticated request.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
