package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/qr-code-website/internal/domain"
	"github.com/dom/qr-code-website/internal/repository/memory"
	"github.com/dom/qr-code-website/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingErrorWriter stands in for the handlers' error mapper.
type recordingErrorWriter struct {
	err error
}

func (e *recordingErrorWriter) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	e.err = err
	w.WriteHeader(http.StatusForbidden)
}

func testCookie() *SessionCookie {
	return &SessionCookie{Name: "qr_session", SameSite: http.SameSiteLaxMode}
}

func newSessions(t *testing.T, now *time.Time) *service.SessionService {
	t.Helper()
	return service.NewSessionService(memory.NewSessionRepository(), service.SessionConfig{
		Secret: []byte("middleware-test-secret-0123456789"),
		TTL:    30 * time.Minute,
	}, service.WithClock(func() time.Time { return *now }))
}

func lastCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

func TestSession(t *testing.T) {
	now := time.Now()
	sessions := newSessions(t, &now)
	cookies := testCookie()
	errs := &recordingErrorWriter{}

	var seenUserID int64
	var seenOK bool
	handler := Session(sessions, cookies, errs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID, seenOK = GetUserID(r.Context())
	}))

	serve := func(handle string) *httptest.ResponseRecorder {
		seenUserID, seenOK = 0, false
		req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
		if handle != "" {
			req.AddCookie(&http.Cookie{Name: "qr_session", Value: handle})
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("no cookie passes through anonymous", func(t *testing.T) {
		rec := serve("")
		assert.False(t, seenOK)
		assert.Nil(t, lastCookie(rec, "qr_session"))
	})

	t.Run("live session sets user id and refreshes cookie", func(t *testing.T) {
		handle, _, err := sessions.Create(context.Background(), 7, domain.ClientInfo{})
		require.NoError(t, err)

		rec := serve(handle)
		assert.True(t, seenOK)
		assert.Equal(t, int64(7), seenUserID)

		cookie := lastCookie(rec, "qr_session")
		require.NotNil(t, cookie)
		assert.Equal(t, handle, cookie.Value)
		assert.Greater(t, cookie.MaxAge, 0)
	})

	t.Run("garbage cookie is cleared", func(t *testing.T) {
		rec := serve("garbage")
		assert.False(t, seenOK)
		assert.Nil(t, errs.err)

		cookie := lastCookie(rec, "qr_session")
		require.NotNil(t, cookie)
		assert.Less(t, cookie.MaxAge, 0)
	})

	t.Run("expired session is cleared", func(t *testing.T) {
		handle, _, err := sessions.Create(context.Background(), 8, domain.ClientInfo{})
		require.NoError(t, err)

		now = now.Add(31 * time.Minute)
		rec := serve(handle)
		assert.False(t, seenOK)

		cookie := lastCookie(rec, "qr_session")
		require.NotNil(t, cookie)
		assert.Less(t, cookie.MaxAge, 0)
	})
}

func TestRequireSession(t *testing.T) {
	errs := &recordingErrorWriter{}
	called := false
	handler := RequireSession(errs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	t.Run("anonymous is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/qr-codes", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.ErrorIs(t, errs.err, domain.ErrAuthentication)
	})

	t.Run("authenticated passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/user/qr-codes", nil)
		req = req.WithContext(WithUserID(req.Context(), 3))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.True(t, called)
	})
}
