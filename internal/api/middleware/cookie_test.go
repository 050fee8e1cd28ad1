package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCookie(t *testing.T) {
	cookies := &SessionCookie{
		Name:     "qr_session",
		Domain:   "example.com",
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}

	t.Run("set", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cookies.Set(rec, "handle", 30*time.Minute)

		got := rec.Result().Cookies()
		require.Len(t, got, 1)
		c := got[0]
		assert.Equal(t, "qr_session", c.Name)
		assert.Equal(t, "handle", c.Value)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, "example.com", c.Domain)
		assert.Equal(t, 1800, c.MaxAge)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	})

	t.Run("set with no time left clears", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cookies.Set(rec, "handle", 500*time.Millisecond)

		got := rec.Result().Cookies()
		require.Len(t, got, 1)
		assert.Empty(t, got[0].Value)
		assert.Less(t, got[0].MaxAge, 0)
	})

	t.Run("clear keeps attributes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cookies.Clear(rec)

		got := rec.Result().Cookies()
		require.Len(t, got, 1)
		assert.Equal(t, "example.com", got[0].Domain)
		assert.Equal(t, "/", got[0].Path)
		assert.Less(t, got[0].MaxAge, 0)
	})

	t.Run("read", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, ok := cookies.Read(req)
		assert.False(t, ok)

		req.AddCookie(&http.Cookie{Name: "qr_session", Value: "abc"})
		handle, ok := cookies.Read(req)
		assert.True(t, ok)
		assert.Equal(t, "abc", handle)
	})
}
