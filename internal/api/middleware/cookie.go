package middleware

import (
	"net/http"
	"time"
)

// SessionCookie carries the session handle between client and server. All
// writes use the same attributes so the browser keeps replacing one cookie.
type SessionCookie struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func (c *SessionCookie) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Set writes the handle with a lifetime of ttl, rounded down to seconds.
func (c *SessionCookie) Set(w http.ResponseWriter, handle string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	if maxAge <= 0 {
		c.Clear(w)
		return
	}
	http.SetCookie(w, c.cookie(handle, maxAge))
}

func (c *SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c *SessionCookie) cookie(value string, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
	if maxAge > 0 {
		cookie.Expires = time.Now().Add(time.Duration(maxAge) * time.Second)
	} else {
		cookie.Expires = time.Unix(0, 0)
	}
	return cookie
}
