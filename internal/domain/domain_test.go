package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dom/qr-code-website/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidationError_Is(t *testing.T) {
	err := fmt.Errorf("register: %w", domain.NewValidationError("Name, email, and password are required."))

	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.False(t, errors.Is(err, domain.ErrNotFound))

	var vErr *domain.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Name, email, and password are required.", vErr.Message)
}

func TestSession_IsExpired(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := &domain.Session{CreatedAt: created, ExpiresAt: created.Add(30 * time.Minute)}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "at creation", now: created, want: false},
		{name: "one nanosecond before expiry", now: s.ExpiresAt.Add(-time.Nanosecond), want: false},
		{name: "exactly at expiry", now: s.ExpiresAt, want: true},
		{name: "after expiry", now: s.ExpiresAt.Add(time.Second), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsExpired(tt.now))
		})
	}
}

func TestClientInfo_JSONMap(t *testing.T) {
	m := domain.ClientInfo{UserAgent: "curl/8.0", RemoteAddr: "10.0.0.1"}.JSONMap()
	assert.Equal(t, "curl/8.0", m["user_agent"])
	assert.Equal(t, "10.0.0.1", m["remote_addr"])

	assert.Empty(t, domain.ClientInfo{}.JSONMap())
}

func TestNotFoundError_Is(t *testing.T) {
	err := fmt.Errorf("delete: %w", domain.NewNotFoundError("QR code"))

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, "delete: QR code not found", err.Error())
}
