package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Session binds a client to a user id until ExpiresAt.
type Session struct {
	ID             uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         int64             `json:"userId" gorm:"not null;index"`
	Client         datatypes.JSONMap `json:"client,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time         `json:"createdAt" gorm:"not null"`
	LastActivityAt time.Time         `json:"lastActivityAt" gorm:"not null"`
	ExpiresAt      time.Time         `json:"expiresAt" gorm:"not null;index"`
}

func (Session) TableName() string { return "user_sessions" }

// IsExpired reports whether the session is dead at now. A session is dead at
// exactly ExpiresAt, not one tick after.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ClientInfo describes the client a session was issued to.
type ClientInfo struct {
	UserAgent  string
	RemoteAddr string
}

func (c ClientInfo) JSONMap() datatypes.JSONMap {
	m := datatypes.JSONMap{}
	if c.UserAgent != "" {
		m["user_agent"] = c.UserAgent
	}
	if c.RemoteAddr != "" {
		m["remote_addr"] = c.RemoteAddr
	}
	return m
}
