package repository

import (
	"context"
	"time"

	"github.com/dom/qr-code-website/internal/domain"
	"github.com/google/uuid"
)

// UserRepository persists users. Create returns domain.ErrDuplicateEmail when
// the email is already taken; lookups return domain.ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// SessionRepository persists login sessions. Get returns domain.ErrNotFound
// for unknown ids.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Touch(ctx context.Context, id uuid.UUID, lastActivity, expiresAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// QRCodeRepository persists generated codes, always scoped to their owner.
type QRCodeRepository interface {
	Create(ctx context.Context, code *domain.QRCode) error
	ListByUserID(ctx context.Context, userID int64) ([]*domain.QRCode, error)
	DeleteByOwner(ctx context.Context, userID, id int64) (bool, error)
}

type Repositories struct {
	User    UserRepository
	Session SessionRepository
	QRCode  QRCodeRepository
}
