package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dom/qr-code-website/internal/domain"
	"github.com/dom/qr-code-website/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type SessionConfig struct {
	Secret []byte
	TTL    time.Duration
	// Sliding pushes ExpiresAt to now+TTL on every resolved request.
	Sliding bool
	// MaxLifetime caps ExpiresAt at CreatedAt+MaxLifetime. Zero means no cap.
	MaxLifetime time.Duration
}

// SessionService is the session manager. The handle given to clients is an
// HS256 token naming the session row; the row decides whether the session is
// still alive.
type SessionService struct {
	repo repository.SessionRepository
	cfg  SessionConfig
	now  func() time.Time
}

type SessionOption func(*SessionService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) {
		s.now = now
	}
}

func NewSessionService(repo repository.SessionRepository, cfg SessionConfig, opts ...SessionOption) *SessionService {
	s := &SessionService{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionService) TTL() time.Duration {
	return s.cfg.TTL
}

// Create opens a session for userID and returns its handle.
func (s *SessionService) Create(ctx context.Context, userID int64, client domain.ClientInfo) (string, *domain.Session, error) {
	now := s.now().UTC()

	session := &domain.Session{
		ID:             uuid.New(),
		UserID:         userID,
		Client:         client.JSONMap(),
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      s.capExpiry(now, now.Add(s.cfg.TTL)),
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:       session.ID.String(),
		Subject:  strconv.FormatInt(userID, 10),
		IssuedAt: jwt.NewNumericDate(now),
	})
	handle, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		_ = s.repo.Delete(ctx, session.ID)
		return "", nil, fmt.Errorf("failed to sign session handle: %w", err)
	}

	return handle, session, nil
}

// Resolve returns the live session behind handle. Missing, forged, destroyed
// and expired handles all yield domain.ErrAuthentication; any other error is
// a store failure.
func (s *SessionService) Resolve(ctx context.Context, handle string) (*domain.Session, error) {
	claims, ok := s.parse(handle)
	if !ok {
		return nil, domain.ErrAuthentication
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, domain.ErrAuthentication
	}

	session, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAuthentication
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if strconv.FormatInt(session.UserID, 10) != claims.Subject {
		return nil, domain.ErrAuthentication
	}

	now := s.now().UTC()
	if session.IsExpired(now) {
		_ = s.repo.Delete(ctx, session.ID)
		return nil, domain.ErrAuthentication
	}

	if s.cfg.Sliding {
		expiresAt := s.capExpiry(session.CreatedAt, now.Add(s.cfg.TTL))
		if err := s.repo.Touch(ctx, session.ID, now, expiresAt); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrAuthentication
			}
			return nil, fmt.Errorf("failed to refresh session: %w", err)
		}
		session.LastActivityAt = now
		session.ExpiresAt = expiresAt
	}

	return session, nil
}

// Destroy ends the session behind handle. Unknown or invalid handles are
// ignored.
func (s *SessionService) Destroy(ctx context.Context, handle string) error {
	claims, ok := s.parse(handle)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionService) SweepExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now().UTC())
}

// RunSweeper deletes expired sessions every interval until ctx is done.
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration, log *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx)
			if err != nil {
				log.ErrorContext(ctx, "session sweep failed", slog.Any("error", err))
				continue
			}
			if n > 0 {
				log.InfoContext(ctx, "expired sessions removed", slog.Int64("count", n))
			}
		}
	}
}

func (s *SessionService) capExpiry(createdAt, expiresAt time.Time) time.Time {
	if s.cfg.MaxLifetime <= 0 {
		return expiresAt
	}
	if limit := createdAt.Add(s.cfg.MaxLifetime); expiresAt.After(limit) {
		return limit
	}
	return expiresAt
}

func (s *SessionService) parse(handle string) (*jwt.RegisteredClaims, bool) {
	if handle == "" {
		return nil, false
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(handle, claims, func(token *jwt.Token) (interface{}, error) {
		return s.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, false
	}
	return claims, true
}
