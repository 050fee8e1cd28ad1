package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dom/qr-code-website/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "qr:session:"

// sessionRepository keeps each session under its own key and lets redis
// expire it at ExpiresAt.
type sessionRepository struct {
	client redis.UniversalClient
}

func NewSessionRepository(client redis.UniversalClient) *sessionRepository {
	return &sessionRepository{client: client}
}

func sessionKey(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// keyExpiry rounds expiresAt up to a whole second. EXAT has second precision
// and the key must outlive the session, never the other way round.
func keyExpiry(expiresAt time.Time) time.Time {
	if rounded := expiresAt.Truncate(time.Second); !rounded.Equal(expiresAt) {
		return rounded.Add(time.Second)
	}
	return expiresAt
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	err = r.client.SetArgs(ctx, sessionKey(session.ID), payload, redis.SetArgs{
		Mode:     "NX",
		ExpireAt: keyExpiry(session.ExpiresAt),
	}).Err()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	return err
}

func (r *sessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	payload, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// Touch rewrites the session only if the key still exists, so a concurrent
// Delete cannot be undone by a refresh.
func (r *sessionRepository) Touch(ctx context.Context, id uuid.UUID, lastActivity, expiresAt time.Time) error {
	session, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	session.LastActivityAt = lastActivity
	session.ExpiresAt = expiresAt

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	err = r.client.SetArgs(ctx, sessionKey(id), payload, redis.SetArgs{
		Mode:     "XX",
		ExpireAt: keyExpiry(expiresAt),
	}).Err()
	if errors.Is(err, redis.Nil) {
		return domain.ErrNotFound
	}
	return err
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}

// DeleteExpired is a no-op: redis evicts keys at their expiry time.
func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
