package memory

import (
	"context"
	"testing"
	"time"

	"github.com/dom/qr-code-website/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	session := &domain.Session{
		ID:             uuid.New(),
		UserID:         7,
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(time.Minute),
	}
	require.NoError(t, repo.Create(ctx, session))

	t.Run("create refuses to overwrite", func(t *testing.T) {
		clash := *session
		clash.UserID = 99
		assert.Error(t, repo.Create(ctx, &clash))

		got, err := repo.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.UserID)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		got, err := repo.Get(ctx, session.ID)
		require.NoError(t, err)
		got.UserID = 99

		again, err := repo.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), again.UserID)
	})

	t.Run("touch", func(t *testing.T) {
		require.NoError(t, repo.Touch(ctx, session.ID, now.Add(time.Second), now.Add(2*time.Minute)))
		got, err := repo.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, now.Add(2*time.Minute), got.ExpiresAt)

		assert.ErrorIs(t, repo.Touch(ctx, uuid.New(), now, now), domain.ErrNotFound)
	})

	t.Run("delete expired", func(t *testing.T) {
		removed, err := repo.DeleteExpired(ctx, now.Add(2*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
		assert.Zero(t, repo.Len())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, repo.Delete(ctx, uuid.New()))
	})
}
