package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/qr-code-website/internal/domain"
	redisrepo "github.com/dom/qr-code-website/internal/repository/redis"
	"github.com/dom/qr-code-website/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(now time.Time, ttl time.Duration) *domain.Session {
	return &domain.Session{
		ID:             uuid.New(),
		UserID:         42,
		Client:         domain.ClientInfo{RemoteAddr: "127.0.0.1:1234"}.JSONMap(),
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(ttl),
	}
}

func TestSessionRepository(t *testing.T) {
	client := testutil.NewTestRedis(t)
	repo := redisrepo.NewSessionRepository(client)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("create and get", func(t *testing.T) {
		session := newSession(now, 30*time.Minute)
		require.NoError(t, repo.Create(ctx, session))

		got, err := repo.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.UserID)
		assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))
		assert.Equal(t, "127.0.0.1:1234", got.Client["remote_addr"])

		ttl, err := client.TTL(ctx, "qr:session:"+session.ID.String()).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 29*time.Minute)
	})

	t.Run("create refuses to overwrite", func(t *testing.T) {
		session := newSession(now, 30*time.Minute)
		require.NoError(t, repo.Create(ctx, session))
		assert.Error(t, repo.Create(ctx, session))
	})

	t.Run("key outlives a fractional expiry", func(t *testing.T) {
		start := now.Truncate(time.Second).Add(900 * time.Millisecond)
		session := newSession(start, 30*time.Minute)
		require.NoError(t, repo.Create(ctx, session))

		keyExpiresAt := func() time.Time {
			d, err := client.PExpireTime(ctx, "qr:session:"+session.ID.String()).Result()
			require.NoError(t, err)
			return time.UnixMilli(d.Milliseconds())
		}
		assert.False(t, keyExpiresAt().Before(session.ExpiresAt))

		touched := start.Add(time.Minute).Add(300 * time.Millisecond)
		require.NoError(t, repo.Touch(ctx, session.ID, start.Add(time.Minute), touched))
		assert.False(t, keyExpiresAt().Before(touched))
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("touch extends expiry", func(t *testing.T) {
		session := newSession(now, time.Minute)
		require.NoError(t, repo.Create(ctx, session))

		later := now.Add(30 * time.Second)
		require.NoError(t, repo.Touch(ctx, session.ID, later, later.Add(time.Hour)))

		got, err := repo.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.True(t, later.Equal(got.LastActivityAt))

		ttl, err := client.TTL(ctx, "qr:session:"+session.ID.String()).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 50*time.Minute)
	})

	t.Run("touch after delete does not resurrect", func(t *testing.T) {
		session := newSession(now, 30*time.Minute)
		require.NoError(t, repo.Create(ctx, session))
		require.NoError(t, repo.Delete(ctx, session.ID))

		err := repo.Touch(ctx, session.ID, now, now.Add(time.Hour))
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = repo.Get(ctx, session.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		id := uuid.New()
		assert.NoError(t, repo.Delete(ctx, id))
		assert.NoError(t, repo.Delete(ctx, id))
	})

	t.Run("key expires with the session", func(t *testing.T) {
		session := newSession(time.Now().UTC(), 2*time.Second)
		require.NoError(t, repo.Create(ctx, session))

		assert.Eventually(t, func() bool {
			_, err := repo.Get(ctx, session.ID)
			return err != nil
		}, 5*time.Second, 100*time.Millisecond)
	})
}
