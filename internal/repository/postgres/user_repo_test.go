package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dom/qr-code-website/internal/domain"
	"github.com/dom/qr-code-website/internal/repository/postgres"
	"github.com/dom/qr-code-website/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		wantErr error
	}{
		{
			name: "successful creation",
			user: &domain.User{
				Name:         "Ada",
				Email:        "ada@example.com",
				PasswordHash: "hash",
				CreatedAt:    time.Now(),
			},
		},
		{
			name: "duplicate email",
			user: &domain.User{
				Name:         "Someone Else",
				Email:        "ada@example.com", // Same as above
				PasswordHash: "hash2",
				CreatedAt:    time.Now(),
			},
			wantErr: domain.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, tt.user.ID, "id should be assigned by the database")
		})
	}
}

func TestUserRepository_ConcurrentDuplicateEmail(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	const attempts = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		succeeded  int
		duplicates int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, &domain.User{
				Name:         "Racer",
				Email:        "race@example.com",
				PasswordHash: "hash",
				CreatedAt:    time.Now(),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, domain.ErrDuplicateEmail):
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, duplicates)
}

func TestUserRepository_Lookups(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithName("Lookup User").
		WithEmail("lookup@example.com").
		Build(t, testDB.DB)

	t.Run("by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "Lookup User", got.Name)
		assert.Equal(t, "lookup@example.com", got.Email)
		assert.NotEmpty(t, got.PasswordHash)
	})

	t.Run("by email", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "lookup@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, user.ID+1000)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
