package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/divyanshprajapati011/maps-scraper/web"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func seedUser(t *testing.T, repo web.UserRepository, id, email string) web.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	user := web.User{
		ID:           id,
		Email:        email,
		PasswordHash: "hash",
		Status:       web.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	require.NoError(t, repo.Create(context.Background(), &user))

	return user
}

func TestUserRepository_Roundtrip(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, repo, "u1", "jane@example.com")

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", got.Email)
	require.Equal(t, web.UserStatusActive, got.Status)
	require.Nil(t, got.LastLoginAt)

	byEmail, err := repo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, "u1", byEmail.ID)

	now := time.Now().UTC().Truncate(time.Second)
	got.FirstName = "Jane"
	got.LastLoginAt = &now
	require.NoError(t, repo.Update(ctx, &got))

	updated, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "Jane", updated.FirstName)
	require.NotNil(t, updated.LastLoginAt)
	require.Equal(t, now.Unix(), updated.LastLoginAt.Unix())
}

func TestUserRepository_SoftDelete(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, repo, "u1", "jane@example.com")

	require.NoError(t, repo.Delete(ctx, "u1"))

	_, err := repo.Get(ctx, "u1")
	require.Error(t, err)

	_, err = repo.GetByEmail(ctx, "jane@example.com")
	require.Error(t, err)
}

func TestSessionRepository_Roundtrip(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	seedUser(t, users, "u1", "jane@example.com")

	now := time.Now().UTC().Truncate(time.Second)
	session := web.UserSession{
		ID:        "s1",
		UserID:    "u1",
		TokenHash: "tokenhash",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}

	require.NoError(t, repo.Create(ctx, &session))

	got, err := repo.GetByToken(ctx, "tokenhash")
	require.NoError(t, err)
	require.Equal(t, "s1", got.ID)
	require.Equal(t, "u1", got.UserID)
	require.Nil(t, got.LastUsedAt)

	got.LastUsedAt = &now
	require.NoError(t, repo.Update(ctx, &got))

	updated, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, updated.LastUsedAt)
}

func TestSessionRepository_CleanupExpired(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	seedUser(t, users, "u1", "jane@example.com")

	now := time.Now().UTC().Truncate(time.Second)

	expired := web.UserSession{
		ID:        "s-old",
		UserID:    "u1",
		TokenHash: "old",
		ExpiresAt: now.Add(-time.Hour),
		CreatedAt: now.Add(-2 * time.Hour),
	}
	live := web.UserSession{
		ID:        "s-live",
		UserID:    "u1",
		TokenHash: "live",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}

	require.NoError(t, repo.Create(ctx, &expired))
	require.NoError(t, repo.Create(ctx, &live))

	require.NoError(t, repo.CleanupExpired(ctx))

	_, err := repo.Get(ctx, "s-old")
	require.Error(t, err)

	_, err = repo.Get(ctx, "s-live")
	require.NoError(t, err)
}

func TestAPIKeyRepository_Roundtrip(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewAPIKeyRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	key := web.APIKey{
		ID:        "k1",
		CreatedBy: "u1",
		Name:      "ci pipeline",
		KeyHash:   "keyhash",
		Status:    web.APIKeyStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	require.NoError(t, repo.Create(ctx, &key))

	got, err := repo.GetByKey(ctx, "keyhash")
	require.NoError(t, err)
	require.Equal(t, "k1", got.ID)
	require.Equal(t, "u1", got.CreatedBy)
	require.Nil(t, got.ExpiresAt)

	got.Status = web.APIKeyStatusRevoked
	require.NoError(t, repo.Update(ctx, &got))

	active, err := repo.Select(ctx, web.APIKeySelectParams{Status: web.APIKeyStatusActive})
	require.NoError(t, err)
	require.Empty(t, active)

	mine, err := repo.Select(ctx, web.APIKeySelectParams{CreatedBy: "u1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	require.NoError(t, repo.Delete(ctx, "k1"))

	_, err = repo.Get(ctx, "k1")
	require.Error(t, err)
}

func TestBusinessRepository_Roundtrip(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewBusinessRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)

	first := web.Business{
		ID:        "b1",
		Query:     "coffee berlin",
		Name:      "Acme Coffee",
		Phone:     "+49 30 1234567",
		Rating:    "4.6",
		Reviews:   1234,
		ScrapedAt: now.Add(-time.Hour),
	}
	second := web.Business{
		ID:        "b2",
		Query:     "coffee berlin",
		Name:      "Beanworks",
		ScrapedAt: now,
	}
	other := web.Business{
		ID:        "b3",
		Query:     "pizza rome",
		Name:      "Mario's",
		ScrapedAt: now,
	}

	for _, b := range []web.Business{first, second, other} {
		require.NoError(t, repo.Create(ctx, &b))
	}

	got, err := repo.Get(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, "Acme Coffee", got.Name)
	require.Equal(t, 1234, got.Reviews)
	require.Equal(t, first.ScrapedAt.Unix(), got.ScrapedAt.Unix())

	// Query filter plus newest-first ordering.
	coffee, err := repo.Select(ctx, web.BusinessSelectParams{Query: "coffee berlin"})
	require.NoError(t, err)
	require.Len(t, coffee, 2)
	require.Equal(t, "b2", coffee[0].ID)
	require.Equal(t, "b1", coffee[1].ID)

	limited, err := repo.Select(ctx, web.BusinessSelectParams{Query: "coffee berlin", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)

	offset, err := repo.Select(ctx, web.BusinessSelectParams{Query: "coffee berlin", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, offset, 1)
	require.Equal(t, "b1", offset[0].ID)

	require.NoError(t, repo.Delete(ctx, "b1"))

	_, err = repo.Get(ctx, "b1")
	require.Error(t, err)
}
