package web

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memAPIKeyRepo struct {
	mu   sync.Mutex
	keys map[string]APIKey
}

func newMemAPIKeyRepo() *memAPIKeyRepo {
	return &memAPIKeyRepo{keys: make(map[string]APIKey)}
}

func (r *memAPIKeyRepo) Get(_ context.Context, id string) (APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.keys[id]
	if !ok {
		return APIKey{}, errors.New("api key not found")
	}

	return key, nil
}

func (r *memAPIKeyRepo) GetByKey(_ context.Context, keyHash string) (APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range r.keys {
		if key.KeyHash == keyHash {
			return key, nil
		}
	}

	return APIKey{}, errors.New("api key not found")
}

func (r *memAPIKeyRepo) Create(_ context.Context, key *APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.keys[key.ID] = *key

	return nil
}

func (r *memAPIKeyRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.keys[id]; !ok {
		return errors.New("api key not found")
	}

	delete(r.keys, id)

	return nil
}

func (r *memAPIKeyRepo) Select(_ context.Context, params APIKeySelectParams) ([]APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ans []APIKey

	for _, key := range r.keys {
		if params.Status != "" && key.Status != params.Status {
			continue
		}

		if params.CreatedBy != "" && key.CreatedBy != params.CreatedBy {
			continue
		}

		ans = append(ans, key)
	}

	return ans, nil
}

func (r *memAPIKeyRepo) Update(_ context.Context, key *APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.keys[key.ID]; !ok {
		return errors.New("api key not found")
	}

	r.keys[key.ID] = *key

	return nil
}

func TestAPIKeyService_CreateAndValidate(t *testing.T) {
	t.Parallel()

	repo := newMemAPIKeyRepo()
	svc := NewAPIKeyService(repo)
	ctx := context.Background()

	key, apiKey, err := svc.Create(ctx, "ci pipeline", "user-1", nil)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(key, "gms_"))
	require.Equal(t, "user-1", apiKey.CreatedBy)
	require.Equal(t, APIKeyStatusActive, apiKey.Status)

	// Only the hash is stored, never the key itself.
	stored, err := repo.Get(ctx, apiKey.ID)
	require.NoError(t, err)
	require.NotEqual(t, key, stored.KeyHash)
	require.Equal(t, svc.HashAPIKey(key), stored.KeyHash)

	validated, err := svc.Validate(ctx, key)
	require.NoError(t, err)
	require.Equal(t, apiKey.ID, validated.ID)
	require.NotNil(t, validated.LastUsedAt)
}

func TestAPIKeyService_ValidateUnknownKey(t *testing.T) {
	t.Parallel()

	svc := NewAPIKeyService(newMemAPIKeyRepo())

	_, err := svc.Validate(context.Background(), "gms_bogus")
	require.Error(t, err)

	_, err = svc.Validate(context.Background(), "")
	require.Error(t, err)
}

func TestAPIKeyService_RevokedKeyFails(t *testing.T) {
	t.Parallel()

	svc := NewAPIKeyService(newMemAPIKeyRepo())
	ctx := context.Background()

	key, apiKey, err := svc.Create(ctx, "ci pipeline", "user-1", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, apiKey.ID))

	_, err = svc.Validate(ctx, key)
	require.Error(t, err)
}

func TestAPIKeyService_ExpiredKeyFails(t *testing.T) {
	t.Parallel()

	svc := NewAPIKeyService(newMemAPIKeyRepo())
	ctx := context.Background()

	expired := time.Now().Add(-time.Hour)

	key, _, err := svc.Create(ctx, "old key", "user-1", &expired)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, key)
	require.Error(t, err)
}

func TestAPIKeyService_ListActive(t *testing.T) {
	t.Parallel()

	svc := NewAPIKeyService(newMemAPIKeyRepo())
	ctx := context.Background()

	_, first, err := svc.Create(ctx, "first", "user-1", nil)
	require.NoError(t, err)

	_, second, err := svc.Create(ctx, "second", "user-1", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, second.ID))

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, first.ID, active[0].ID)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestAPIKeyService_Delete(t *testing.T) {
	t.Parallel()

	svc := NewAPIKeyService(newMemAPIKeyRepo())
	ctx := context.Background()

	key, apiKey, err := svc.Create(ctx, "short lived", "user-1", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, apiKey.ID))

	_, err = svc.Validate(ctx, key)
	require.Error(t, err)
}
