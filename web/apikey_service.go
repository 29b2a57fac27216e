package web

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type APIKeyService struct {
	repo APIKeyRepository
}

func NewAPIKeyService(repo APIKeyRepository) *APIKeyService {
	return &APIKeyService{
		repo: repo,
	}
}

// GenerateAPIKey generates a new secure API key (32 bytes = 256 bits)
// Returns the key in base64 format (safe for URLs and headers)
func (s *APIKeyService) GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random key: %w", err)
	}

	return "gms_" + base64.URLEncoding.EncodeToString(b), nil
}

// HashAPIKey creates a SHA-256 hash of the API key for storage
func (s *APIKeyService) HashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// Create creates a new API key owned by createdBy.
// Returns the full API key, which is shown to the user only once.
func (s *APIKeyService) Create(ctx context.Context, name, createdBy string, expiresAt *time.Time) (string, *APIKey, error) {
	key, err := s.GenerateAPIKey()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate API key: %w", err)
	}

	now := time.Now().UTC()
	apiKey := &APIKey{
		ID:        uuid.New().String(),
		CreatedBy: createdBy,
		Name:      name,
		KeyHash:   s.HashAPIKey(key),
		Status:    APIKeyStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: expiresAt,
	}

	if err := apiKey.Validate(); err != nil {
		return "", nil, fmt.Errorf("invalid API key: %w", err)
	}

	if err := s.repo.Create(ctx, apiKey); err != nil {
		return "", nil, fmt.Errorf("failed to create API key: %w", err)
	}

	return key, apiKey, nil
}

// Validate validates an API key and returns the APIKey object if valid
func (s *APIKeyService) Validate(ctx context.Context, key string) (*APIKey, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}

	keyHash := s.HashAPIKey(key)

	apiKey, err := s.repo.GetByKey(ctx, keyHash)
	if err != nil {
		return nil, fmt.Errorf("invalid API key")
	}

	if !apiKey.IsActive() {
		return nil, fmt.Errorf("API key is inactive or expired")
	}

	// The key stays valid even if updating last_used_at fails.
	now := time.Now().UTC()
	apiKey.LastUsedAt = &now
	_ = s.repo.Update(ctx, &apiKey)

	return &apiKey, nil
}

// Get retrieves an API key by ID
func (s *APIKeyService) Get(ctx context.Context, id string) (*APIKey, error) {
	apiKey, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}

	return &apiKey, nil
}

// List retrieves all API keys
func (s *APIKeyService) List(ctx context.Context) ([]APIKey, error) {
	return s.repo.Select(ctx, APIKeySelectParams{})
}

// ListActive retrieves all active API keys
func (s *APIKeyService) ListActive(ctx context.Context) ([]APIKey, error) {
	return s.repo.Select(ctx, APIKeySelectParams{Status: APIKeyStatusActive})
}

// Revoke revokes an API key by ID
func (s *APIKeyService) Revoke(ctx context.Context, id string) error {
	apiKey, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get API key: %w", err)
	}

	apiKey.Status = APIKeyStatusRevoked
	apiKey.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, &apiKey); err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}

	return nil
}

// Delete permanently deletes an API key
func (s *APIKeyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}

	return nil
}
