package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"fileforge/internal/model"
	"fileforge/internal/repository"
)

// Default rate limits for newly created keys.
const (
	DefaultRateLimitRPM = 60
	DefaultRateLimitRPD = 10000
)

// CreatedAPIKey pairs a stored key with its full secret. The secret is
// available only from this struct, directly after creation.
type CreatedAPIKey struct {
	Key     *model.APIKey
	FullKey string
}

// APIKeyService manages API key credentials.
type APIKeyService interface {
	// Create mints a new key for the user. The returned FullKey is shown
	// once and never stored.
	Create(ctx context.Context, userID, name string, expiresAt *time.Time) (*CreatedAPIKey, error)

	// List returns the user's keys, newest first, without secrets.
	List(ctx context.Context, userID string) ([]model.APIKey, error)

	// Get returns one key owned by the user.
	Get(ctx context.Context, userID, id string) (*model.APIKey, error)

	// Update applies the given changes to a key owned by the user.
	Update(ctx context.Context, userID, id string, upd repository.APIKeyUpdate) (*model.APIKey, error)

	// Delete removes a key owned by the user.
	Delete(ctx context.Context, userID, id string) error

	// Authenticate resolves a full API key to its stored record, checking
	// format, status and expiry, and records the use.
	Authenticate(ctx context.Context, fullKey string) (*model.APIKey, error)
}

type apiKeyService struct {
	keys repository.APIKeyRepository
	now  func() time.Time
}

// NewAPIKeyService constructs an APIKeyService backed by the repository.
func NewAPIKeyService(keys repository.APIKeyRepository) APIKeyService {
	return &apiKeyService{keys: keys, now: time.Now}
}

var _ APIKeyService = (*apiKeyService)(nil)

func (s *apiKeyService) Create(ctx context.Context, userID, name string, expiresAt *time.Time) (*CreatedAPIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "default"
	}
	full, hash, prefix, err := model.GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	key := &model.APIKey{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         name,
		KeyHash:      hash,
		KeyPrefix:    prefix,
		Status:       model.APIKeyActive,
		RateLimitRPM: DefaultRateLimitRPM,
		RateLimitRPD: DefaultRateLimitRPD,
		ExpiresAt:    expiresAt,
		CreatedAt:    s.now().UTC(),
	}
	stored, err := s.keys.Create(ctx, key)
	if err != nil {
		return nil, err
	}
	return &CreatedAPIKey{Key: stored, FullKey: full}, nil
}

func (s *apiKeyService) List(ctx context.Context, userID string) ([]model.APIKey, error) {
	return s.keys.ListByUser(ctx, userID)
}

func (s *apiKeyService) Get(ctx context.Context, userID, id string) (*model.APIKey, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	key, err := s.keys.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	if key.UserID != userID {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

func (s *apiKeyService) Update(ctx context.Context, userID, id string, upd repository.APIKeyUpdate) (*model.APIKey, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	key, err := s.keys.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return key, nil
}

func (s *apiKeyService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.keys.Delete(ctx, id)
}

func (s *apiKeyService) Authenticate(ctx context.Context, fullKey string) (*model.APIKey, error) {
	fullKey = strings.TrimSpace(fullKey)
	if !strings.HasPrefix(fullKey, "ff_live_") {
		return nil, ErrKeyInvalid
	}
	key, err := s.keys.FindByHash(ctx, model.HashAPIKey(fullKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyInvalid
		}
		return nil, err
	}
	now := s.now().UTC()
	if !key.Valid(now) {
		return nil, ErrKeyInvalid
	}
	if err := s.keys.Touch(ctx, key.ID, now); err != nil {
		// Usage accounting failure should not block the request.
		slog.Warn("apikey_touch_failed", "key_id", key.ID, "error", err)
	}
	return key, nil
}
