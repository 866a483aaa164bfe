package repository

import (
	"context"
	"time"

	"fileforge/internal/model"
)

// APIKeyUpdate carries the mutable fields of an API key. Nil pointers
// leave the stored value unchanged.
type APIKeyUpdate struct {
	Name         *string
	Status       *model.APIKeyStatus
	RateLimitRPM *int
	RateLimitRPD *int
}

// APIKeyRepository defines data access for API keys.
type APIKeyRepository interface {
	// Create inserts a new API key record and returns the stored key.
	Create(ctx context.Context, key *model.APIKey) (*model.APIKey, error)

	// FindByID returns a key by its ID.
	FindByID(ctx context.Context, id string) (*model.APIKey, error)

	// FindByHash returns a key by the SHA-256 hash of its full secret.
	FindByHash(ctx context.Context, keyHash string) (*model.APIKey, error)

	// ListByUser returns all keys owned by a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.APIKey, error)

	// Update applies the non-nil fields of upd and returns the stored key.
	Update(ctx context.Context, id string, upd APIKeyUpdate) (*model.APIKey, error)

	// Touch increments the usage counter and sets last_used_at.
	Touch(ctx context.Context, id string, usedAt time.Time) error

	// Delete removes a key by ID. It returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}
