package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"
)

// APIKeyStatus is the lifecycle state of an API key.
type APIKeyStatus string

const (
	APIKeyActive  APIKeyStatus = "active"
	APIKeyRevoked APIKeyStatus = "revoked"
	APIKeyExpired APIKeyStatus = "expired"
)

// APIKeyPrefixLen is the number of leading characters kept for display.
const APIKeyPrefixLen = 12

// APIKey is a secret credential with attached rate limits.
// Only the SHA-256 hash of the key is stored; the full key is returned
// exactly once at creation time.
type APIKey struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id,omitempty"`
	Name      string       `json:"name"`
	KeyHash   string       `json:"-"`
	KeyPrefix string       `json:"key_prefix"`
	Status    APIKeyStatus `json:"status"`

	RateLimitRPM int `json:"rate_limit_rpm"`
	RateLimitRPD int `json:"rate_limit_rpd"`

	RequestCount int64      `json:"request_count"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenerateAPIKey produces a new key in the "ff_live_" format.
// It returns the full key (shown once), its SHA-256 hash for storage,
// and the display prefix.
func GenerateAPIKey() (fullKey, keyHash, keyPrefix string, err error) {
	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return "", "", "", err
	}
	fullKey = "ff_live_" + base64.RawURLEncoding.EncodeToString(raw)
	keyHash = HashAPIKey(fullKey)
	keyPrefix = fullKey[:APIKeyPrefixLen]
	return fullKey, keyHash, keyPrefix, nil
}

// HashAPIKey hashes a full API key for storage or lookup.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Valid reports whether the key is active and not expired at the given time.
func (k *APIKey) Valid(now time.Time) bool {
	if k.Status != APIKeyActive {
		return false
	}
	if k.ExpiresAt != nil && k.ExpiresAt.Before(now) {
		return false
	}
	return true
}
