package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"
)

// SessionExpiry is how long a newly created session stays valid.
const SessionExpiry = 30 * 24 * time.Hour

// Session is an authenticated user session. The plain token travels in a
// cookie; only its SHA-256 hash is stored.
type Session struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	TokenHash string `json:"-"`

	ExpiresAt    time.Time `json:"expires_at"`
	LastActiveAt time.Time `json:"last_active_at"`

	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	Revoked   bool       `json:"revoked"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// GenerateSessionToken returns a plain session token and its storage hash.
func GenerateSessionToken() (plain, hash string, err error) {
	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return "", "", err
	}
	plain = base64.RawURLEncoding.EncodeToString(raw)
	return plain, HashSessionToken(plain), nil
}

// HashSessionToken hashes a plain session token for storage or lookup.
func HashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Valid reports whether the session is usable at the given time.
func (s *Session) Valid(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
