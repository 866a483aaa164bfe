package model

import (
	"crypto/rand"
	"math/big"
	"time"
)

// User holds account credentials and email verification state.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	PasswordHash string `json:"-"`

	Verified                  bool       `json:"verified"`
	VerificationCode          string     `json:"-"`
	VerificationCodeExpiresAt *time.Time `json:"-"`
	VerifiedAt                *time.Time `json:"verified_at,omitempty"`

	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenerateOTP returns a 6-digit one-time code for email verification.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := n.Int64()
	buf := []byte{'0', '0', '0', '0', '0', '0'}
	for i := 5; i >= 0 && code > 0; i-- {
		buf[i] = byte('0' + code%10)
		code /= 10
	}
	return string(buf), nil
}
