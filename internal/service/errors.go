package service

import "errors"

// Sentinel errors shared by the services. Handlers translate these into
// HTTP status codes; messages are safe to show to clients.
var (
	ErrIDRequired        = errors.New("id is required")
	ErrNotFound          = errors.New("document not found")
	ErrReaderNil         = errors.New("reader is nil")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("file exceeds the maximum allowed size")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("email not verified")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrSessionInvalid     = errors.New("session is invalid or expired")

	ErrKeyNotFound = errors.New("api key not found")
	ErrKeyInvalid  = errors.New("api key is invalid or expired")
)
