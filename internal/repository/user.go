package repository

import (
	"context"

	"fileforge/internal/model"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create inserts a new user and returns the stored record.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by ID.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by lower-cased email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Update persists the mutable fields of the user: name, password hash,
	// verification state and last login.
	Update(ctx context.Context, u *model.User) error
}

// SessionRepository defines data access for auth sessions.
type SessionRepository interface {
	// Create inserts a new session.
	Create(ctx context.Context, s *model.Session) (*model.Session, error)

	// FindByTokenHash returns a session by its token hash.
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error)

	// Revoke marks a session revoked by token hash. Returns sql.ErrNoRows
	// via the driver if no live session matches.
	Revoke(ctx context.Context, tokenHash string) error

	// Refresh updates last_active_at for a live session.
	Refresh(ctx context.Context, tokenHash string) error
}
