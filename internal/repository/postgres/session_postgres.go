package postgres

import (
	"context"
	"database/sql"

	"fileforge/internal/model"
	"fileforge/internal/repository"
)

// SessionPostgres is a PostgreSQL implementation of repository.SessionRepository.
type SessionPostgres struct {
	db *sql.DB
}

// NewSessionPostgres creates a new SessionPostgres repository.
func NewSessionPostgres(db *sql.DB) *SessionPostgres {
	return &SessionPostgres{db: db}
}

var _ repository.SessionRepository = (*SessionPostgres)(nil)

const sessionColumns = `id, user_id, token_hash, expires_at, last_active_at,
	ip_address, user_agent, revoked, revoked_at, created_at`

func scanSession(row interface{ Scan(...any) error }) (*model.Session, error) {
	var s model.Session
	var ip, ua sql.NullString
	var revokedAt sql.NullTime
	if err := row.Scan(
		&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.LastActiveAt,
		&ip, &ua, &s.Revoked, &revokedAt, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	s.IPAddress = ip.String
	s.UserAgent = ua.String
	if revokedAt.Valid {
		t := revokedAt.Time
		s.RevokedAt = &t
	}
	return &s, nil
}

// Create inserts a new session row and returns the stored record.
func (r *SessionPostgres) Create(ctx context.Context, s *model.Session) (*model.Session, error) {
	const q = `
		INSERT INTO sessions (id, user_id, token_hash, expires_at, last_active_at,
			ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + sessionColumns
	row := r.db.QueryRowContext(ctx, q,
		s.ID,
		s.UserID,
		s.TokenHash,
		s.ExpiresAt,
		s.LastActiveAt,
		nullStr(s.IPAddress),
		nullStr(s.UserAgent),
		s.CreatedAt,
	)
	return scanSession(row)
}

// FindByTokenHash fetches a session by its token hash.
func (r *SessionPostgres) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE token_hash = $1`
	return scanSession(r.db.QueryRowContext(ctx, q, tokenHash))
}

// Revoke marks a live session revoked by token hash.
func (r *SessionPostgres) Revoke(ctx context.Context, tokenHash string) error {
	const q = `
		UPDATE sessions
		SET revoked = TRUE, revoked_at = now()
		WHERE token_hash = $1 AND revoked = FALSE
	`
	res, err := r.db.ExecContext(ctx, q, tokenHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Refresh updates last_active_at for a live session.
func (r *SessionPostgres) Refresh(ctx context.Context, tokenHash string) error {
	const q = `UPDATE sessions SET last_active_at = now() WHERE token_hash = $1 AND revoked = FALSE`
	_, err := r.db.ExecContext(ctx, q, tokenHash)
	return err
}
