package postgres

import (
	"context"
	"database/sql"

	"fileforge/internal/model"
	"fileforge/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, email, name, password_hash, verified, verification_code,
	verification_code_expires_at, verified_at, active, last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var name, code sql.NullString
	var codeExpires, verifiedAt, lastLogin sql.NullTime
	if err := row.Scan(
		&u.ID, &u.Email, &name, &u.PasswordHash, &u.Verified, &code,
		&codeExpires, &verifiedAt, &u.Active, &lastLogin, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Name = name.String
	u.VerificationCode = code.String
	if codeExpires.Valid {
		t := codeExpires.Time
		u.VerificationCodeExpiresAt = &t
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		u.VerifiedAt = &t
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, name, password_hash, verified, verification_code,
			verification_code_expires_at, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING ` + userColumns
	var codeExpires sql.NullTime
	if u.VerificationCodeExpiresAt != nil {
		codeExpires = sql.NullTime{Time: *u.VerificationCodeExpiresAt, Valid: true}
	}
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		nullStr(u.Name),
		u.PasswordHash,
		u.Verified,
		nullStr(u.VerificationCode),
		codeExpires,
		u.Active,
		u.CreatedAt,
	)
	return scanUser(row)
}

// FindByID fetches a user by ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// Update persists the mutable fields of a user.
func (r *UserPostgres) Update(ctx context.Context, u *model.User) error {
	const q = `
		UPDATE users
		SET name = $2,
		    password_hash = $3,
		    verified = $4,
		    verification_code = $5,
		    verification_code_expires_at = $6,
		    verified_at = $7,
		    active = $8,
		    last_login_at = $9,
		    updated_at = now()
		WHERE id = $1
	`
	var codeExpires, verifiedAt, lastLogin sql.NullTime
	if u.VerificationCodeExpiresAt != nil {
		codeExpires = sql.NullTime{Time: *u.VerificationCodeExpiresAt, Valid: true}
	}
	if u.VerifiedAt != nil {
		verifiedAt = sql.NullTime{Time: *u.VerifiedAt, Valid: true}
	}
	if u.LastLoginAt != nil {
		lastLogin = sql.NullTime{Time: *u.LastLoginAt, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, q,
		u.ID,
		nullStr(u.Name),
		u.PasswordHash,
		u.Verified,
		nullStr(u.VerificationCode),
		codeExpires,
		verifiedAt,
		u.Active,
		lastLogin,
	)
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
