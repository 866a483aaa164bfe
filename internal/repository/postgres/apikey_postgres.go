package postgres

import (
	"context"
	"database/sql"
	"time"

	"fileforge/internal/model"
	"fileforge/internal/repository"
)

// APIKeyPostgres is a PostgreSQL implementation of repository.APIKeyRepository.
type APIKeyPostgres struct {
	db *sql.DB
}

// NewAPIKeyPostgres creates a new APIKeyPostgres repository.
func NewAPIKeyPostgres(db *sql.DB) *APIKeyPostgres {
	return &APIKeyPostgres{db: db}
}

var _ repository.APIKeyRepository = (*APIKeyPostgres)(nil)

const apiKeyColumns = `id, user_id, name, key_hash, key_prefix, status,
	rate_limit_rpm, rate_limit_rpd, request_count, last_used_at, expires_at,
	created_at, updated_at`

func scanAPIKey(row interface{ Scan(...any) error }) (*model.APIKey, error) {
	var k model.APIKey
	var userID sql.NullString
	var lastUsed, expires sql.NullTime
	if err := row.Scan(
		&k.ID, &userID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Status,
		&k.RateLimitRPM, &k.RateLimitRPD, &k.RequestCount, &lastUsed, &expires,
		&k.CreatedAt, &k.UpdatedAt,
	); err != nil {
		return nil, err
	}
	k.UserID = userID.String
	if lastUsed.Valid {
		t := lastUsed.Time
		k.LastUsedAt = &t
	}
	if expires.Valid {
		t := expires.Time
		k.ExpiresAt = &t
	}
	return &k, nil
}

// Create inserts a new API key row and returns the stored record.
func (r *APIKeyPostgres) Create(ctx context.Context, key *model.APIKey) (*model.APIKey, error) {
	const q = `
		INSERT INTO api_keys (id, user_id, name, key_hash, key_prefix, status,
			rate_limit_rpm, rate_limit_rpd, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING ` + apiKeyColumns
	var expires sql.NullTime
	if key.ExpiresAt != nil {
		expires = sql.NullTime{Time: *key.ExpiresAt, Valid: true}
	}
	row := r.db.QueryRowContext(ctx, q,
		key.ID,
		nullStr(key.UserID),
		key.Name,
		key.KeyHash,
		key.KeyPrefix,
		key.Status,
		key.RateLimitRPM,
		key.RateLimitRPD,
		expires,
		key.CreatedAt,
	)
	return scanAPIKey(row)
}

// FindByID fetches a key by its ID.
func (r *APIKeyPostgres) FindByID(ctx context.Context, id string) (*model.APIKey, error) {
	const q = `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE id = $1`
	return scanAPIKey(r.db.QueryRowContext(ctx, q, id))
}

// FindByHash fetches a key by the SHA-256 hash of its full secret.
func (r *APIKeyPostgres) FindByHash(ctx context.Context, keyHash string) (*model.APIKey, error) {
	const q = `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key_hash = $1`
	return scanAPIKey(r.db.QueryRowContext(ctx, q, keyHash))
}

// ListByUser returns all keys owned by a user, newest first.
func (r *APIKeyPostgres) ListByUser(ctx context.Context, userID string) ([]model.APIKey, error) {
	const q = `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.APIKey, 0)
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies the non-nil fields of upd and returns the stored key.
func (r *APIKeyPostgres) Update(ctx context.Context, id string, upd repository.APIKeyUpdate) (*model.APIKey, error) {
	const q = `
		UPDATE api_keys
		SET name = COALESCE($2, name),
		    status = COALESCE($3, status),
		    rate_limit_rpm = COALESCE($4, rate_limit_rpm),
		    rate_limit_rpd = COALESCE($5, rate_limit_rpd),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + apiKeyColumns
	var status *string
	if upd.Status != nil {
		s := string(*upd.Status)
		status = &s
	}
	row := r.db.QueryRowContext(ctx, q, id, upd.Name, status, upd.RateLimitRPM, upd.RateLimitRPD)
	return scanAPIKey(row)
}

// Touch increments the usage counter and records last use.
func (r *APIKeyPostgres) Touch(ctx context.Context, id string, usedAt time.Time) error {
	const q = `UPDATE api_keys SET request_count = request_count + 1, last_used_at = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, usedAt)
	return err
}

// Delete removes a key by ID. It does not return an error if the row does not exist.
func (r *APIKeyPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM api_keys WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
