package postgres

import (
	"context"
	"database/sql"

	"fileforge/internal/model"
	"fileforge/internal/repository"
)

// ChunkPostgres is a PostgreSQL implementation of repository.ChunkRepository.
type ChunkPostgres struct {
	db *sql.DB
}

// NewChunkPostgres creates a new ChunkPostgres repository.
func NewChunkPostgres(db *sql.DB) *ChunkPostgres {
	return &ChunkPostgres{db: db}
}

var _ repository.ChunkRepository = (*ChunkPostgres)(nil)

// CreateBatch inserts all chunks inside a single transaction so a document
// never ends up with a partial chunk set.
func (r *ChunkPostgres) CreateBatch(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO chunks (id, document_id, chunk_index, text, text_length, token_count,
			chunk_type, element_category, source_page, source_section, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		c := &chunks[i]
		if _, err := stmt.ExecContext(ctx,
			c.ID,
			c.DocumentID,
			c.Index,
			c.Text,
			c.TextLength,
			c.TokenCount,
			c.ChunkType,
			nullStr(c.ElementCategory),
			nullInt(c.SourcePage),
			nullStr(c.SourceSection),
			c.CreatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListByDocument returns all chunks of a document ordered by index.
func (r *ChunkPostgres) ListByDocument(ctx context.Context, documentID string) ([]model.Chunk, error) {
	const q = `
		SELECT id, document_id, chunk_index, text, text_length, token_count,
			chunk_type, element_category, source_page, source_section, created_at
		FROM chunks
		WHERE document_id = $1
		ORDER BY chunk_index ASC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Chunk, 0)
	for rows.Next() {
		var c model.Chunk
		var category, section sql.NullString
		var page sql.NullInt64
		if err := rows.Scan(
			&c.ID,
			&c.DocumentID,
			&c.Index,
			&c.Text,
			&c.TextLength,
			&c.TokenCount,
			&c.ChunkType,
			&category,
			&page,
			&section,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		c.ElementCategory = category.String
		c.SourcePage = int(page.Int64)
		c.SourceSection = section.String
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteByDocument removes all chunks belonging to a document.
func (r *ChunkPostgres) DeleteByDocument(ctx context.Context, documentID string) error {
	const q = `DELETE FROM chunks WHERE document_id = $1`
	_, err := r.db.ExecContext(ctx, q, documentID)
	return err
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
