package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fileforge/internal/model"
	"fileforge/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// IsNoRowsError reports whether err is the driver's no-rows sentinel.
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

const documentColumns = `id, filename, original_filename, file_type, content_type, storage_path,
	size, hash, user_id, status, error_message,
	chunk_strategy, chunk_size, chunk_overlap, total_chunks, total_tokens,
	processing_started_at, processing_completed_at, processing_duration_ms,
	created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	var (
		hash, userID, errMsg, strategy sql.NullString
		chunkSize, chunkOverlap        sql.NullInt64
		startedAt, completedAt         sql.NullTime
		durationMS                     sql.NullInt64
	)
	if err := row.Scan(
		&d.ID, &d.Filename, &d.OriginalFilename, &d.FileType, &d.ContentType, &d.StoragePath,
		&d.Size, &hash, &userID, &d.Status, &errMsg,
		&strategy, &chunkSize, &chunkOverlap, &d.TotalChunks, &d.TotalTokens,
		&startedAt, &completedAt, &durationMS,
		&d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.Hash = hash.String
	d.UserID = userID.String
	d.ErrorMessage = errMsg.String
	d.ChunkStrategy = strategy.String
	d.ChunkSize = int(chunkSize.Int64)
	d.ChunkOverlap = int(chunkOverlap.Int64)
	if startedAt.Valid {
		t := startedAt.Time
		d.ProcessingStartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		d.ProcessingCompletedAt = &t
	}
	d.ProcessingDurationMS = durationMS.Int64
	return &d, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, filename, original_filename, file_type, content_type, storage_path,
			size, hash, user_id, status, chunk_strategy, chunk_size, chunk_overlap, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Filename,
		doc.OriginalFilename,
		doc.FileType,
		doc.ContentType,
		doc.StoragePath,
		doc.Size,
		nullStr(doc.Hash),
		nullStr(doc.UserID),
		doc.Status,
		nullStr(doc.ChunkStrategy),
		doc.ChunkSize,
		doc.ChunkOverlap,
		doc.CreatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
// Status and file type filters are optional.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery, f repository.DocumentFilter) (*repository.PageResult[model.Document], error) {
	const qCount = `
		SELECT COUNT(*) FROM documents
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR file_type = $2)
	`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, string(f.Status), f.FileType).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR file_type = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, string(f.Status), f.FileType, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// UpdateStatus persists the processing-state fields of a document.
func (r *DocumentPostgres) UpdateStatus(ctx context.Context, doc *model.Document) error {
	const q = `
		UPDATE documents
		SET status = $2,
		    error_message = $3,
		    total_chunks = $4,
		    total_tokens = $5,
		    processing_started_at = $6,
		    processing_completed_at = $7,
		    processing_duration_ms = $8,
		    updated_at = now()
		WHERE id = $1
	`
	var startedAt, completedAt sql.NullTime
	if doc.ProcessingStartedAt != nil {
		startedAt = sql.NullTime{Time: *doc.ProcessingStartedAt, Valid: true}
	}
	if doc.ProcessingCompletedAt != nil {
		completedAt = sql.NullTime{Time: *doc.ProcessingCompletedAt, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, q,
		doc.ID,
		doc.Status,
		nullStr(doc.ErrorMessage),
		doc.TotalChunks,
		doc.TotalTokens,
		startedAt,
		completedAt,
		doc.ProcessingDurationMS,
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

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
