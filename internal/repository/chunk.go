package repository

import (
	"context"

	"fileforge/internal/model"
)

// ChunkRepository defines data access for document chunks.
type ChunkRepository interface {
	// CreateBatch inserts all chunks for a document in one transaction.
	CreateBatch(ctx context.Context, chunks []model.Chunk) error

	// ListByDocument returns all chunks of a document ordered by index.
	ListByDocument(ctx context.Context, documentID string) ([]model.Chunk, error)

	// DeleteByDocument removes all chunks belonging to a document.
	// Used when a document is deleted or reprocessed.
	DeleteByDocument(ctx context.Context, documentID string) error
}
