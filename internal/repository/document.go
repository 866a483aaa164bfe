package repository

import (
	"context"

	"fileforge/internal/model"
)

// DocumentFilter narrows List results. Zero values mean "no filter".
type DocumentFilter struct {
	Status   model.DocumentStatus
	FileType string
}

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of documents and the total rows count
	// for the given filter, newest first.
	List(ctx context.Context, pq PageQuery, f DocumentFilter) (*PageResult[model.Document], error)

	// UpdateStatus persists the status-related fields of the document:
	// status, error message, processing timestamps/duration and derived
	// chunk/token totals.
	UpdateStatus(ctx context.Context, doc *model.Document) error

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
