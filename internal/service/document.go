package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fileforge/internal/model"
	"fileforge/internal/repository"
	"fileforge/internal/storage"
)

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentWithChunks bundles a document with its stored chunks.
type DocumentWithChunks struct {
	Document model.Document `json:"document"`
	Chunks   []model.Chunk  `json:"chunks"`
}

// LLMDocument is the LLM-ready projection of a completed document.
type LLMDocument struct {
	ID          string           `json:"id"`
	Filename    string           `json:"filename"`
	FileType    string           `json:"file_type"`
	TotalChunks int              `json:"total_chunks"`
	TotalTokens int              `json:"total_tokens"`
	Chunks      []model.LLMChunk `json:"chunks"`
	RawText     string           `json:"raw_text,omitempty"`
}

// DocumentService defines the read/delete/reprocess use cases for documents.
// Uploading happens through ConvertService, which owns the pipeline.
type DocumentService interface {
	// List returns documents using limit/offset, optionally filtered by
	// status and file type, newest first.
	List(ctx context.Context, limit, offset int, filter repository.DocumentFilter) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// GetWithChunks returns a document together with its chunks in index order.
	GetWithChunks(ctx context.Context, id string) (*DocumentWithChunks, error)

	// Chunks returns the chunks of a document in index order.
	Chunks(ctx context.Context, id string) ([]model.Chunk, error)

	// LLMFormat returns the LLM-ready projection of a document.
	LLMFormat(ctx context.Context, id string, includeRawText bool) (*LLMDocument, error)

	// Delete removes a document, its chunks and the stored original.
	Delete(ctx context.Context, id string) error

	// Reprocess resets a completed or failed document to pending, clears
	// its chunks and returns the updated document. The caller decides
	// whether to run the pipeline inline or enqueue it.
	Reprocess(ctx context.Context, id string) (*model.Document, error)
}

type documentService struct {
	store  storage.Storage
	docs   repository.DocumentRepository
	chunks repository.ChunkRepository
	now    func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, docs repository.DocumentRepository, chunks repository.ChunkRepository) DocumentService {
	return &documentService{store: store, docs: docs, chunks: chunks, now: time.Now}
}

func (s *documentService) List(ctx context.Context, limit, offset int, filter repository.DocumentFilter) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.docs.List(ctx, repository.PageQuery{Limit: limit, Offset: offset}, filter)
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) GetWithChunks(ctx context.Context, id string) (*DocumentWithChunks, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	chunks, err := s.chunks.ListByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DocumentWithChunks{Document: *doc, Chunks: chunks}, nil
}

func (s *documentService) Chunks(ctx context.Context, id string) ([]model.Chunk, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.chunks.ListByDocument(ctx, id)
}

func (s *documentService) LLMFormat(ctx context.Context, id string, includeRawText bool) (*LLMDocument, error) {
	dc, err := s.GetWithChunks(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &LLMDocument{
		ID:          dc.Document.ID,
		Filename:    dc.Document.OriginalFilename,
		FileType:    dc.Document.FileType,
		TotalChunks: dc.Document.TotalChunks,
		TotalTokens: dc.Document.TotalTokens,
		Chunks:      make([]model.LLMChunk, 0, len(dc.Chunks)),
	}
	for i := range dc.Chunks {
		out.Chunks = append(out.Chunks, dc.Chunks[i].ToLLMFormat())
	}
	if includeRawText {
		var raw string
		for i, c := range dc.Chunks {
			if i > 0 {
				raw += "\n"
			}
			raw += c.Text
		}
		out.RawText = raw
	}
	return out, nil
}

// Delete removes the stored original first; if that fails the DB rows stay
// so the reference to the object is not lost.
func (s *documentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.chunks.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return s.docs.Delete(ctx, id)
}

func (s *documentService) Reprocess(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.chunks.DeleteByDocument(ctx, id); err != nil {
		return nil, fmt.Errorf("clear chunks: %w", err)
	}

	doc.Status = model.StatusPending
	doc.ErrorMessage = ""
	doc.TotalChunks = 0
	doc.TotalTokens = 0
	doc.ProcessingStartedAt = nil
	doc.ProcessingCompletedAt = nil
	doc.ProcessingDurationMS = 0

	if err := s.docs.UpdateStatus(ctx, doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}
