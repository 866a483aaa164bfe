package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"fileforge/internal/chunk"
	"fileforge/internal/extract"
	"fileforge/internal/model"
	"fileforge/internal/queue"
	"fileforge/internal/repository"
	"fileforge/internal/storage"
)

// ChunkDefaults mirror the converter's request defaults.
const (
	DefaultChunkStrategy = "semantic"
	DefaultChunkSize     = 1000
	DefaultChunkOverlap  = 100

	MinChunkSize    = 100
	MaxChunkSize    = 10000
	MaxChunkOverlap = 1000
)

// ConvertParams configure one conversion run.
type ConvertParams struct {
	ChunkStrategy string `json:"chunk_strategy"`
	ChunkSize     int    `json:"chunk_size"`
	ChunkOverlap  int    `json:"chunk_overlap"`
}

// Normalize clamps parameters into their documented ranges and fills defaults.
func (p ConvertParams) Normalize() ConvertParams {
	out := p
	out.ChunkStrategy = string(chunk.ParseStrategy(p.ChunkStrategy))
	if out.ChunkSize == 0 {
		out.ChunkSize = DefaultChunkSize
	}
	if out.ChunkSize < MinChunkSize {
		out.ChunkSize = MinChunkSize
	}
	if out.ChunkSize > MaxChunkSize {
		out.ChunkSize = MaxChunkSize
	}
	if out.ChunkOverlap < 0 {
		out.ChunkOverlap = 0
	}
	if out.ChunkOverlap > MaxChunkOverlap {
		out.ChunkOverlap = MaxChunkOverlap
	}
	return out
}

// JobPublisher enqueues async conversion jobs. *queue.Queue satisfies it.
type JobPublisher interface {
	Publish(ctx context.Context, job queue.Job) error
}

// ConvertService owns the conversion pipeline: accept the upload, persist
// the original, then extract, chunk and store results either inline or via
// the worker queue.
type ConvertService interface {
	// Upload stores the original and creates a pending document record.
	// Unsupported extensions and oversized files are rejected before any
	// storage or database work happens.
	Upload(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, userID string, params ConvertParams) (*model.Document, error)

	// Process runs extract→chunk→persist for a pending document and
	// returns the completed (or failed) document.
	Process(ctx context.Context, documentID string) (*model.Document, error)

	// Enqueue publishes an async conversion job for a pending document.
	Enqueue(ctx context.Context, doc *model.Document) error

	// SupportedExtensions lists the extensions the registry accepts.
	SupportedExtensions() []string
}

type convertService struct {
	store       storage.Storage
	docs        repository.DocumentRepository
	chunks      repository.ChunkRepository
	registry    *extract.Registry
	publisher   JobPublisher
	maxFileSize int64
	now         func() time.Time
}

// NewConvertService constructs the conversion pipeline service.
// publisher may be nil when async conversion is disabled.
func NewConvertService(
	store storage.Storage,
	docs repository.DocumentRepository,
	chunks repository.ChunkRepository,
	registry *extract.Registry,
	publisher JobPublisher,
	maxFileSize int64,
) ConvertService {
	return &convertService{
		store:       store,
		docs:        docs,
		chunks:      chunks,
		registry:    registry,
		publisher:   publisher,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

func (s *convertService) SupportedExtensions() []string {
	return s.registry.Extensions()
}

func (s *convertService) Upload(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, userID string, params ConvertParams) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if !s.registry.Supported(originalFilename) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(originalFilename))
	}
	if s.maxFileSize > 0 && size > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}
	params = params.Normalize()

	// Hash while streaming to storage so the content is read exactly once.
	hasher := sha256.New()
	tee := io.TeeReader(r, hasher)

	ext := filepath.Ext(originalFilename)
	genName := uuid.New().String() + ext
	key := filepath.ToSlash(filepath.Join("documents", genName))

	objInfo, err := s.store.Put(ctx, key, tee, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:               uuid.New().String(),
		Filename:         genName,
		OriginalFilename: originalFilename,
		FileType:         extract.FileType(originalFilename),
		ContentType:      objInfo.ContentType,
		StoragePath:      objInfo.Key,
		Size:             objInfo.Size,
		Hash:             hex.EncodeToString(hasher.Sum(nil)),
		UserID:           userID,
		Status:           model.StatusPending,
		ChunkStrategy:    params.ChunkStrategy,
		ChunkSize:        params.ChunkSize,
		ChunkOverlap:     params.ChunkOverlap,
		CreatedAt:        s.now().UTC(),
	}
	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *convertService) Enqueue(ctx context.Context, doc *model.Document) error {
	if s.publisher == nil {
		return errors.New("async conversion is not configured")
	}
	return s.publisher.Publish(ctx, queue.Job{
		DocumentID:    doc.ID,
		ChunkStrategy: doc.ChunkStrategy,
		ChunkSize:     doc.ChunkSize,
		ChunkOverlap:  doc.ChunkOverlap,
	})
}

func (s *convertService) Process(ctx context.Context, documentID string) (*model.Document, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	doc.MarkProcessing(s.now().UTC())
	if err := s.docs.UpdateStatus(ctx, doc); err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}

	if err := s.run(ctx, doc); err != nil {
		doc.MarkFailed(s.now().UTC(), err.Error())
		if updErr := s.docs.UpdateStatus(ctx, doc); updErr != nil {
			slog.Error("mark_failed_update", "document_id", doc.ID, "error", updErr)
		}
		return doc, nil
	}
	return doc, nil
}

// run executes extract→chunk→persist. Errors cause a failed status but are
// not returned to the HTTP caller as 5xx: the failure is part of the
// document's lifecycle, not the request's.
func (s *convertService) run(ctx context.Context, doc *model.Document) error {
	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return fmt.Errorf("fetch original: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read original: %w", err)
	}

	extractor, err := s.registry.Lookup(doc.Filename)
	if err != nil {
		return err
	}
	res, err := extractor.Extract(data)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	for _, w := range res.Warnings {
		slog.Warn("extract_warning", "document_id", doc.ID, "warning", w)
	}

	strategy := chunk.ParseStrategy(doc.ChunkStrategy)
	chunker := chunk.New(doc.ChunkSize, doc.ChunkOverlap)
	pieces := chunker.Split(res, strategy)

	now := s.now().UTC()
	rows := make([]model.Chunk, 0, len(pieces))
	totalTokens := 0
	for _, p := range pieces {
		totalTokens += p.TokenCount
		row := model.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Index:      p.Index,
			Text:       p.Text,
			TextLength: len(p.Text),
			TokenCount: p.TokenCount,
			ChunkType:  string(strategy),
			CreatedAt:  now,
		}
		if len(p.Categories) > 0 {
			row.ElementCategory = p.Categories[0]
		}
		if len(p.Pages) > 0 {
			row.SourcePage = p.Pages[0]
		}
		row.SourceSection = p.Section
		rows = append(rows, row)
	}
	if err := s.chunks.CreateBatch(ctx, rows); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}

	doc.MarkCompleted(s.now().UTC(), len(rows), totalTokens)
	if err := s.docs.UpdateStatus(ctx, doc); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}
