package model

import "time"

// DocumentStatus tracks a document through the conversion pipeline.
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// Terminal reports whether no further status transitions are expected.
func (s DocumentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Document represents an uploaded file and its conversion state.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID               string         `json:"id"`
	Filename         string         `json:"filename"`
	OriginalFilename string         `json:"original_filename"`
	FileType         string         `json:"file_type"`
	ContentType      string         `json:"content_type"`
	StoragePath      string         `json:"storage_path"`
	Size             int64          `json:"size"`
	Hash             string         `json:"hash,omitempty"`
	UserID           string         `json:"user_id,omitempty"`
	Status           DocumentStatus `json:"status"`
	ErrorMessage     string         `json:"error_message,omitempty"`

	// Chunking configuration used for this document.
	ChunkStrategy string `json:"chunk_strategy,omitempty"`
	ChunkSize     int    `json:"chunk_size,omitempty"`
	ChunkOverlap  int    `json:"chunk_overlap,omitempty"`

	// Derived stats populated when processing completes.
	TotalChunks int `json:"total_chunks"`
	TotalTokens int `json:"total_tokens"`

	ProcessingStartedAt   *time.Time `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processing_completed_at,omitempty"`
	ProcessingDurationMS  int64      `json:"processing_duration_ms,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarkProcessing records the start of a conversion run.
func (d *Document) MarkProcessing(now time.Time) {
	d.Status = StatusProcessing
	d.ProcessingStartedAt = &now
}

// MarkCompleted records a successful conversion and its derived stats.
func (d *Document) MarkCompleted(now time.Time, totalChunks, totalTokens int) {
	d.Status = StatusCompleted
	d.ProcessingCompletedAt = &now
	d.TotalChunks = totalChunks
	d.TotalTokens = totalTokens
	if d.ProcessingStartedAt != nil {
		d.ProcessingDurationMS = now.Sub(*d.ProcessingStartedAt).Milliseconds()
	}
}

// MarkFailed records a failed conversion with the cause.
func (d *Document) MarkFailed(now time.Time, errMsg string) {
	d.Status = StatusFailed
	d.ErrorMessage = errMsg
	d.ProcessingCompletedAt = &now
	if d.ProcessingStartedAt != nil {
		d.ProcessingDurationMS = now.Sub(*d.ProcessingStartedAt).Milliseconds()
	}
}
