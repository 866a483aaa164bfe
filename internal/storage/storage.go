// Package storage abstracts S3-compatible object stores behind a small
// streaming interface. Implementations must not touch local disk.
package storage

import (
	"context"
	"io"
	"time"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1 to let the
// implementation buffer/chunk as the backend supports.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is an S3-compatible object storage client.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL for downloading the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
