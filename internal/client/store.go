package client

import (
	"context"
	"fmt"
	"io"
	"time"

	"fileforge/internal/model"
)

// Store layers the resource cache over the SDK: reads go through the cache,
// mutations invalidate the affected resource keys on success and pass
// errors through untouched.
type Store struct {
	api   *Client
	cache *Cache
}

// NewStore wraps api with a fresh cache.
func NewStore(api *Client) *Store {
	return &Store{api: api, cache: NewCache()}
}

// API exposes the underlying SDK for calls with no caching semantics.
func (s *Store) API() *Client { return s.api }

func documentsKey(opts ListOptions) string {
	return fmt.Sprintf("documents?limit=%d&offset=%d&status=%s&type=%s",
		opts.Limit, opts.Offset, opts.Status, opts.FileType)
}

// Documents returns a cached page of documents.
func (s *Store) Documents(ctx context.Context, opts ListOptions) (*DocumentList, error) {
	v, err := s.cache.Get(ctx, documentsKey(opts), func(ctx context.Context) (any, error) {
		return s.api.Documents(ctx, opts)
	})
	if err != nil {
		return nil, err
	}
	return v.(*DocumentList), nil
}

// Document returns a cached document.
func (s *Store) Document(ctx context.Context, id string) (*model.Document, error) {
	v, err := s.cache.Get(ctx, "documents/"+id, func(ctx context.Context) (any, error) {
		return s.api.Document(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Document), nil
}

// Chunks returns the cached chunks of a document.
func (s *Store) Chunks(ctx context.Context, id string) (*ChunkList, error) {
	v, err := s.cache.Get(ctx, "documents/"+id+"/chunks", func(ctx context.Context) (any, error) {
		return s.api.Chunks(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ChunkList), nil
}

// Keys returns the cached API key list.
func (s *Store) Keys(ctx context.Context) (*KeyList, error) {
	v, err := s.cache.Get(ctx, "apikeys", func(ctx context.Context) (any, error) {
		return s.api.Keys(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*KeyList), nil
}

// invalidateDocuments drops every cached document listing and the given ids.
func (s *Store) invalidateDocuments(ids ...string) {
	s.cache.Invalidate("documents")
	s.cache.InvalidatePrefix("documents?")
	for _, id := range ids {
		s.cache.Invalidate("documents/" + id)
	}
}

// Convert uploads a file and invalidates document listings on success.
func (s *Store) Convert(ctx context.Context, filename string, content io.Reader, size int64, opts ConvertOptions) (*model.Document, error) {
	doc, err := s.api.Convert(ctx, filename, content, size, opts)
	if err != nil {
		return nil, err
	}
	s.invalidateDocuments()
	return doc, nil
}

// DeleteDocument removes a document and drops it from the cache, so the next
// list read no longer contains it.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if err := s.api.DeleteDocument(ctx, id); err != nil {
		return err
	}
	s.invalidateDocuments(id)
	return nil
}

// Reprocess re-runs conversion and drops stale cache entries.
func (s *Store) Reprocess(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.api.Reprocess(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateDocuments(id)
	return doc, nil
}

// CreateKey mints a key and invalidates the key list, so the next read
// reflects it exactly once.
func (s *Store) CreateKey(ctx context.Context, name string, expiresAt *time.Time) (*CreatedKey, error) {
	created, err := s.api.CreateKey(ctx, name, expiresAt)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate("apikeys")
	return created, nil
}

// UpdateKey applies changes and invalidates the key list.
func (s *Store) UpdateKey(ctx context.Context, id string, upd KeyUpdate) (*model.APIKey, error) {
	key, err := s.api.UpdateKey(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate("apikeys")
	return key, nil
}

// DeleteKey removes a key and invalidates the key list.
func (s *Store) DeleteKey(ctx context.Context, id string) error {
	if err := s.api.DeleteKey(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate("apikeys")
	return nil
}

// Logout revokes the session and clears everything cached under it.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}
