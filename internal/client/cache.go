package client

import (
	"context"
	"strings"
	"sync"
)

// Cache keys are hierarchical strings like "documents", "documents/<id>" or
// "apikeys". Invalidation removes a key and everything beneath it, so a
// document mutation drops both the listing and the per-document entries.
type cacheEntry struct {
	value any
}

// Cache is a resource-keyed read-through cache over the SDK. Entries have no
// TTL; they live until a mutation invalidates them. Concurrent reads of the
// same key share one fetch.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	inmu    sync.Mutex
	flights map[string]*flight
}

type flight struct {
	done  chan struct{}
	value any
	err   error
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		flights: make(map[string]*flight),
	}
}

// Get returns the cached value for key or runs fetch to populate it.
// Errors are returned to every waiting caller and never cached.
func (c *Cache) Get(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	c.inmu.Lock()
	if f, ok := c.flights[key]; ok {
		c.inmu.Unlock()
		select {
		case <-f.done:
			return f.value, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	c.flights[key] = f
	c.inmu.Unlock()

	f.value, f.err = fetch(ctx)
	if f.err == nil {
		c.mu.Lock()
		c.entries[key] = &cacheEntry{value: f.value}
		c.mu.Unlock()
	}

	c.inmu.Lock()
	delete(c.flights, key)
	c.inmu.Unlock()
	close(f.done)

	return f.value, f.err
}

// Invalidate drops key and all keys nested under it.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
		prefix := key + "/"
		for k := range c.entries {
			if strings.HasPrefix(k, prefix) {
				delete(c.entries, k)
			}
		}
	}
}

// InvalidatePrefix drops every key beginning with prefix. Listing keys embed
// their query options, so mutations invalidate them by prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Clear drops every entry, e.g. on logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
