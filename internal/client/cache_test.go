package client

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetCachesValues(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		return "value", nil
	}

	v1, err := c.Get(ctx, "documents", fetch)
	require.NoError(t, err)
	v2, err := c.Get(ctx, "documents", fetch)
	require.NoError(t, err)

	assert.Equal(t, "value", v1)
	assert.Equal(t, "value", v2)
	assert.Equal(t, 1, calls)
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	calls := 0
	_, err := c.Get(ctx, "documents", func(context.Context) (any, error) {
		calls++
		return nil, assert.AnError
	})
	require.Error(t, err)

	v, err := c.Get(ctx, "documents", func(context.Context) (any, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)

	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestCache_ConcurrentReadersShareOneFetch(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	var mu sync.Mutex
	calls := 0
	release := make(chan struct{})
	fetch := func(context.Context) (any, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(ctx, "documents", fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	// Racing goroutines may start a second flight before the first caches,
	// but the count must stay far below one fetch per reader.
	assert.LessOrEqual(t, calls, 2)
	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}

func TestCache_InvalidateDropsNestedKeys(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	seed := func(key, value string) {
		_, err := c.Get(ctx, key, func(context.Context) (any, error) { return value, nil })
		require.NoError(t, err)
	}
	seed("documents", "list")
	seed("documents/d1", "doc")
	seed("documents/d1/chunks", "chunks")
	seed("apikeys", "keys")

	c.Invalidate("documents")

	assert.Equal(t, 1, c.Len())
	v, err := c.Get(ctx, "apikeys", func(context.Context) (any, error) { return "refetched", nil })
	require.NoError(t, err)
	assert.Equal(t, "keys", v)
}

func TestCache_InvalidatePrefix(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	seed := func(key string) {
		_, err := c.Get(ctx, key, func(context.Context) (any, error) { return key, nil })
		require.NoError(t, err)
	}
	seed("documents?limit=10&offset=0")
	seed("documents?limit=10&offset=10")
	seed("apikeys")

	c.InvalidatePrefix("documents?")

	assert.Equal(t, 1, c.Len())
}

func TestCache_Clear(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	_, err := c.Get(ctx, "documents", func(context.Context) (any, error) { return "v", nil })
	require.NoError(t, err)

	c.Clear()

	assert.Equal(t, 0, c.Len())
}
