// Package memory provides in-process stand-ins for the Redis-backed stores, used when the
// service runs without Redis.
package memory

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/iho/propledger/internal/usecase"
)

// Cache implements usecase.Cache on top of go-cache.
type Cache struct {
	store *gocache.Cache
}

// NewCache creates a cache whose expired entries are purged every cleanupInterval.
func NewCache(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{store: gocache.New(defaultTTL, cleanupInterval)}
}

// Get returns a copy of the stored value or usecase.ErrCacheMiss.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, usecase.ErrCacheMiss
	}
	b := v.([]byte)
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// Set stores a copy of value. A zero ttl uses the cache default.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	b := make([]byte, len(value))
	copy(b, value)
	c.store.Set(key, b, ttl)
	return nil
}

// Delete removes a key.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// IdempotencyStore implements usecase.IdempotencyStore for a single instance.
type IdempotencyStore struct {
	mu    sync.Mutex
	store *gocache.Cache
}

const processingMarker = "processing"

// NewIdempotencyStore creates an in-process idempotency store.
func NewIdempotencyStore(cleanupInterval time.Duration) *IdempotencyStore {
	return &IdempotencyStore{store: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// CheckAndSet reports an existing entry or claims the key.
func (s *IdempotencyStore) CheckAndSet(_ context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.store.Get(key); ok {
		return true, v.([]byte), nil
	}

	if response == nil {
		response = []byte(processingMarker)
	}
	s.store.Set(key, response, ttl)

	return false, nil, nil
}

// Update stores the final response of a key.
func (s *IdempotencyStore) Update(_ context.Context, key string, response []byte, ttl time.Duration) error {
	s.store.Set(key, response, ttl)
	return nil
}

// Release frees a key.
func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.store.Delete(key)
	return nil
}

var (
	_ usecase.Cache            = (*Cache)(nil)
	_ usecase.IdempotencyStore = (*IdempotencyStore)(nil)
)
