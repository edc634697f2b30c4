package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/propledger/internal/usecase"
)

func TestCache(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx, "snapshot")
	assert.True(t, errors.Is(err, usecase.ErrCacheMiss))

	value := []byte("payload")
	require.NoError(t, c.Set(ctx, "snapshot", value, 0))
	value[0] = 'X'

	got, err := c.Get(ctx, "snapshot")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got), "stored value must not alias the caller's slice")

	require.NoError(t, c.Delete(ctx, "snapshot"))
	_, err = c.Get(ctx, "snapshot")
	assert.ErrorIs(t, err, usecase.ErrCacheMiss)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, usecase.ErrCacheMiss)
}

func TestIdempotencyStore(t *testing.T) {
	s := NewIdempotencyStore(time.Minute)
	ctx := context.Background()

	exists, _, err := s.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, resp, err := s.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, processingMarker, string(resp))

	require.NoError(t, s.Update(ctx, "key", []byte(`{"id":"b-1"}`), time.Minute))
	_, resp, _ = s.CheckAndSet(ctx, "key", nil, time.Minute)
	assert.Equal(t, `{"id":"b-1"}`, string(resp))

	require.NoError(t, s.Release(ctx, "key"))
	exists, _, _ = s.CheckAndSet(ctx, "key", nil, time.Minute)
	assert.False(t, exists)
}
