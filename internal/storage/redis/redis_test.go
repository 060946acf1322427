package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to the Redis named by TEST_REDIS_ADDR.
func newTestStore(t *testing.T) *IdempotencyStore {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	rdb, err := NewClient(context.Background(), Options{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	return NewIdempotencyStore(rdb, time.Minute)
}

func TestIdempotencyStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	scope, key := "test", uuid.NewString()

	_, ok, err := s.Recall(ctx, scope, key)
	require.NoError(t, err)
	assert.False(t, ok)

	locked, err := s.TryLock(ctx, scope, key)
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = s.TryLock(ctx, scope, key)
	require.NoError(t, err)
	assert.False(t, locked, "second claim must fail")

	require.NoError(t, s.Remember(ctx, scope, key, `{"status":200}`))
	v, ok, err := s.Recall(ctx, scope, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"status":200}`, v)
}

func TestIdempotencyStore_Release(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	scope, key := "test", uuid.NewString()

	locked, err := s.TryLock(ctx, scope, key)
	require.NoError(t, err)
	require.True(t, locked)

	require.NoError(t, s.Release(ctx, scope, key))

	locked, err = s.TryLock(ctx, scope, key)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient(context.Background(), Options{URL: "not-a-url://"})
	require.Error(t, err)
}
