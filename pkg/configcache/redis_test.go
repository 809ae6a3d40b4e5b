package configcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	opts := DefaultRedisOptions(mr.Addr())
	opts.DialTimeout = time.Second
	opts.ReadTimeout = time.Second

	backend, err := NewRedisBackend(opts, nil)
	require.NoError(t, err)

	return backend, mr
}

func TestRedisBackend_SetThenGet(t *testing.T) {
	backend, mr := setupTestRedis(t)
	defer mr.Close()
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "cfg:key", []byte(`{"a":1}`), time.Minute, []string{"tag-a"}))

	entry, ok := backend.Get(ctx, "cfg:key")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"a":1}`), entry.Value)
}

func TestRedisBackend_GetMissingKeyIsMiss(t *testing.T) {
	backend, mr := setupTestRedis(t)
	defer mr.Close()
	defer backend.Close()

	_, ok := backend.Get(context.Background(), "absent")
	assert.False(t, ok)
}

func TestRedisBackend_FastForwardExpiresEntry(t *testing.T) {
	backend, mr := setupTestRedis(t)
	defer mr.Close()
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "ttl-key", []byte("v"), 2*time.Second, nil))
	mr.FastForward(3 * time.Second)

	_, ok := backend.Get(ctx, "ttl-key")
	assert.False(t, ok)
}

func TestRedisBackend_DeleteIncrementsEvictions(t *testing.T) {
	backend, mr := setupTestRedis(t)
	defer mr.Close()
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "del-key", []byte("v"), 0, nil))
	require.NoError(t, backend.Delete(ctx, "del-key"))

	assert.Equal(t, int64(1), backend.Stats().Evictions)
	_, ok := backend.Get(ctx, "del-key")
	assert.False(t, ok)
}

func TestRedisBackend_CloseRejectsFurtherUse(t *testing.T) {
	backend, mr := setupTestRedis(t)
	defer mr.Close()

	require.NoError(t, backend.Close())
	err := backend.Set(context.Background(), "k", []byte("v"), 0, nil)
	assert.Error(t, err)
}
