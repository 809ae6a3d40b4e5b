package configcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_MaxEntriesOneEvictsOnSecondKey(t *testing.T) {
	backend, err := NewMemoryBackend(1)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "first", []byte("1"), 0, nil))
	require.NoError(t, backend.Set(ctx, "second", []byte("2"), 0, nil))

	_, ok := backend.Get(ctx, "first")
	assert.False(t, ok, "first key should have been evicted")

	entry, ok := backend.Get(ctx, "second")
	require.True(t, ok)
	assert.Equal(t, []byte("2"), entry.Value)
	assert.Equal(t, int64(1), backend.Stats().Evictions)
}

func TestMemoryBackend_TTLHonored(t *testing.T) {
	backend, err := NewMemoryBackend(8)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "k", []byte("v"), 10*time.Millisecond, nil))
	time.Sleep(20 * time.Millisecond)

	_, ok := backend.Get(ctx, "k")
	assert.False(t, ok, "expired entry must not be returned")
}

func TestMemoryBackend_ZeroTTLNeverExpires(t *testing.T) {
	backend, err := NewMemoryBackend(8)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "k", []byte("v"), 0, nil))
	time.Sleep(5 * time.Millisecond)

	_, ok := backend.Get(ctx, "k")
	assert.True(t, ok)
}

func TestMemoryBackend_HitMissCounters(t *testing.T) {
	backend, err := NewMemoryBackend(8)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "k", []byte("v"), 0, nil))

	_, _ = backend.Get(ctx, "k")
	_, _ = backend.Get(ctx, "missing")

	stats := backend.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, BackendMemory, stats.Backend)
}

func TestMemoryBackend_DeleteRemovesEntry(t *testing.T) {
	backend, err := NewMemoryBackend(8)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "k", []byte("v"), 0, nil))
	require.NoError(t, backend.Delete(ctx, "k"))

	_, ok := backend.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryBackend_KeysListsStoredKeys(t *testing.T) {
	backend, err := NewMemoryBackend(8)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "a", []byte("1"), 0, nil))
	require.NoError(t, backend.Set(ctx, "b", []byte("2"), 0, nil))

	keys, err := backend.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Key{"a", "b"}, keys)
}
