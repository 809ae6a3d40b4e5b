package configcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullBackend_SetIsNoopAndGetAlwaysMisses(t *testing.T) {
	backend := NewNullBackend()
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "k", []byte("v"), 0, nil))

	_, ok := backend.Get(ctx, "k")
	assert.False(t, ok)

	stats := backend.Stats()
	assert.Equal(t, BackendNull, stats.Backend)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestNullBackend_DeleteAndKeysAreNoops(t *testing.T) {
	backend := NewNullBackend()
	ctx := context.Background()

	require.NoError(t, backend.Delete(ctx, "k"))
	keys, err := backend.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
