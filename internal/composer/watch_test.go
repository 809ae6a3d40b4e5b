package composer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeforge/configcore/pkg/configtree"
)

func TestComposer_WatchPollFallbackPicksUpSourceChange(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newFakeSource("a", mapping("x", configtree.Int(1)))
	require.NoError(t, c.AddSource(ctx, src))

	stop, err := c.Watch(ctx, WatchOptions{PollInterval: 20 * time.Millisecond})
	require.NoError(t, err)
	defer stop()

	src.Set(mapping("x", configtree.Int(2)))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.GetInt("x", 0) == 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("poll fallback never picked up the source change")
}

func TestComposer_WatchStopIsIdempotent(t *testing.T) {
	c := New()
	ctx := context.Background()
	require.NoError(t, c.AddSource(ctx, newFakeSource("a", mapping("x", configtree.Int(1)))))

	stop, err := c.Watch(ctx, WatchOptions{PollInterval: time.Second})
	require.NoError(t, err)
	stop()
	stop()
	assert.Equal(t, int64(1), c.GetInt("x", 0))
}
