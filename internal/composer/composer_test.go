package composer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeforge/configcore/pkg/configcache"
	"github.com/latticeforge/configcore/pkg/configsource"
	"github.com/latticeforge/configcore/pkg/configtree"
	"github.com/latticeforge/configcore/pkg/configvalidate"
)

// fakeSource is a minimal in-memory Source for composer tests: it
// always reports available, its Load returns whatever tree is
// currently assigned, and its fingerprint is a counter bumped by Set
// so the composer's cache layer treats each Set as a new version.
type fakeSource struct {
	kind   configsource.Kind
	origin string
	tree   *configtree.Value
	gen    int
}

func newFakeSource(origin string, tree *configtree.Value) *fakeSource {
	return &fakeSource{kind: "fake", origin: origin, tree: tree}
}

func (f *fakeSource) Kind() configsource.Kind { return f.kind }
func (f *fakeSource) Origin() string          { return f.origin }
func (f *fakeSource) IsAvailable() bool       { return true }
func (f *fakeSource) Load() *configtree.Value { return f.tree }
func (f *fakeSource) Fingerprint() string     { return f.origin + "#" + itoa(f.gen) }
func (f *fakeSource) Metadata() configsource.Metadata {
	return configsource.Metadata{Kind: f.kind, Origin: f.origin}
}

func (f *fakeSource) Set(tree *configtree.Value) {
	f.tree = tree
	f.gen++
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}

func mapping(pairs ...interface{}) *configtree.Value {
	m := configtree.NewMapping()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1].(*configtree.Value))
	}
	return m
}

func TestComposer_StateMachineEmptyToConfiguredToLoaded(t *testing.T) {
	c := New()
	assert.Equal(t, StateEmpty, c.State())

	ctx := context.Background()
	require.NoError(t, c.AddSource(ctx, newFakeSource("a", mapping("x", configtree.Int(1)))))
	assert.Equal(t, StateLoaded, c.State())
}

func TestComposer_LastAddedSourceWins(t *testing.T) {
	c := New()
	ctx := context.Background()

	require.NoError(t, c.AddSource(ctx, newFakeSource("low", mapping("name", configtree.String("low")))))
	require.NoError(t, c.AddSource(ctx, newFakeSource("high", mapping("name", configtree.String("high")))))

	assert.Equal(t, "high", c.GetString("name", ""))
}

func TestComposer_ReloadFiresCallbacksInRegistrationOrder(t *testing.T) {
	c := New()
	ctx := context.Background()
	src := newFakeSource("a", mapping("x", configtree.Int(1)))
	require.NoError(t, c.AddSource(ctx, src))

	var order []int
	c.OnReload(func(old, newTree *configtree.Value) { order = append(order, 1) })
	c.OnReload(func(old, newTree *configtree.Value) { order = append(order, 2) })

	src.Set(mapping("x", configtree.Int(2)))
	require.NoError(t, c.Reload(ctx))

	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, int64(2), c.GetInt("x", 0))
}

func TestComposer_OffReloadStopsFutureCallbacks(t *testing.T) {
	c := New()
	ctx := context.Background()
	src := newFakeSource("a", mapping("x", configtree.Int(1)))
	require.NoError(t, c.AddSource(ctx, src))

	calls := 0
	id := c.OnReload(func(old, newTree *configtree.Value) { calls++ })
	c.OffReload(id)

	src.Set(mapping("x", configtree.Int(2)))
	require.NoError(t, c.Reload(ctx))

	assert.Equal(t, 0, calls)
}

func TestComposer_FailedSourceContributesEmptyMappingNotError(t *testing.T) {
	c := New()
	ctx := context.Background()

	require.NoError(t, c.AddSource(ctx, newFakeSource("good", mapping("a", configtree.Int(1)))))
	require.NoError(t, c.AddSource(ctx, unavailableSource{}))

	assert.Equal(t, int64(1), c.GetInt("a", 0))
}

type unavailableSource struct{}

func (unavailableSource) Kind() configsource.Kind { return "fake" }
func (unavailableSource) Origin() string          { return "unavailable" }
func (unavailableSource) IsAvailable() bool       { return false }
func (unavailableSource) Load() *configtree.Value { return configtree.NewMapping() }
func (unavailableSource) Fingerprint() string     { return "" }
func (unavailableSource) Metadata() configsource.Metadata {
	return configsource.Metadata{Kind: "fake", Origin: "unavailable"}
}

func TestComposer_ValidateCachesUntilNextSwap(t *testing.T) {
	c := New()
	ctx := context.Background()
	src := newFakeSource("a", mapping("name", configtree.String("svc")))
	require.NoError(t, c.AddSource(ctx, src))

	schema := &configvalidate.Schema{Fields: []configvalidate.Field{
		{Name: "name", Kind: configvalidate.KindString, Required: true},
	}}
	c.SetSchema(schema)

	res1 := c.Validate(ctx, configvalidate.Strict)
	res2 := c.Validate(ctx, configvalidate.Strict)
	assert.True(t, res1.Valid())
	assert.True(t, res2.Valid())

	src.Set(mapping("name", configtree.Int(5)))
	require.NoError(t, c.Reload(ctx))

	res3 := c.Validate(ctx, configvalidate.Strict)
	assert.False(t, res3.Valid(), "validation cache must be invalidated by the swap")
}

func TestComposer_AccessorsNeverPanicBeforeAnySourceAdded(t *testing.T) {
	c := New()
	assert.Equal(t, "fallback", c.GetString("missing.path", "fallback"))
	assert.Equal(t, int64(7), c.GetInt("missing.path", 7))
	assert.Nil(t, c.Get("missing.path"))
}

func TestComposer_DisposeIsIdempotentAndRejectsFurtherMutation(t *testing.T) {
	c := New()
	ctx := context.Background()
	require.NoError(t, c.AddSource(ctx, newFakeSource("a", mapping("x", configtree.Int(1)))))

	require.NoError(t, c.Dispose())
	require.NoError(t, c.Dispose())

	assert.Equal(t, StateDisposed, c.State())
	err := c.Reload(ctx)
	require.Error(t, err)
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, ErrDisposed)
}

func TestComposer_ReloadRecordsAuditHistory(t *testing.T) {
	c := New()
	ctx := context.Background()
	src := newFakeSource("a", mapping("x", configtree.Int(1)))
	require.NoError(t, c.AddSource(ctx, src))

	src.Set(mapping("x", configtree.Int(2)))
	require.NoError(t, c.Reload(ctx))

	stats := c.Stats()
	require.NotEmpty(t, stats.ReloadAudit)
	last := stats.ReloadAudit[len(stats.ReloadAudit)-1]
	assert.True(t, last.Changed)
	assert.NotEmpty(t, last.ReloadID)
}

func TestComposer_StatsReportsSourceCountAndGeneration(t *testing.T) {
	c := New()
	ctx := context.Background()
	require.NoError(t, c.AddSource(ctx, newFakeSource("a", mapping("x", configtree.Int(1)))))

	stats := c.Stats()
	assert.Equal(t, 1, stats.SourceCount)
	assert.GreaterOrEqual(t, stats.Generation, int64(1))
}

func TestComposer_CacheHitPreservesIntKindAcrossReload(t *testing.T) {
	backend, err := configcache.NewMemoryBackend(8)
	require.NoError(t, err)
	cache := configcache.NewManager(backend, nil)

	c := New(WithCache(cache))
	ctx := context.Background()
	src := newFakeSource("a", mapping("port", configtree.Int(8080)))
	require.NoError(t, c.AddSource(ctx, src))

	// Fingerprint is unchanged, so this Reload must be served from the
	// cache rather than re-calling src.Load().
	require.NoError(t, c.Reload(ctx))

	port, ok := c.Get("port").AsInt()
	require.True(t, ok, "cache hit must not have turned the int into a float")
	assert.Equal(t, int64(8080), port)
}

func TestComposer_ConcurrentReadsDuringReloadNeverBlockOrPanic(t *testing.T) {
	c := New()
	ctx := context.Background()
	src := newFakeSource("a", mapping("x", configtree.Int(1)))
	require.NoError(t, c.AddSource(ctx, src))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_ = c.GetInt("x", 0)
		}
	}()

	for i := 0; i < 10; i++ {
		src.Set(mapping("x", configtree.Int(int64(i))))
		require.NoError(t, c.Reload(ctx))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("concurrent reader did not finish — reload likely blocked it")
	}
}
