// Package composer implements the ConfigManager (C8): the orchestrator
// owning the ordered source list, the current immutable value tree,
// the cache, an optional schema, a profile manager, and an optional
// secrets accessor. Grounded on the teacher's
// internal/config/reload_coordinator.go (phased pipeline, atomic
// current-config pointer, structured per-phase logging), trimmed from
// its 6-phase load→validate→diff→apply→reload(components)→health-check
// pipeline down to load→swap→callbacks, where the swap step also diffs
// the new tree against the old one. Validation is not a reload phase:
// it runs on demand through Validate. There is no component-reload or
// health-check phase here, since this module owns no downstream
// components to restart.
package composer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/latticeforge/configcore/internal/metrics"
	"github.com/latticeforge/configcore/pkg/configcache"
	"github.com/latticeforge/configcore/pkg/configprofile"
	"github.com/latticeforge/configcore/pkg/configsecret"
	"github.com/latticeforge/configcore/pkg/configsource"
	"github.com/latticeforge/configcore/pkg/configtree"
	"github.com/latticeforge/configcore/pkg/configvalidate"
)

// State is one node of the composer's lifecycle state machine.
type State int

const (
	StateEmpty State = iota
	StateConfigured
	StateLoaded
	StateReloading
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateConfigured:
		return "configured"
	case StateLoaded:
		return "loaded"
	case StateReloading:
		return "reloading"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// ReloadCallback is invoked exactly once per successful swap, in
// registration order, after the swap is visible to readers. A panic
// or error inside the callback is caught and recorded, never
// propagated — callbacks must stay small, since reload blocks on them
// serially.
type ReloadCallback func(old, new *configtree.Value)

type registeredCallback struct {
	id int64
	cb ReloadCallback
}

// ReloadAuditRecord is one entry of the in-memory reload audit ring
// buffer: a reload attempt's id, timing, and outcome. Not persisted —
// the spec's Non-goals exclude a durable audit log, but an in-memory
// history is cheap and useful for stats()/diagnostics, grounded on the
// teacher's ReloadCoordinator phase-by-phase logging turned into a
// structured record instead of log lines alone.
type ReloadAuditRecord struct {
	ReloadID   string
	StartedAt  time.Time
	Duration   time.Duration
	Generation int64
	Changed    bool
	Err        string
}

const reloadAuditCapacity = 50

// Stats is the snapshot returned by Stats().
type Stats struct {
	State          State
	Generation     int64
	SourceCount    int
	Sources        []configsource.Metadata
	Cache          configcache.Stats
	LastReloadAt   time.Time
	LastReloadID   string
	ReloadCount    int64
	ReloadFailures int64
	ReloadAudit    []ReloadAuditRecord
}

// Composer is the ConfigManager described by the spec. Zero value is
// not usable; construct with New.
type Composer struct {
	logger *slog.Logger

	sourcesMu sync.Mutex
	sources   []configsource.Source

	treeMu sync.RWMutex
	tree   atomic.Pointer[configtree.Value]

	cache *configcache.Manager

	schemaMu sync.RWMutex
	schema   *configvalidate.Schema

	validationMu       sync.Mutex
	validationCache    *configvalidate.Result
	validationCacheGen int64

	profiles *configprofile.Registry
	secrets  configsecret.Accessor

	state atomic.Int32

	callbackMu sync.Mutex
	callbacks  []registeredCallback
	nextCbID   int64

	generation atomic.Int64

	statsMu        sync.Mutex
	lastReloadAt   time.Time
	lastReloadID   string
	reloadCount    int64
	reloadFailures int64
	reloadAudit    []ReloadAuditRecord
}

// recordReloadAudit appends rec to the ring buffer, dropping the
// oldest entry once reloadAuditCapacity is exceeded. Caller must hold
// statsMu.
func (c *Composer) recordReloadAudit(rec ReloadAuditRecord) {
	c.reloadAudit = append(c.reloadAudit, rec)
	if len(c.reloadAudit) > reloadAuditCapacity {
		c.reloadAudit = c.reloadAudit[len(c.reloadAudit)-reloadAuditCapacity:]
	}
}

// Option configures a Composer at construction time.
type Option func(*Composer)

// WithLogger overrides the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) { c.logger = logger }
}

// WithCache installs a cache manager; without one, caching is a no-op
// (equivalent to wrapping configcache.NewNullBackend()).
func WithCache(cache *configcache.Manager) Option {
	return func(c *Composer) { c.cache = cache }
}

// WithSchema binds a validation schema.
func WithSchema(schema *configvalidate.Schema) Option {
	return func(c *Composer) { c.schema = schema }
}

// WithProfiles installs a profile registry.
func WithProfiles(profiles *configprofile.Registry) Option {
	return func(c *Composer) { c.profiles = profiles }
}

// WithSecrets installs a secrets accessor.
func WithSecrets(secrets configsecret.Accessor) Option {
	return func(c *Composer) { c.secrets = secrets }
}

// New builds an empty Composer in StateEmpty.
func New(opts ...Option) *Composer {
	c := &Composer{logger: slog.Default()}
	c.tree.Store(configtree.NewMapping())
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = configcache.NewManager(configcache.NewNullBackend(), c.logger)
	}
	c.state.Store(int32(StateEmpty))
	return c
}

// State reports the composer's current lifecycle state.
func (c *Composer) State() State {
	return State(c.state.Load())
}

func (c *Composer) transitionTo(s State) {
	c.state.Store(int32(s))
}

// AddSource appends a source, advancing empty→configured on the first
// call. It invalidates the validation cache and triggers an immediate
// rebuild of the tree from every currently registered source — not a
// re-load from scratch of a single source in isolation, since merge
// order depends on the full list.
func (c *Composer) AddSource(ctx context.Context, s configsource.Source) error {
	if c.State() == StateDisposed {
		return &ConflictError{Op: "add_source", State: StateDisposed}
	}

	c.sourcesMu.Lock()
	c.sources = append(c.sources, s)
	c.sourcesMu.Unlock()

	if c.State() == StateEmpty {
		c.transitionTo(StateConfigured)
	}

	c.invalidateValidationCache()
	return c.rebuild(ctx, "add_source")
}

// RemoveSource removes the first source for which match returns true,
// then rebuilds the tree from the remaining sources.
func (c *Composer) RemoveSource(ctx context.Context, match func(configsource.Source) bool) error {
	if c.State() == StateDisposed {
		return &ConflictError{Op: "remove_source", State: StateDisposed}
	}

	c.sourcesMu.Lock()
	idx := -1
	for i, s := range c.sources {
		if match(s) {
			idx = i
			break
		}
	}
	if idx >= 0 {
		c.sources = append(c.sources[:idx], c.sources[idx+1:]...)
	}
	c.sourcesMu.Unlock()

	if idx < 0 {
		return nil
	}

	c.invalidateValidationCache()
	return c.rebuild(ctx, "remove_source")
}

// rebuild performs the same load→merge→swap work as Reload but without
// the reloading-state bookkeeping the public Reload entry point adds;
// add_source/remove_source call it directly so a single source change
// doesn't need the full reload ceremony.
func (c *Composer) rebuild(ctx context.Context, trigger string) error {
	c.sourcesMu.Lock()
	sources := append([]configsource.Source(nil), c.sources...)
	c.sourcesMu.Unlock()

	newTree := c.loadAndMerge(ctx, sources)
	c.swap(newTree)

	if c.State() != StateDisposed {
		c.transitionTo(StateLoaded)
	}
	c.logger.Debug("composer tree rebuilt", "trigger", trigger, "source_count", len(sources))
	return nil
}

// loadAndMerge loads every source (through the cache, keyed on
// (kind, origin, fingerprint)) and folds them left-to-right so the
// last-added source has the highest precedence. A source load failure
// contributes {} and is recorded on that source's own metadata; it
// never aborts the merge.
func (c *Composer) loadAndMerge(ctx context.Context, sources []configsource.Source) *configtree.Value {
	layers := make([]*configtree.Value, 0, len(sources))
	for _, s := range sources {
		layers = append(layers, c.loadOne(ctx, s))
	}
	return configtree.MergeAll(layers...)
}

func (c *Composer) loadOne(ctx context.Context, s configsource.Source) *configtree.Value {
	if !s.IsAvailable() {
		return configtree.NewMapping()
	}

	fingerprint := s.Fingerprint()
	key := configcache.Key(fmt.Sprintf("%s:%s:%s", s.Kind(), s.Origin(), fingerprint))

	if entry, hit := c.cache.Get(ctx, key); hit {
		metrics.CacheHits.Inc()
		if tree, ok := configtree.Unmarshal(entry.Value); ok {
			return tree
		}
	}
	metrics.CacheMisses.Inc()

	tree := s.Load()
	if tree == nil {
		tree = configtree.NewMapping()
		metrics.SourceLoadErrors.WithLabelValues(string(s.Kind())).Inc()
	}

	if encoded, ok := configtree.Marshal(tree); ok {
		_ = c.cache.Set(ctx, key, encoded, 0, []string{string(s.Kind())})
	}
	return tree
}

// swap atomically replaces the current tree and bumps the generation
// counter, holding the tree lock only for the pointer store itself.
// swap replaces the current tree and reports whether it actually
// differed from the previous one.
func (c *Composer) swap(newTree *configtree.Value) bool {
	c.treeMu.Lock()
	old := c.tree.Load()
	c.tree.Store(newTree)
	c.treeMu.Unlock()

	c.generation.Add(1)
	metrics.ReloadGeneration.Set(float64(c.generation.Load()))

	if old != nil && configtree.Equal(old, newTree) {
		return false
	}
	c.invalidateValidationCache()
	c.fireCallbacks(old, newTree)
	return true
}

func (c *Composer) currentTree() *configtree.Value {
	c.treeMu.RLock()
	defer c.treeMu.RUnlock()
	return c.tree.Load()
}

func (c *Composer) fireCallbacks(old, newTree *configtree.Value) {
	c.callbackMu.Lock()
	cbs := append([]registeredCallback(nil), c.callbacks...)
	c.callbackMu.Unlock()

	for _, rc := range cbs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("on_reload callback panicked", "callback_id", rc.id, "panic", r)
					metrics.ReloadCallbackErrors.WithLabelValues(fmt.Sprintf("%d", rc.id)).Inc()
				}
			}()
			rc.cb(old, newTree)
		}()
	}
}

// Reload re-loads every source through the cache and atomically swaps
// the resulting tree, firing callbacks on success. A reload that
// changes nothing still swaps (to a structurally-equal tree) but
// fires no callbacks, per swap's own no-op-on-equal check.
func (c *Composer) Reload(ctx context.Context) error {
	if c.State() == StateDisposed {
		return &ConflictError{Op: "reload", State: StateDisposed}
	}

	start := time.Now()
	reloadID := uuid.NewString()
	c.transitionTo(StateReloading)
	defer func() {
		if c.State() != StateDisposed {
			c.transitionTo(StateLoaded)
		}
	}()

	phaseStart := time.Now()
	c.sourcesMu.Lock()
	sources := append([]configsource.Source(nil), c.sources...)
	c.sourcesMu.Unlock()
	newTree := c.loadAndMerge(ctx, sources)
	metrics.ReloadPhaseDuration.WithLabelValues("load").Observe(time.Since(phaseStart).Seconds())

	phaseStart = time.Now()
	changed := c.swap(newTree)
	metrics.ReloadPhaseDuration.WithLabelValues("swap").Observe(time.Since(phaseStart).Seconds())

	metrics.ReloadTotal.WithLabelValues("success").Inc()
	metrics.ReloadDuration.Observe(time.Since(start).Seconds())
	metrics.ReloadLastSuccess.SetToCurrentTime()

	c.statsMu.Lock()
	c.lastReloadAt = time.Now()
	c.lastReloadID = reloadID
	c.reloadCount++
	c.recordReloadAudit(ReloadAuditRecord{
		ReloadID:   reloadID,
		StartedAt:  start,
		Duration:   time.Since(start),
		Generation: c.generation.Load(),
		Changed:    changed,
	})
	c.statsMu.Unlock()

	c.logger.Info("composer reload completed", "reload_id", reloadID, "generation", c.generation.Load(),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// OnReload registers cb and returns a handle for OffReload.
func (c *Composer) OnReload(cb ReloadCallback) int64 {
	c.callbackMu.Lock()
	defer c.callbackMu.Unlock()
	c.nextCbID++
	id := c.nextCbID
	c.callbacks = append(c.callbacks, registeredCallback{id: id, cb: cb})
	return id
}

// OffReload de-registers a callback previously returned by OnReload.
func (c *Composer) OffReload(id int64) {
	c.callbackMu.Lock()
	defer c.callbackMu.Unlock()
	for i, rc := range c.callbacks {
		if rc.id == id {
			c.callbacks = append(c.callbacks[:i], c.callbacks[i+1:]...)
			return
		}
	}
}

// Get resolves a dot path against the current tree.
func (c *Composer) Get(path string) *configtree.Value {
	return c.currentTree().Get(path)
}

func (c *Composer) GetString(path, def string) string {
	return configtree.GetString(c.currentTree(), path, def)
}

func (c *Composer) GetInt(path string, def int64) int64 {
	return configtree.GetInt(c.currentTree(), path, def)
}

func (c *Composer) GetFloat(path string, def float64) float64 {
	return configtree.GetFloat(c.currentTree(), path, def)
}

func (c *Composer) GetBool(path string, def bool) bool {
	return configtree.GetBool(c.currentTree(), path, def)
}

func (c *Composer) GetList(path string, def []*configtree.Value) []*configtree.Value {
	return configtree.GetList(c.currentTree(), path, def)
}

// GetSecret delegates to the bound secrets accessor, returning
// ("", false) when none is configured.
func (c *Composer) GetSecret(name string) (string, bool) {
	if c.secrets == nil {
		return "", false
	}
	return c.secrets.GetSecret(name)
}

// invalidateValidationCache is called on every swap and on schema
// replacement, per the spec's Open Question resolution: an in-flight
// validate() that began before the invalidation completes against its
// own pre-swap snapshot and its result is discarded rather than cached.
func (c *Composer) invalidateValidationCache() {
	c.validationMu.Lock()
	c.validationCache = nil
	c.validationCacheGen = -1
	c.validationMu.Unlock()
}

// SetSchema replaces the bound schema and invalidates the validation
// cache.
func (c *Composer) SetSchema(schema *configvalidate.Schema) {
	c.schemaMu.Lock()
	c.schema = schema
	c.schemaMu.Unlock()
	c.invalidateValidationCache()
}

// Validate runs the bound schema (if any) against the current tree,
// caching the result until the next swap or schema replacement. With
// no schema bound, every tree is trivially valid.
func (c *Composer) Validate(ctx context.Context, level configvalidate.Level) configvalidate.Result {
	gen := c.generation.Load()
	tree := c.currentTree()

	c.validationMu.Lock()
	if c.validationCache != nil && c.validationCacheGen == gen {
		cached := *c.validationCache
		c.validationMu.Unlock()
		return cached
	}
	c.validationMu.Unlock()

	c.schemaMu.RLock()
	schema := c.schema
	c.schemaMu.RUnlock()

	start := time.Now()
	var result configvalidate.Result
	if schema == nil {
		result = configvalidate.Result{Value: tree}
	} else {
		result = schema.Validate(tree, configvalidate.Context{Level: level})
	}
	metrics.ValidationDuration.Observe(time.Since(start).Seconds())

	// The tree may have been swapped while we validated; only cache the
	// result if the generation we validated against is still current.
	if c.generation.Load() == gen {
		c.validationMu.Lock()
		cp := result
		c.validationCache = &cp
		c.validationCacheGen = gen
		c.validationMu.Unlock()
	}
	return result
}

// IsValid is a thin, never-raising wrapper over Validate.
func (c *Composer) IsValid(ctx context.Context, level configvalidate.Level) bool {
	return c.Validate(ctx, level).Valid()
}

// Errors is a thin, never-raising wrapper over Validate.
func (c *Composer) Errors(ctx context.Context, level configvalidate.Level) []configvalidate.Diagnostic {
	return c.Validate(ctx, level).Errors()
}

// ValidateErr runs Validate and surfaces a failed result as a
// *ValidationError, for callers that prefer the errors.Is/As idiom over
// inspecting a Result directly (e.g. cmd/configctl's validate command).
func (c *Composer) ValidateErr(ctx context.Context, level configvalidate.Level) error {
	result := c.Validate(ctx, level)
	if result.Valid() {
		return nil
	}
	diags := make([]string, 0, len(result.Errors()))
	for _, d := range result.Errors() {
		diags = append(diags, d.Path+": "+d.Message)
	}
	return &ValidationError{Diagnostics: diags}
}

// Stats returns a snapshot of composer-level counters.
func (c *Composer) Stats() Stats {
	c.sourcesMu.Lock()
	metas := make([]configsource.Metadata, 0, len(c.sources))
	for _, s := range c.sources {
		metas = append(metas, s.Metadata())
	}
	count := len(c.sources)
	c.sourcesMu.Unlock()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return Stats{
		State:          c.State(),
		Generation:     c.generation.Load(),
		SourceCount:    count,
		Sources:        metas,
		Cache:          c.cache.Stats(),
		LastReloadAt:   c.lastReloadAt,
		LastReloadID:   c.lastReloadID,
		ReloadCount:    c.reloadCount,
		ReloadFailures: c.reloadFailures,
		ReloadAudit:    append([]ReloadAuditRecord(nil), c.reloadAudit...),
	}
}

// Dispose moves the composer to its terminal state and closes the
// cache. Safe to call more than once. It does not stop watchers started
// with Watch: their goroutines run until the stop function Watch
// returned is called, and every reload they trigger after Dispose is
// rejected with a *ConflictError.
func (c *Composer) Dispose() error {
	if c.State() == StateDisposed {
		return nil
	}
	c.transitionTo(StateDisposed)
	return c.cache.Close()
}
