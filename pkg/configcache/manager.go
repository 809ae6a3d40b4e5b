package configcache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Manager wraps a Backend with the bookkeeping the spec requires beyond
// plain get/set: a tag→keys index for bulk invalidation, aggregated
// hit/miss metrics independent of whatever the backend tracks
// internally, and a disable toggle. Disabling makes every operation
// behave as if backed by NullBackend without losing the configured
// backend or its stats once re-enabled. Grounded on the teacher's
// TwoTierTemplateCache (fallback-chain shape, invalidate-on-mutation)
// generalized from its fixed L1/L2 pair down to a single pluggable
// Backend.
type Manager struct {
	backend Backend
	logger  *slog.Logger

	mu      sync.RWMutex
	enabled bool
	tags    map[string]map[Key]struct{}

	hits   int64
	misses int64
	sets   int64
}

// NewManager wraps backend, enabled by default.
func NewManager(backend Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		backend: backend,
		logger:  logger,
		enabled: true,
		tags:    map[string]map[Key]struct{}{},
	}
}

// Enable turns caching back on.
func (m *Manager) Enable() {
	m.mu.Lock()
	m.enabled = true
	m.mu.Unlock()
}

// Disable makes every Get a miss and every Set a no-op, without
// discarding the underlying backend's contents.
func (m *Manager) Disable() {
	m.mu.Lock()
	m.enabled = false
	m.mu.Unlock()
}

// Enabled reports the current toggle state.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

func (m *Manager) isEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// Get returns the cached entry for key, or (Entry{}, false) if caching
// is disabled, the key is absent, or it has expired.
func (m *Manager) Get(ctx context.Context, key Key) (Entry, bool) {
	if !m.isEnabled() {
		m.mu.Lock()
		m.misses++
		m.mu.Unlock()
		return Entry{}, false
	}

	entry, ok := m.backend.Get(ctx, key)
	m.mu.Lock()
	if ok {
		m.hits++
	} else {
		m.misses++
	}
	m.mu.Unlock()
	return entry, ok
}

// Set stores value under key and indexes it under every tag for later
// bulk invalidation. A no-op while disabled.
func (m *Manager) Set(ctx context.Context, key Key, value []byte, ttl time.Duration, tags []string) error {
	if !m.isEnabled() {
		return nil
	}

	if err := m.backend.Set(ctx, key, value, ttl, tags); err != nil {
		m.logger.Warn("failed to set cache entry", "key", key, "error", err)
		return err
	}

	m.mu.Lock()
	m.sets++
	for _, tag := range tags {
		set, ok := m.tags[tag]
		if !ok {
			set = map[Key]struct{}{}
			m.tags[tag] = set
		}
		set[key] = struct{}{}
	}
	m.mu.Unlock()
	return nil
}

// Delete removes a single key from the backend and the tag index.
func (m *Manager) Delete(ctx context.Context, key Key) error {
	if err := m.backend.Delete(ctx, key); err != nil {
		return err
	}
	m.mu.Lock()
	for _, set := range m.tags {
		delete(set, key)
	}
	m.mu.Unlock()
	return nil
}

// InvalidateTag deletes every key ever Set under tag and returns how
// many were removed. Keys that have since been evicted by the backend
// (e.g. LRU eviction) are pruned from the index without error.
func (m *Manager) InvalidateTag(ctx context.Context, tag string) int {
	m.mu.Lock()
	set := m.tags[tag]
	delete(m.tags, tag)
	m.mu.Unlock()

	count := 0
	for key := range set {
		if err := m.backend.Delete(ctx, key); err == nil {
			count++
		}
	}
	return count
}

// Stats reports the Manager's own hit/miss counters, independent of
// whatever the wrapped backend tracks, alongside the backend's tag,
// eviction count and size figures.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	backendStats := m.backend.Stats()
	return Stats{
		Backend:     backendStats.Backend,
		Hits:        m.hits,
		Misses:      m.misses,
		Evictions:   backendStats.Evictions,
		CurrentSize: backendStats.CurrentSize,
		ApproxBytes: backendStats.ApproxBytes,
	}
}

// Close releases the wrapped backend's resources.
func (m *Manager) Close() error {
	return m.backend.Close()
}
