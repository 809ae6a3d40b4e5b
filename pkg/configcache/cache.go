// Package configcache implements the pluggable cache layer that sits
// between the composer and its sources: a key derived from
// (source kind, origin, fingerprint) maps to a previously loaded value
// tree, so a source whose fingerprint hasn't changed since the last
// reload never has to be re-parsed. Grounded on the teacher's
// internal/infrastructure/cache package (Backend shape, CacheError
// pattern) and internal/infrastructure/template's two-tier LRU+stats
// design, adapted here to a single in-process LRU tier per backend.
package configcache

import (
	"context"
	"time"
)

// Key identifies one cached entry. Key derivation from
// (source_kind, origin, fingerprint) is the composer's responsibility
// (see internal/composer); this package only stores and retrieves by
// the resulting string.
type Key string

// Entry is a stored cache value plus the bookkeeping the spec requires:
// creation time, optional TTL, access counters, and optional tags for
// bulk invalidation.
type Entry struct {
	Key         Key
	Value       []byte
	CreatedAt   time.Time
	TTL         time.Duration
	AccessCount int64
	LastAccess  time.Time
	SizeBytes   int64
	Tags        []string
}

// Expired reports whether e has outlived its TTL as of now. A zero or
// negative TTL means "never expires".
func (e Entry) Expired(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.After(e.CreatedAt.Add(e.TTL))
}

// Backend is the pluggable storage contract every cache implementation
// satisfies: Memory, File, Null, and the optional Redis backend.
type Backend interface {
	// Get returns the stored entry and true if present and unexpired.
	Get(ctx context.Context, key Key) (Entry, bool)
	// Set stores value under key with the given TTL and tags.
	Set(ctx context.Context, key Key, value []byte, ttl time.Duration, tags []string) error
	// Delete removes a single key; a miss is not an error.
	Delete(ctx context.Context, key Key) error
	// Keys returns every currently stored key, for tag-index rebuilding
	// and diagnostics.
	Keys(ctx context.Context) ([]Key, error)
	// Stats returns backend-level counters.
	Stats() Stats
	// Close releases any resources the backend holds (file handles,
	// network connections). Null and Memory backends no-op.
	Close() error
}

// Stats mirrors the instrumentation counters the spec requires of the
// Memory backend and that the Manager aggregates across backends.
type Stats struct {
	Backend     string
	Hits        int64
	Misses      int64
	Evictions   int64
	CurrentSize int64
	ApproxBytes int64
}

// Backend tag constants, surfaced through Stats.Backend for
// diagnosability (which concrete backend is handling the traffic
// behind a Manager).
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendNull   = "null"
)
