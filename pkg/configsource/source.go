// Package configsource defines the uniform Source contract every config
// origin implements (file, environment, remote, secret-backed) and the
// metadata each accumulates across loads. The contract mirrors the
// Loader/Source split in warthog618/config's source.go, generalized to
// the mapping-returning, never-raising discipline the composer depends
// on: is_available is a cheap predicate, load is total, and fingerprint
// feeds the cache layer's key derivation.
package configsource

import (
	"sync"
	"time"

	"github.com/latticeforge/configcore/pkg/configtree"
)

// Kind tags a source's concrete implementation for cache-key derivation
// and diagnostics.
type Kind string

const (
	KindJSON    Kind = "json"
	KindYAML    Kind = "yaml"
	KindTOML    Kind = "toml"
	KindINI     Kind = "ini"
	KindEnv     Kind = "env"
	KindRemote  Kind = "remote"
	KindSecret  Kind = "secret"
)

// Source is the uniform contract every config origin satisfies. Load
// never returns an error: all parse/IO/decode failures are swallowed
// into an empty mapping and recorded on Metadata instead, so a single
// faulty source can never prevent the composer from applying the rest
// of its stack.
type Source interface {
	// Kind reports this source's concrete kind for cache-key derivation.
	Kind() Kind

	// Origin reports a stable identifier for this source (file path, URL,
	// or "env:<prefix>").
	Origin() string

	// IsAvailable is a cheap, non-raising predicate: true iff a
	// subsequent Load has a realistic chance of returning data.
	IsAvailable() bool

	// Load produces a mapping, {} on any failure. Never raises.
	Load() *configtree.Value

	// Fingerprint returns a stable identifier used to derive cache keys:
	// mtime for file sources, a content hash for dynamic ones.
	Fingerprint() string

	// Metadata returns a snapshot of this source's load counters.
	Metadata() Metadata
}

// Metadata is the observable state every source maintains about its own
// load history, mutated only by the source itself at the end of each
// Load call.
type Metadata struct {
	Kind            Kind
	Origin          string
	Attempts        int64
	Successes       int64
	Failures        int64
	LastLoadedAt    time.Time
	LastErrorAt     time.Time
	LastError       string
	LastSizeBytes   int64
	LastFingerprint string
	// Generation increments once per successful load, letting callers
	// cheaply detect "never changed" without re-hashing the fingerprint.
	Generation int64
}

// metaTracker is embedded by every concrete source to provide the
// shared, thread-safe metadata bookkeeping so each Load implementation
// only needs to report success/failure once.
type metaTracker struct {
	mu   sync.Mutex
	meta Metadata
}

func newMetaTracker(kind Kind, origin string) *metaTracker {
	return &metaTracker{meta: Metadata{Kind: kind, Origin: origin}}
}

func (t *metaTracker) recordAttempt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.meta.Attempts++
}

func (t *metaTracker) recordSuccess(sizeBytes int64, fingerprint string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.meta.Successes++
	t.meta.LastLoadedAt = time.Now()
	t.meta.LastSizeBytes = sizeBytes
	t.meta.LastFingerprint = fingerprint
	t.meta.Generation++
}

func (t *metaTracker) recordFailure(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.meta.Failures++
	t.meta.LastErrorAt = time.Now()
	if err != nil {
		t.meta.LastError = err.Error()
	}
}

func (t *metaTracker) snapshot() Metadata {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.meta
}
