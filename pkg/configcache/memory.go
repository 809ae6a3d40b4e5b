package configcache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryBackend is an in-process, bounded, LRU-evicted cache backend.
// Lookups take the shared lock; Set, Delete, the removal of an expired
// entry, and the access-count update Get writes back on every hit take
// it exclusively.
type MemoryBackend struct {
	mu    sync.RWMutex
	cache *lru.Cache[Key, Entry]

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewMemoryBackend builds a Memory backend bounded to maxEntries. A
// maxEntries of 1 means the second distinct key evicts the first, per
// the spec's boundary case.
func NewMemoryBackend(maxEntries int) (*MemoryBackend, error) {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	b := &MemoryBackend{}
	c, err := lru.NewWithEvict[Key, Entry](maxEntries, func(key Key, value Entry) {
		b.evictions.Add(1)
	})
	if err != nil {
		return nil, NewError("failed to construct LRU cache", "INIT_ERROR").WithCause(err)
	}
	b.cache = c
	return b, nil
}

func (b *MemoryBackend) Get(_ context.Context, key Key) (Entry, bool) {
	b.mu.RLock()
	entry, ok := b.cache.Get(key)
	b.mu.RUnlock()

	if !ok {
		b.misses.Add(1)
		return Entry{}, false
	}
	if entry.Expired(time.Now()) {
		b.mu.Lock()
		b.cache.Remove(key)
		b.mu.Unlock()
		b.misses.Add(1)
		return Entry{}, false
	}

	entry.AccessCount++
	entry.LastAccess = time.Now()
	b.mu.Lock()
	b.cache.Add(key, entry)
	b.mu.Unlock()

	b.hits.Add(1)
	return entry, true
}

func (b *MemoryBackend) Set(_ context.Context, key Key, value []byte, ttl time.Duration, tags []string) error {
	entry := Entry{
		Key:       key,
		Value:     value,
		CreatedAt: time.Now(),
		TTL:       ttl,
		SizeBytes: int64(len(value)),
		Tags:      tags,
	}
	b.mu.Lock()
	b.cache.Add(key, entry)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key Key) error {
	b.mu.Lock()
	b.cache.Remove(key)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Keys(_ context.Context) ([]Key, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cache.Keys(), nil
}

func (b *MemoryBackend) Stats() Stats {
	b.mu.RLock()
	size := b.cache.Len()
	var approxBytes int64
	for _, key := range b.cache.Keys() {
		if entry, ok := b.cache.Peek(key); ok {
			approxBytes += entry.SizeBytes
		}
	}
	b.mu.RUnlock()

	return Stats{
		Backend:     BackendMemory,
		Hits:        b.hits.Load(),
		Misses:      b.misses.Load(),
		Evictions:   b.evictions.Load(),
		CurrentSize: int64(size),
		ApproxBytes: approxBytes,
	}
}

func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	b.cache.Purge()
	b.mu.Unlock()
	return nil
}
