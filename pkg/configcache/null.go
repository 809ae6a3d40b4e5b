package configcache

import (
	"context"
	"time"
)

// NullBackend discards every write and always misses. It exists so the
// composer can run with caching disabled without special-casing a nil
// backend everywhere.
type NullBackend struct {
	misses int64
}

// NewNullBackend builds a no-op cache backend.
func NewNullBackend() *NullBackend { return &NullBackend{} }

func (b *NullBackend) Get(_ context.Context, _ Key) (Entry, bool) {
	b.misses++
	return Entry{}, false
}

func (b *NullBackend) Set(_ context.Context, _ Key, _ []byte, _ time.Duration, _ []string) error {
	return nil
}

func (b *NullBackend) Delete(_ context.Context, _ Key) error { return nil }

func (b *NullBackend) Keys(_ context.Context) ([]Key, error) { return nil, nil }

func (b *NullBackend) Stats() Stats { return Stats{Backend: BackendNull, Misses: b.misses} }

func (b *NullBackend) Close() error { return nil }
