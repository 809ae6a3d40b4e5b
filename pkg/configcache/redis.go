package configcache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a Redis-backed cache backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
}

// Validate reports whether opts describes a usable connection.
func (o RedisOptions) Validate() error {
	if o.Addr == "" {
		return NewError("redis addr must not be empty", "CONFIG_ERROR")
	}
	return nil
}

// DefaultRedisOptions returns sane pool/timeout defaults for addr.
func DefaultRedisOptions(addr string) RedisOptions {
	return RedisOptions{
		Addr:            addr,
		PoolSize:        10,
		MinIdleConns:    1,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	}
}

// RedisBackend is a cache backend storing opaque entry blobs in Redis,
// keyed by the cache key with the entry's bookkeeping fields packed
// alongside the value. Grounded on the teacher's
// internal/infrastructure/cache/redis.go, trimmed to the Backend
// contract this package defines (no SET-member alert-tracking
// operations — those belonged to the teacher's alert domain).
type RedisBackend struct {
	client *redis.Client
	logger *slog.Logger
	closed bool

	hits      int64
	misses    int64
	evictions int64
}

// NewRedisBackend connects to Redis per opts and verifies the
// connection with a Ping before returning.
func NewRedisBackend(opts RedisOptions, logger *slog.Logger) (*RedisBackend, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:            opts.Addr,
		Password:        opts.Password,
		DB:              opts.DB,
		PoolSize:        opts.PoolSize,
		MinIdleConns:    opts.MinIdleConns,
		DialTimeout:     opts.DialTimeout,
		ReadTimeout:     opts.ReadTimeout,
		WriteTimeout:    opts.WriteTimeout,
		MaxRetries:      opts.MaxRetries,
		MinRetryBackoff: opts.MinRetryBackoff,
		MaxRetryBackoff: opts.MaxRetryBackoff,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err, "addr", opts.Addr)
		return nil, NewError("failed to connect to redis", "CONNECTION_ERROR").WithCause(err)
	}
	logger.Info("connected to redis cache backend", "addr", opts.Addr, "db", opts.DB)

	return &RedisBackend{client: client, logger: logger}, nil
}

func (b *RedisBackend) Get(ctx context.Context, key Key) (Entry, bool) {
	if b.closed {
		b.misses++
		return Entry{}, false
	}

	raw, err := b.client.Get(ctx, string(key)).Bytes()
	if err != nil {
		b.misses++
		return Entry{}, false
	}
	entry, ok := decodeEntry(key, raw)
	if !ok {
		b.misses++
		return Entry{}, false
	}
	b.hits++
	return entry, true
}

func (b *RedisBackend) Set(ctx context.Context, key Key, value []byte, ttl time.Duration, tags []string) error {
	if b.closed {
		return NewError("backend closed", "CONNECTION_ERROR")
	}
	entry := Entry{Key: key, Value: value, CreatedAt: time.Now(), TTL: ttl, Tags: tags, SizeBytes: int64(len(value))}

	redisTTL := ttl
	if redisTTL <= 0 {
		redisTTL = 0
	}
	if err := b.client.Set(ctx, string(key), encodeEntry(entry), redisTTL).Err(); err != nil {
		b.logger.Error("failed to set cache entry in redis", "key", key, "error", err)
		return NewError("failed to set value in redis", "SET_ERROR").WithCause(err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key Key) error {
	if b.closed {
		return NewError("backend closed", "CONNECTION_ERROR")
	}
	result, err := b.client.Del(ctx, string(key)).Result()
	if err != nil {
		return NewError("failed to delete redis key", "DELETE_ERROR").WithCause(err)
	}
	if result > 0 {
		b.evictions++
	}
	return nil
}

func (b *RedisBackend) Keys(ctx context.Context) ([]Key, error) {
	if b.closed {
		return nil, NewError("backend closed", "CONNECTION_ERROR")
	}
	var keys []Key
	iter := b.client.Scan(ctx, 0, "*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, Key(iter.Val()))
	}
	if err := iter.Err(); err != nil {
		return nil, NewError("failed to scan redis keys", "SCAN_ERROR").WithCause(err)
	}
	return keys, nil
}

func (b *RedisBackend) Stats() Stats {
	return Stats{Backend: BackendRedis, Hits: b.hits, Misses: b.misses, Evictions: b.evictions}
}

func (b *RedisBackend) Close() error {
	b.closed = true
	return b.client.Close()
}
