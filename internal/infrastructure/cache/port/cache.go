package port

import (
	"context"
	"time"
)

// Cache is the key-value contract the application depends on. Values are
// strings to keep the port free of serialization concerns; the counter
// operations exist for daily usage tallies, which need atomic increments on
// the backend. Implementations must be concurrency-safe and context-aware.
type Cache interface {
	// Get fetches the value for key, returning ErrMiss when absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key. Zero or negative TTL means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Incr atomically increments the integer at key by one, creating it at
	// zero first when absent, and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)

	// Decr atomically decrements the integer at key by one and returns the
	// new value.
	Decr(ctx context.Context, key string) (int64, error)

	// Expire sets a TTL on an existing key. A no-op when the key is absent.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Del removes one or more keys and returns the number removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping verifies connectivity with the cache backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrMiss signals a cache miss in a typed way so callers can tell misses
// from transport errors.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
