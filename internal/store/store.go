// Package store abstracts the fast key-value store that backs the cache
// layer and the generation counter. The interface is deliberately small:
// get, set-with-TTL, increment, delete. The store is externally owned and
// may be wholly unavailable; callers must treat every error as a cache
// miss or a default value, never as a request failure.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key does not exist or has expired.
// Implementations also return it for "store unreachable" so that callers
// have a single degraded path.
var ErrMiss = errors.New("store: key not found")

// Store is the generation/cache key-value contract.
type Store interface {
	// Get returns the value for key, or ErrMiss.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Incr atomically increments the integer counter at key and returns
	// the new value.
	Incr(ctx context.Context, key string) (int64, error)
	// Del removes key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error
	// ZIncr increments member's score in the sorted set at key. Used for
	// the per-article view counters.
	ZIncr(ctx context.Context, key, member string) error
}
