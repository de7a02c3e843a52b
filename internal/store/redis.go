// Package store – Redis implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Store on top of a go-redis client. Every call carries
// its own timeout so a hung Redis can never hang a request.
type Redis struct {
	rdb     *redis.Client
	timeout time.Duration
}

// NewRedis creates a Redis-backed store. The connection is not verified
// here; use Ping for a startup health check.
func NewRedis(addr string, timeout time.Duration) *Redis {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &Redis{
		rdb:     redis.NewClient(&redis.Options{Addr: addr}),
		timeout: timeout,
	}
}

// Ping verifies connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.rdb.Ping(ctx).Err()
}

// Close shuts down the underlying connection pool.
func (r *Redis) Close() error { return r.rdb.Close() }

// Get returns the value for key, mapping both redis.Nil and transport
// errors to ErrMiss.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	v, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", errors.Join(ErrMiss, err)
	}
	return v, nil
}

// Set stores value under key with the given TTL.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

// Incr atomically increments the counter at key.
func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.rdb.Incr(ctx, key).Result()
}

// Del removes key.
func (r *Redis) Del(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.rdb.Del(ctx, key).Err()
}

// ZIncr increments member's score by one in the sorted set at key.
func (r *Redis) ZIncr(ctx context.Context, key, member string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.rdb.ZIncrBy(ctx, key, 1, member).Err()
}
