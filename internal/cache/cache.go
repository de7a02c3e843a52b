// Package cache implements the cache-aside layer over the key-value
// store. It resolves the generation token, serves JSON-serialized query
// results on a hit, and writes results back with a per-family TTL on a
// miss. The store is allowed to be completely unavailable: every store
// error degrades to "miss" on the read side and is swallowed on the
// write side, so caching can never fail a request.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-news-backend/internal/store"
)

var (
	hits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Cache lookups served from the store.",
		},
		[]string{"operation"},
	)
	misses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Cache lookups that fell through to the query router.",
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(hits, misses)
}

// TTLs configures the per-operation-family expirations.
type TTLs struct {
	List       time.Duration // lists and the home feed
	Detail     time.Duration // single articles
	Categories time.Duration // the categories aggregate
}

// DefaultTTLs returns the expirations the site has always used.
func DefaultTTLs() TTLs {
	return TTLs{
		List:       60 * time.Second,
		Detail:     120 * time.Second,
		Categories: 600 * time.Second,
	}
}

// Cache is the cache-aside layer. It is safe for concurrent use.
type Cache struct {
	Store store.Store
	TTL   TTLs
}

// New builds a Cache over the given store. Zero TTL fields are filled
// with the defaults.
func New(s store.Store, ttl TTLs) *Cache {
	def := DefaultTTLs()
	if ttl.List <= 0 {
		ttl.List = def.List
	}
	if ttl.Detail <= 0 {
		ttl.Detail = def.Detail
	}
	if ttl.Categories <= 0 {
		ttl.Categories = def.Categories
	}
	return &Cache{Store: s, TTL: ttl}
}

// Generation resolves the current generation token, defaulting to "1"
// whenever the store errors or holds no counter yet. Readers must treat
// the default identically to a real token: the cache stays usable, just
// coarser.
func (c *Cache) Generation(ctx context.Context) string {
	v, err := c.Store.Get(ctx, GenerationKey)
	if err != nil || v == "" {
		return DefaultGeneration
	}
	return v
}

// Lookup attempts to read and deserialize a cached payload into out.
// It reports whether the hit was usable; any store or decode error is a
// miss.
func (c *Cache) Lookup(ctx context.Context, operation, key string, out any) bool {
	raw, err := c.Store.Get(ctx, key)
	if err != nil {
		misses.WithLabelValues(operation).Inc()
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		// A corrupt entry behaves like a miss; the write-back below
		// replaces it.
		misses.WithLabelValues(operation).Inc()
		return false
	}
	hits.WithLabelValues(operation).Inc()
	return true
}

// Save serializes v and stores it under key with the given TTL. Failures
// are logged at debug and swallowed: a cache-store failure must never
// fail the read that produced the result.
func (c *Cache) Save(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache: marshal failed")
		return
	}
	if err := c.Store.Set(ctx, key, string(raw), ttl); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache: store failed")
	}
}

// BumpGeneration increments the generation token, orphaning every
// generation-tagged entry. Best effort: on failure the caches simply
// stay valid one generation longer than ideal, which is an accepted
// staleness window rather than a correctness violation.
func (c *Cache) BumpGeneration(ctx context.Context) {
	if _, err := c.Store.Incr(ctx, GenerationKey); err != nil {
		log.Warn().Err(err).Msg("cache: generation bump failed; caches stay valid one generation longer")
	}
}

// DropCategories deletes the categories aggregate, whose key carries no
// generation token. Best effort.
func (c *Cache) DropCategories(ctx context.Context) {
	if err := c.Store.Del(ctx, CategoriesKey); err != nil {
		log.Warn().Err(err).Msg("cache: categories invalidation failed")
	}
}
