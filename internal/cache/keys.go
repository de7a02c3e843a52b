// Package cache – key derivation.
//
// Cache keys embed the current generation token ("list version") so a
// writer invalidates every listing entry at once just by bumping the
// counter: old keys are simply never matched again. Two keys carry no
// generation token: the per-article detail key, which is safe without
// one because articles are immutable, and the categories aggregate,
// which is invalidated by explicit deletion.
package cache

import "fmt"

const (
	// GenerationKey is the store key of the monotonically incremented
	// list version counter.
	GenerationKey = "list_version"
	// DefaultGeneration is the token value assumed whenever the store
	// cannot answer.
	DefaultGeneration = "1"
	// CategoriesKey is the explicitly deleted categories aggregate key.
	CategoriesKey = "categories"
)

// ListKey derives the cache key for one list page. Parameters must be
// normalized (category non-empty, page >= 1, size clamped) before the
// key is built so equivalent requests share an entry.
func ListKey(category string, page, size int, generation string) string {
	return fmt.Sprintf("list:%s:page:%d:size:%d:v:%s", category, page, size, generation)
}

// DetailKey derives the cache key for a single article.
func DetailKey(id uint) string {
	return fmt.Sprintf("article:%d", id)
}

// HomeKey derives the cache key for the composed home feed.
func HomeKey(generation string) string {
	return fmt.Sprintf("feed:home:v:%s", generation)
}
