// Package services – NewsService
//
// This file implements the read path: for each operation it resolves the
// generation token, attempts the cache, falls through to the query
// router (replica-first with primary failover), and writes the result
// back with the operation family's TTL. Per request the steps are
// strictly sequential (token → cache → query → store); the only internal
// parallelism is the home feed's per-section fan-out inside the router.
//
// Error contract: ErrArticleNotFound for a missing detail row,
// ErrDataUnavailable when both sources failed. Handlers substitute the
// fallback payload for the latter so reads never hard-fail.
package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-news-backend/internal/cache"
	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/query"
	"github.com/tbourn/go-news-backend/internal/repo"
)

const (
	defaultPageSize = 10
	maxPageSize     = 20
)

// NewsService serves every read operation through the cache-aside layer
// and the query router. It is safe for concurrent use.
type NewsService struct {
	Cache  *cache.Cache
	Router *query.Router
}

// NewNewsService constructs a NewsService.
func NewNewsService(c *cache.Cache, r *query.Router) *NewsService {
	return &NewsService{Cache: c, Router: r}
}

// NormalizeListParams canonicalizes list-shaped parameters: empty
// category becomes "all", page is floored at 1, size is clamped to
// [1, 20] with a default of 10. Cache keys are built from the normalized
// form so equivalent requests share an entry.
func NormalizeListParams(category string, page, size int) (string, int, int) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = "all"
	}
	if page < 1 {
		page = 1
	}
	if size == 0 {
		size = defaultPageSize
	}
	if size < 1 {
		size = 1
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return category, page, size
}

func (s *NewsService) mapErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrArticleNotFound
	case errors.Is(err, query.ErrUnavailable):
		return ErrDataUnavailable
	default:
		// Anything else that escapes the router still means no source
		// answered; reads must degrade, not fail.
		return ErrDataUnavailable
	}
}

// List returns one page of article summaries for a category.
func (s *NewsService) List(ctx context.Context, category string, page, size int) ([]domain.ArticleSummary, domain.Source, error) {
	tr := otel.Tracer("services/NewsService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("category", category),
			attribute.Int("page", page),
			attribute.Int("page_size", size),
		),
	)
	defer span.End()

	category, page, size = NormalizeListParams(category, page, size)
	key := cache.ListKey(category, page, size, s.Cache.Generation(ctx))

	var cached []domain.ArticleSummary
	if s.Cache.Lookup(ctx, "list", key, &cached) {
		return cached, domain.SourceCache, nil
	}

	rows, src, err := s.Router.List(ctx, category, (page-1)*size, size)
	if err != nil {
		return nil, src, s.mapErr(err)
	}
	s.Cache.Save(ctx, key, rows, s.Cache.TTL.List)
	return rows, src, nil
}

// Detail returns one article by id. The detail key carries no generation
// token: articles are immutable, so a cached row can never be stale.
func (s *NewsService) Detail(ctx context.Context, id uint) (*domain.Article, domain.Source, error) {
	tr := otel.Tracer("services/NewsService")
	ctx, span := tr.Start(ctx, "Detail",
		trace.WithAttributes(attribute.Int64("article.id", int64(id))),
	)
	defer span.End()

	key := cache.DetailKey(id)
	var cached domain.Article
	if s.Cache.Lookup(ctx, "detail", key, &cached) {
		return &cached, domain.SourceCache, nil
	}

	a, src, err := s.Router.Get(ctx, id)
	if err != nil {
		return nil, src, s.mapErr(err)
	}
	s.Cache.Save(ctx, key, a, s.Cache.TTL.Detail)
	return a, src, nil
}

// Categories returns the distinct category set. Its cache key carries no
// generation token; the write path invalidates it by explicit deletion.
func (s *NewsService) Categories(ctx context.Context) ([]string, domain.Source, error) {
	tr := otel.Tracer("services/NewsService")
	ctx, span := tr.Start(ctx, "Categories")
	defer span.End()

	var cached []string
	if s.Cache.Lookup(ctx, "categories", cache.CategoriesKey, &cached) {
		return cached, domain.SourceCache, nil
	}

	cats, src, err := s.Router.Categories(ctx)
	if err != nil {
		return nil, src, s.mapErr(err)
	}
	s.Cache.Save(ctx, cache.CategoriesKey, cats, s.Cache.TTL.Categories)
	return cats, src, nil
}

// Search returns one page of substring matches. An empty query returns
// an empty result without touching any data source; search results are
// not cached.
func (s *NewsService) Search(ctx context.Context, q string, page, size int) ([]domain.ArticleSummary, domain.Source, error) {
	tr := otel.Tracer("services/NewsService")
	ctx, span := tr.Start(ctx, "Search",
		trace.WithAttributes(attribute.String("query", q)),
	)
	defer span.End()

	q = strings.TrimSpace(q)
	if q == "" {
		return []domain.ArticleSummary{}, domain.SourceReplica, nil
	}
	_, page, size = NormalizeListParams("all", page, size)

	rows, src, err := s.Router.Search(ctx, q, (page-1)*size, size)
	if err != nil {
		return nil, src, s.mapErr(err)
	}
	return rows, src, nil
}

// Recommend returns related articles for id; never cached, never
// includes id itself.
func (s *NewsService) Recommend(ctx context.Context, id uint) ([]domain.Recommendation, domain.Source, error) {
	tr := otel.Tracer("services/NewsService")
	ctx, span := tr.Start(ctx, "Recommend",
		trace.WithAttributes(attribute.Int64("article.id", int64(id))),
	)
	defer span.End()

	recs, src, err := s.Router.Recommend(ctx, id)
	if err != nil {
		return nil, src, s.mapErr(err)
	}
	return recs, src, nil
}

// Home returns the composed home feed.
func (s *NewsService) Home(ctx context.Context) (*domain.HomeFeed, domain.Source, error) {
	tr := otel.Tracer("services/NewsService")
	ctx, span := tr.Start(ctx, "Home")
	defer span.End()

	key := cache.HomeKey(s.Cache.Generation(ctx))
	var cached domain.HomeFeed
	if s.Cache.Lookup(ctx, "home", key, &cached) {
		return &cached, domain.SourceCache, nil
	}

	feed, src, err := s.Router.Home(ctx)
	if err != nil {
		return nil, src, s.mapErr(err)
	}
	s.Cache.Save(ctx, key, feed, s.Cache.TTL.List)
	return feed, src, nil
}

// Hot returns a recency-ordered page; never cached.
func (s *NewsService) Hot(ctx context.Context, page, size int) ([]domain.ArticleSummary, domain.Source, error) {
	tr := otel.Tracer("services/NewsService")
	ctx, span := tr.Start(ctx, "Hot",
		trace.WithAttributes(attribute.Int("page", page), attribute.Int("page_size", size)),
	)
	defer span.End()

	_, page, size = NormalizeListParams("all", page, size)
	rows, src, err := s.Router.Hot(ctx, (page-1)*size, size)
	if err != nil {
		return nil, src, s.mapErr(err)
	}
	return rows, src, nil
}

// Version returns the current generation token as a string, "1" when the
// store cannot answer.
func (s *NewsService) Version(ctx context.Context) string {
	return s.Cache.Generation(ctx)
}
