// Package query implements the read-side query router: every logical
// read operation executes against the read replica first and fails over
// exactly once to the primary when the replica errors. The router reports
// which source answered so the transport layer can expose it. There is no
// backoff and no further retry; when both sources fail the operation
// surfaces ErrUnavailable and the caller substitutes the fallback payload.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/repo"
)

// ErrUnavailable is returned when both the replica and the primary failed
// to execute an operation.
var ErrUnavailable = errors.New("query: both data sources unavailable")

const (
	// RecommendLimit caps the recommendation list.
	RecommendLimit = 8
	// HomeSectionCount caps the number of home-feed category sections.
	HomeSectionCount = 8
	// HomeSectionSize is the number of articles per home-feed section.
	HomeSectionSize = 5
	// HomeLatestSize is the number of articles in the home-feed latest block.
	HomeLatestSize = 20
)

var failovers = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_failover_total",
		Help: "Read operations that failed over from the replica to the primary.",
	},
	[]string{"operation"},
)

func init() {
	prometheus.MustRegister(failovers)
}

// Router executes read operations with replica-first failover. Both
// handles are externally owned; the router holds no state beyond them.
type Router struct {
	Replica *gorm.DB
	Primary *gorm.DB
	// Timeout bounds each query attempt. Zero means 3s.
	Timeout time.Duration
}

func (r *Router) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return 3 * time.Second
}

// execute runs fn against the replica and, on any execution error, once
// more against the primary. repo.ErrNotFound is a result, not an
// execution error: it is returned as-is without triggering failover.
// Each attempt gets its own timeout so a hung replica cannot consume the
// primary's budget.
func (r *Router) execute(ctx context.Context, op string, fn func(ctx context.Context, db *gorm.DB) error) (domain.Source, error) {
	attempt := func(db *gorm.DB) error {
		actx, cancel := context.WithTimeout(ctx, r.timeout())
		defer cancel()
		return fn(actx, db)
	}

	replicaErr := attempt(r.Replica)
	if replicaErr == nil || errors.Is(replicaErr, repo.ErrNotFound) {
		return domain.SourceReplica, replicaErr
	}

	failovers.WithLabelValues(op).Inc()
	primaryErr := attempt(r.Primary)
	if primaryErr == nil || errors.Is(primaryErr, repo.ErrNotFound) {
		return domain.SourcePrimary, primaryErr
	}
	return domain.SourcePrimary, fmt.Errorf("%w (%s): replica: %v; primary: %v", ErrUnavailable, op, replicaErr, primaryErr)
}

// handle returns the database handle for an already-resolved source.
func (r *Router) handle(src domain.Source) *gorm.DB {
	if src == domain.SourcePrimary {
		return r.Primary
	}
	return r.Replica
}

// List returns one page of article summaries for a category ("all" or ""
// for no filter).
func (r *Router) List(ctx context.Context, category string, offset, limit int) ([]domain.ArticleSummary, domain.Source, error) {
	var rows []domain.ArticleSummary
	src, err := r.execute(ctx, "list", func(ctx context.Context, db *gorm.DB) error {
		var e error
		rows, e = repo.ListArticles(ctx, db, category, offset, limit)
		return e
	})
	if err != nil {
		return nil, src, err
	}
	return rows, src, nil
}

// Get returns a single article by id; a missing row surfaces
// repo.ErrNotFound with the source that answered.
func (r *Router) Get(ctx context.Context, id uint) (*domain.Article, domain.Source, error) {
	var a *domain.Article
	src, err := r.execute(ctx, "detail", func(ctx context.Context, db *gorm.DB) error {
		var e error
		a, e = repo.GetArticle(ctx, db, id)
		return e
	})
	if err != nil {
		return nil, src, err
	}
	return a, src, nil
}

// Categories returns all distinct categories in ascending order.
func (r *Router) Categories(ctx context.Context) ([]string, domain.Source, error) {
	var cats []string
	src, err := r.execute(ctx, "categories", func(ctx context.Context, db *gorm.DB) error {
		var e error
		cats, e = repo.ListCategories(ctx, db, 0)
		return e
	})
	if err != nil {
		return nil, src, err
	}
	return cats, src, nil
}

// Search returns one page of substring matches, newest first. The empty
// query is short-circuited above the router and never reaches it.
func (r *Router) Search(ctx context.Context, q string, offset, limit int) ([]domain.ArticleSummary, domain.Source, error) {
	var rows []domain.ArticleSummary
	src, err := r.execute(ctx, "search", func(ctx context.Context, db *gorm.DB) error {
		var e error
		rows, e = repo.SearchArticles(ctx, db, q, offset, limit)
		return e
	})
	if err != nil {
		return nil, src, err
	}
	return rows, src, nil
}

// Recommend returns up to RecommendLimit related articles for id: the
// most recent articles sharing its category, or the most recent overall
// when the article has no category. The queried article is always
// excluded.
func (r *Router) Recommend(ctx context.Context, id uint) ([]domain.Recommendation, domain.Source, error) {
	var recs []domain.Recommendation
	src, err := r.execute(ctx, "recommend", func(ctx context.Context, db *gorm.DB) error {
		category, e := repo.ArticleCategory(ctx, db, id)
		if e != nil {
			return e
		}
		recs, e = repo.RecommendArticles(ctx, db, id, category, RecommendLimit)
		return e
	})
	if err != nil {
		return nil, src, err
	}
	return recs, src, nil
}

// Hot returns one page of articles ordered purely by recency.
func (r *Router) Hot(ctx context.Context, offset, limit int) ([]domain.ArticleSummary, domain.Source, error) {
	var rows []domain.ArticleSummary
	src, err := r.execute(ctx, "hot", func(ctx context.Context, db *gorm.DB) error {
		var e error
		rows, e = repo.ListArticles(ctx, db, "all", offset, limit)
		return e
	})
	if err != nil {
		return nil, src, err
	}
	return rows, src, nil
}

// Home composes the home feed: up to HomeSectionCount category sections
// of HomeSectionSize articles each, plus the HomeLatestSize newest
// articles overall. The source is resolved once by the category lookup;
// the section and latest queries are pinned to that source, never mixed.
// Section queries fan out concurrently against the resolved handle.
func (r *Router) Home(ctx context.Context) (*domain.HomeFeed, domain.Source, error) {
	var cats []string
	src, err := r.execute(ctx, "home", func(ctx context.Context, db *gorm.DB) error {
		var e error
		cats, e = repo.ListCategories(ctx, db, HomeSectionCount)
		return e
	})
	if err != nil {
		return nil, src, err
	}

	db := r.handle(src)
	sections := make([]domain.HomeSection, len(cats))

	gctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()
	g, gctx := errgroup.WithContext(gctx)
	g.SetLimit(4)
	for i, c := range cats {
		g.Go(func() error {
			items, e := repo.ListArticles(gctx, db, c, 0, HomeSectionSize)
			if e != nil {
				return e
			}
			sections[i] = domain.HomeSection{Category: c, Items: items}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, src, fmt.Errorf("%w (home sections on %s): %v", ErrUnavailable, src, err)
	}

	lctx, lcancel := context.WithTimeout(ctx, r.timeout())
	defer lcancel()
	latest, err := repo.LatestArticles(lctx, db, HomeLatestSize)
	if err != nil {
		return nil, src, fmt.Errorf("%w (home latest on %s): %v", ErrUnavailable, src, err)
	}

	return &domain.HomeFeed{Latest: latest, Sections: sections}, src, nil
}
