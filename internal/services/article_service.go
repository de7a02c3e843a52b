// Package services – ArticleService
//
// This file implements the write path: creating articles, bulk seeding,
// and view tracking. Every successful listing-changing write bumps the
// generation token exactly once (best effort) and explicitly drops the
// categories aggregate, then emits snapshot events fire-and-forget.
// Neither the bump, the drop, nor the emission can fail the write.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-news-backend/internal/cache"
	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/events"
	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/store"
)

// viewsKey is the sorted set holding per-article view counters.
const viewsKey = "article_views"

// seedCategories is the default category rotation for bulk seeding.
var seedCategories = []string{
	"推荐", "架构", "数据库", "中间件", "搜索", "缓存", "前端", "容器", "SRE", "安全",
	"云原生", "DevOps", "微服务", "数据工程", "AI应用", "性能优化", "测试质量", "产品运营",
	"日志", "监控", "告警", "物联网", "边缘计算", "区块链", "多云", "混合云", "数据治理",
	"数据可视化", "NLP", "CV", "推荐系统", "灰度发布", "A/B测试",
}

// CreateArticleInput is the validated write payload.
type CreateArticleInput struct {
	Title    string
	Summary  string
	Content  string
	Category string
}

// ArticleService owns article creation, seeding, and view tracking.
// Writes go to the primary only; the replica receives them through
// replication.
type ArticleService struct {
	Primary *gorm.DB
	Cache   *cache.Cache
	Store   store.Store
	Events  events.Emitter
}

// Create persists a new article and invalidates the listing caches.
// An empty or blank title yields ErrInvalidInput before any side effect.
func (s *ArticleService) Create(ctx context.Context, in CreateArticleInput) (uint, error) {
	tr := otel.Tracer("services/ArticleService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return 0, ErrInvalidInput
	}

	a, err := repo.CreateArticle(ctx, s.Primary, in.Title, strings.TrimSpace(in.Summary), in.Content, strings.TrimSpace(in.Category))
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int64("article.id", int64(a.ID)))

	s.invalidate(ctx)
	events.FireAndForget(ctx, s.Events, events.TopicArticlePublished, events.PublishedEvent{ID: a.ID})
	events.FireAndForget(ctx, s.Events, events.TopicHomeSnapshot, events.SnapshotEvent{Reason: "article_published"})

	return a.ID, nil
}

// Seed bulk-inserts count generated articles cycling through the given
// categories (or the default rotation) and invalidates once afterwards,
// not once per row. Returns the number of rows inserted and the size of
// the category rotation used.
func (s *ArticleService) Seed(ctx context.Context, count int, categories []string) (int, int, error) {
	tr := otel.Tracer("services/ArticleService")
	ctx, span := tr.Start(ctx, "Seed",
		trace.WithAttributes(attribute.Int("count", count)),
	)
	defer span.End()

	if count < 1 {
		count = 1
	}
	if count > 500 {
		count = 500
	}
	if len(categories) == 0 {
		categories = seedCategories
	}

	now := time.Now().UTC()
	rows := make([]domain.Article, 0, count)
	for i := 0; i < count; i++ {
		cat := categories[i%len(categories)]
		rows = append(rows, domain.Article{
			Title:       fmt.Sprintf("%s 专题 %d-%d", cat, now.UnixMilli(), i),
			Summary:     fmt.Sprintf("%s 主题的实践与最佳实践", cat),
			Content:     fmt.Sprintf("%s 相关内容，覆盖架构、性能、可观测与运维等方面。", cat),
			Category:    cat,
			PublishedAt: now.Add(time.Duration(i) * time.Millisecond),
		})
	}
	if err := repo.InsertArticles(ctx, s.Primary, rows); err != nil {
		return 0, 0, err
	}

	s.invalidate(ctx)
	events.FireAndForget(ctx, s.Events, events.TopicHomeSnapshot, events.SnapshotEvent{Reason: "seed"})

	return count, len(categories), nil
}

// TrackView records one view of an article: an article_viewed event for
// the snapshot worker plus a best-effort bump of the view counter in the
// key-value store. It never fails the request.
func (s *ArticleService) TrackView(ctx context.Context, id string) {
	events.FireAndForget(ctx, s.Events, events.TopicArticleViewed, events.ViewedEvent{ID: id})
	if s.Store != nil {
		if err := s.Store.ZIncr(ctx, viewsKey, id); err != nil {
			log.Debug().Err(err).Str("article_id", id).Msg("view counter bump failed")
		}
	}
}

// invalidate bumps the generation token (orphaning all generation-tagged
// entries) and drops the explicitly keyed categories aggregate. Both are
// best effort.
func (s *ArticleService) invalidate(ctx context.Context) {
	s.Cache.BumpGeneration(ctx)
	s.Cache.DropCategories(ctx)
}
