// Package repo implements the data persistence layer for the articles
// table, backed by GORM. This file provides the query and insert
// functions the query router and write path are built on. Every function
// is a pure function of its parameters with deterministic ordering, so
// results are stable across the primary and the replica.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// ErrNotFound is returned when a single-row lookup matches nothing.
// Callers must treat it as a client error, not as a data-path failure.
var ErrNotFound = errors.New("repo: record not found")

// summaryColumns is the listing projection shared by every list-shaped query.
const summaryColumns = "id, title, summary, category, published_at"

// ListArticles returns one page of article summaries ordered by
// published_at descending. An empty or "all" category means no filter.
func ListArticles(ctx context.Context, db *gorm.DB, category string, offset, limit int) ([]domain.ArticleSummary, error) {
	out := make([]domain.ArticleSummary, 0, limit)
	q := db.WithContext(ctx).Model(&domain.Article{}).Select(summaryColumns)
	if category != "" && category != "all" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("published_at DESC, id DESC").Offset(offset).Limit(limit).Scan(&out).Error
	return out, err
}

// GetArticle fetches a single article by id. A missing row yields
// ErrNotFound.
func GetArticle(ctx context.Context, db *gorm.DB, id uint) (*domain.Article, error) {
	var a domain.Article
	if err := db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListCategories returns the distinct non-empty categories in ascending
// order. A limit <= 0 returns all of them.
func ListCategories(ctx context.Context, db *gorm.DB, limit int) ([]string, error) {
	out := make([]string, 0, 16)
	q := db.WithContext(ctx).Model(&domain.Article{}).
		Distinct("category").
		Where("category IS NOT NULL AND category <> ''").
		Order("category ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Pluck("category", &out).Error
	return out, err
}

// SearchArticles performs a case-insensitive substring match over title,
// summary, and content, newest first. The caller guarantees q is non-empty.
func SearchArticles(ctx context.Context, db *gorm.DB, q string, offset, limit int) ([]domain.ArticleSummary, error) {
	out := make([]domain.ArticleSummary, 0, limit)
	pattern := "%" + q + "%"
	err := db.WithContext(ctx).Model(&domain.Article{}).
		Select(summaryColumns).
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(summary) LIKE LOWER(?) OR LOWER(content) LIKE LOWER(?)",
			pattern, pattern, pattern).
		Order("published_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Scan(&out).Error
	return out, err
}

// ArticleCategory returns the category of the given article, or "" when
// the article does not exist or carries no category.
func ArticleCategory(ctx context.Context, db *gorm.DB, id uint) (string, error) {
	var rows []string
	err := db.WithContext(ctx).Model(&domain.Article{}).
		Where("id = ?", id).
		Limit(1).
		Pluck("category", &rows).Error
	if err != nil || len(rows) == 0 {
		return "", err
	}
	return rows[0], nil
}

// RecommendArticles returns up to limit recent articles excluding id.
// With a category, results are restricted to it; without one, the most
// recent articles overall are returned.
func RecommendArticles(ctx context.Context, db *gorm.DB, id uint, category string, limit int) ([]domain.Recommendation, error) {
	out := make([]domain.Recommendation, 0, limit)
	q := db.WithContext(ctx).Model(&domain.Article{}).
		Select("id, title").
		Where("id <> ?", id)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("published_at DESC, id DESC").Limit(limit).Scan(&out).Error
	return out, err
}

// LatestArticles returns the newest limit article summaries overall.
func LatestArticles(ctx context.Context, db *gorm.DB, limit int) ([]domain.ArticleSummary, error) {
	return ListArticles(ctx, db, "all", 0, limit)
}

// CountArticles returns the total number of articles. A raw COUNT so a
// missing table surfaces as an error.
func CountArticles(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM articles").Scan(&total).Error
	return total, err
}

// CreateArticle inserts a new article row. PublishedAt defaults to now.
func CreateArticle(ctx context.Context, db *gorm.DB, title, summary, content, category string) (*domain.Article, error) {
	a := &domain.Article{
		Title:       title,
		Summary:     summary,
		Content:     content,
		Category:    category,
		PublishedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// InsertArticles bulk-inserts the given rows in batches. Used by the
// seeding path, which invalidates caches once afterwards rather than per
// row.
func InsertArticles(ctx context.Context, db *gorm.DB, items []domain.Article) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(items, 100).Error
}
