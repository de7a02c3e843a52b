// Article HTTP handlers.
//
// This file exposes REST endpoints for the article resource:
//   - GET    /articles         (list, paginated by category)
//   - GET    /articles/:id     (detail)
//   - POST   /articles         (create)
//   - POST   /seed             (bulk sample insert)
//   - POST   /track/view/:id   (view counter)
//
// Handlers are transport-thin: they parse input, call application
// services, stamp the X-DB-Source header, and — for reads — substitute
// the static fallback payload when every data source has failed.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/fallback"
	"github.com/tbourn/go-news-backend/internal/services"
	"github.com/tbourn/go-news-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// NewsReader defines the read operations consumed by HTTP handlers.
//
// Implementations must be safe for concurrent use and honor the provided
// context. Every method reports the data tier that produced the result.
type NewsReader interface {
	List(ctx context.Context, category string, page, size int) ([]domain.ArticleSummary, domain.Source, error)
	Detail(ctx context.Context, id uint) (*domain.Article, domain.Source, error)
	Categories(ctx context.Context) ([]string, domain.Source, error)
	Search(ctx context.Context, q string, page, size int) ([]domain.ArticleSummary, domain.Source, error)
	Recommend(ctx context.Context, id uint) ([]domain.Recommendation, domain.Source, error)
	Home(ctx context.Context) (*domain.HomeFeed, domain.Source, error)
	Hot(ctx context.Context, page, size int) ([]domain.ArticleSummary, domain.Source, error)
	Version(ctx context.Context) string
}

// ArticleWriter defines the write operations consumed by HTTP handlers.
type ArticleWriter interface {
	Create(ctx context.Context, in services.CreateArticleInput) (uint, error)
	Seed(ctx context.Context, count int, categories []string) (int, int, error)
	TrackView(ctx context.Context, id string)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for articles, browsing, and feeds.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	reader NewsReader
	writer ArticleWriter
}

// New constructs a Handlers instance bound to the given services.
func New(reader NewsReader, writer ArticleWriter) *Handlers {
	return &Handlers{reader: reader, writer: writer}
}

//
// DTOs
//

// CreateArticleRequest is the JSON payload for creating an article.
type CreateArticleRequest struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// CreateArticleResponse carries the id of a freshly created article.
type CreateArticleResponse struct {
	ID uint `json:"id"`
}

// SeedResponse reports the outcome of a bulk seed.
type SeedResponse struct {
	Inserted   int `json:"inserted"`
	Categories int `json:"categories"`
}

//
// Helpers
//

// pageParams parses page and pageSize query params. Normalization
// (floors, clamps, defaults) happens in the service layer so cache keys
// and queries agree on the canonical form.
func pageParams(c *gin.Context) (page, size int) {
	page = utils.AtoiDefault(c.Query("page"), 1)
	size = utils.AtoiDefault(c.Query("pageSize"), 0)
	return
}

//
// Handlers
//

// ListArticles returns one page of article summaries, optionally
// filtered by category. A total data-source failure degrades to the
// canned one-article listing with a 200.
func (h *Handlers) ListArticles(c *gin.Context) {
	page, size := pageParams(c)
	rows, src, err := h.reader.List(c.Request.Context(), c.Query("category"), page, size)
	if err != nil {
		degraded(c, "list", err, fallback.List())
		return
	}
	sourced(c, src, rows)
}

// GetArticle returns a single article by id. A missing row is a 404; an
// unavailable data layer degrades to the canned article echoing the
// requested id.
func (h *Handlers) GetArticle(c *gin.Context) {
	id, ok := utils.AtoiUint(c.Param("id"))
	if !ok {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "article id must be a positive integer")
		return
	}

	a, src, err := h.reader.Detail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrArticleNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "article not found")
			return
		}
		degraded(c, "detail", err, fallback.Article(id))
		return
	}
	sourced(c, src, a)
}

// CreateArticle persists a new article on the primary and returns its id.
func (h *Handlers) CreateArticle(c *gin.Context) {
	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	id, err := h.writer.Create(c.Request.Context(), services.CreateArticleInput{
		Title:    req.Title,
		Summary:  req.Summary,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, CreateArticleResponse{ID: id})
}

// SeedArticles bulk-inserts generated sample rows. Count defaults to 50
// (clamped to [1,500] by the service); categories is an optional
// comma-separated rotation overriding the default set.
func (h *Handlers) SeedArticles(c *gin.Context) {
	count := utils.AtoiDefault(c.Query("count"), 50)

	var cats []string
	if raw := strings.TrimSpace(c.Query("categories")); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cats = append(cats, s)
			}
		}
	}

	inserted, rotation, err := h.writer.Seed(c.Request.Context(), count, cats)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSeedFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, SeedResponse{Inserted: inserted, Categories: rotation})
}

// TrackView records one view of an article: fire-and-forget event plus a
// best-effort counter bump. It always answers {"ok": true}.
func (h *Handlers) TrackView(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "article id required")
		return
	}
	h.writer.TrackView(c.Request.Context(), id)
	ok(c, http.StatusOK, gin.H{"ok": true})
}
