// Browse HTTP handlers: categories, search, and recommendations.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/fallback"
	"github.com/tbourn/go-news-backend/internal/utils"
)

// ListCategories returns the distinct category set, ascending. On total
// data-source failure it serves the full known category list so
// navigation never renders empty.
func (h *Handlers) ListCategories(c *gin.Context) {
	cats, src, err := h.reader.Categories(c.Request.Context())
	if err != nil {
		degraded(c, "categories", err, fallback.Categories())
		return
	}
	sourced(c, src, cats)
}

// SearchArticles returns one page of case-insensitive substring matches
// over title, summary, and content. An empty q yields an empty list
// without touching any data source.
func (h *Handlers) SearchArticles(c *gin.Context) {
	page, size := pageParams(c)
	rows, src, err := h.reader.Search(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		degraded(c, "search", err, fallback.Search())
		return
	}
	sourced(c, src, rows)
}

// RecommendArticles returns up to eight related articles for the given
// id, preferring its category, never including the article itself.
func (h *Handlers) RecommendArticles(c *gin.Context) {
	id, ok := utils.AtoiUint(c.Param("id"))
	if !ok {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "article id must be a positive integer")
		return
	}

	recs, src, err := h.reader.Recommend(c.Request.Context(), id)
	if err != nil {
		degraded(c, "recommend", err, fallback.Recommend())
		return
	}
	sourced(c, src, recs)
}
