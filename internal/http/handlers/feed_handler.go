// Feed HTTP handlers: the composed home feed, the hot listing, and the
// cache generation token.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/fallback"
)

// VersionResponse carries the current cache generation token.
type VersionResponse struct {
	Version string `json:"version"`
}

// HomeFeed returns the composed home payload: top categories with their
// latest articles plus a global latest list. Total failure degrades to
// the canned feed.
func (h *Handlers) HomeFeed(c *gin.Context) {
	feed, src, err := h.reader.Home(c.Request.Context())
	if err != nil {
		degraded(c, "home", err, fallback.Home())
		return
	}
	sourced(c, src, feed)
}

// HotArticles returns a recency-ordered page. The hot listing is never
// cached.
func (h *Handlers) HotArticles(c *gin.Context) {
	page, size := pageParams(c)
	rows, src, err := h.reader.Hot(c.Request.Context(), page, size)
	if err != nil {
		degraded(c, "hot", err, fallback.Hot())
		return
	}
	sourced(c, src, rows)
}

// ListVersion returns the current generation token, "1" when the store
// cannot answer. Clients embed it in their own cache keys.
func (h *Handlers) ListVersion(c *gin.Context) {
	ok(c, http.StatusOK, VersionResponse{Version: h.reader.Version(c.Request.Context())})
}
