// Package domain defines the persistence model for articles and the
// result types shared by the read path. The Article type is mapped with
// GORM and mirrors the articles table of the news store.
package domain

import "time"

// Source identifies which data path produced a read response. It is
// attached to every response (X-DB-Source header) and never persisted.
type Source string

const (
	// SourceReplica means the read replica answered the query.
	SourceReplica Source = "replica"
	// SourcePrimary means the replica failed and the primary answered.
	SourcePrimary Source = "primary"
	// SourceCache means the response was served from the cache store.
	SourceCache Source = "cache"
	// SourceFallback means every live data path failed and the canned
	// payload was substituted.
	SourceFallback Source = "fallback"
)

// Article is a published news article. Articles are insert-only: once
// created they are never updated or deleted, which is what makes the
// generation-tagged caching scheme safe. PublishedAt is the sort key for
// every recency-ordered listing.
type Article struct {
	ID          uint      `json:"id"                 gorm:"primaryKey"`
	Title       string    `json:"title"              gorm:"type:text;not null"`
	Summary     string    `json:"summary,omitempty"  gorm:"type:text"`
	Content     string    `json:"content,omitempty"  gorm:"type:text"`
	Category    string    `json:"category,omitempty" gorm:"type:text;index:idx_articles_category_published_at,priority:1"`
	PublishedAt time.Time `json:"published_at"       gorm:"index:idx_articles_category_published_at,priority:2,sort:desc"`
}

// TableName returns the database table name for Article.
func (Article) TableName() string { return "articles" }

// ArticleSummary is the listing projection of an article (no content
// body). Lists, search results, feeds and the hot page all return it.
type ArticleSummary struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Category    string    `json:"category,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Recommendation is the minimal projection returned by the recommend
// operation: enough to render a "related articles" link list.
type Recommendation struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// HomeSection groups the most recent articles of one category on the
// home feed.
type HomeSection struct {
	Category string           `json:"category"`
	Items    []ArticleSummary `json:"items"`
}

// HomeFeed is the composed home page payload: the newest articles overall
// plus per-category sections. Both parts are always produced by the same
// data source within a single request.
type HomeFeed struct {
	Latest   []ArticleSummary `json:"latest"`
	Sections []HomeSection    `json:"sections"`
}
