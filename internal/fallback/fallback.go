// Package fallback supplies the static payloads served when both
// databases and the cache path are exhausted. Each function is a pure
// function of its inputs and can never fail, which is what guarantees
// the read path never hard-fails: the handler substitutes one of these
// payloads with source=fallback and a 200 instead of surfacing the
// outage.
package fallback

import (
	"time"

	"github.com/tbourn/go-news-backend/internal/domain"
)

const (
	sampleTitle   = "欢迎使用资讯网站"
	sampleSummary = "这是一个示例文章，展示基本功能"
	sampleContent = "从0到百万用户的系统设计实践：分层、缓存、读写分离与异步化。"
)

// knownCategories is the full editorial category set, in display order.
var knownCategories = []string{
	"推荐", "架构", "数据库", "中间件", "搜索", "缓存", "前端", "容器", "SRE", "安全",
	"云原生", "DevOps", "微服务", "数据工程", "AI应用", "性能优化", "测试质量", "产品运营",
}

func sampleSummaryRow() domain.ArticleSummary {
	return domain.ArticleSummary{
		ID:          1,
		Title:       sampleTitle,
		Summary:     sampleSummary,
		Category:    "推荐",
		PublishedAt: time.Now().UTC(),
	}
}

// List returns the one-article canned listing.
func List() []domain.ArticleSummary {
	return []domain.ArticleSummary{sampleSummaryRow()}
}

// Article returns the canned detail payload, echoing the requested id so
// the client's route state stays coherent.
func Article(id uint) *domain.Article {
	if id == 0 {
		id = 1
	}
	return &domain.Article{
		ID:          id,
		Title:       sampleTitle,
		Summary:     sampleSummary,
		Content:     sampleContent,
		PublishedAt: time.Now().UTC(),
	}
}

// Categories returns the full known category set.
func Categories() []string {
	out := make([]string, len(knownCategories))
	copy(out, knownCategories)
	return out
}

// Search returns the canned search result: an empty list.
func Search() []domain.ArticleSummary { return []domain.ArticleSummary{} }

// Recommend returns the canned recommendation list: empty.
func Recommend() []domain.Recommendation { return []domain.Recommendation{} }

// Hot returns the canned hot listing: empty.
func Hot() []domain.ArticleSummary { return []domain.ArticleSummary{} }

// Home returns the canned home feed: the sample article and no sections.
func Home() *domain.HomeFeed {
	return &domain.HomeFeed{
		Latest:   List(),
		Sections: []domain.HomeSection{},
	}
}
