// Package repo – bootstrap sample content.
//
// The site ships with a small set of sample articles so a fresh deployment
// renders a non-empty home page. Seeding is idempotent: it only runs when
// the table holds fewer rows than the sample set.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// sampleArticles is the canonical bootstrap content, one article per
// editorial category.
var sampleArticles = [][4]string{
	{"欢迎使用资讯网站", "这是一个示例文章，展示基本功能", "从0到百万用户的系统设计实践：分层、缓存、读写分离与异步化。", "推荐"},
	{"系统设计：缓存优先", "解释多级缓存（边缘、应用、本地）如何协同", "命中率目标 > 80%，失效策略与空值缓存避免击穿", "架构"},
	{"数据库读写分离", "一主多从的读写策略", "强一致读走主库，索引优化与慢查询治理", "数据库"},
	{"消息队列与异步化", "引入 Kafka 处理索引刷新与统计", "离线任务与重试机制，削峰填谷", "中间件"},
	{"搜索与推荐基础", "OpenSearch 检索与热门/主题推荐", "点击/停留/互动信号驱动排序与多样性", "搜索"},
	{"边缘缓存与静态化", "热门频道/详情短 TTL 与静态化输出", "发布逐步失效，防止失效风暴", "缓存"},
	{"前后端分层", "Web SSR 与 API REST 的职责划分", "独立扩容与安全边界管理", "前端"},
	{"容器化与网络", "统一网络服务发现与端口管理", "Compose 编排与未来向 K8s 迁移", "容器"},
	{"可观测性建设", "指标、日志、追踪与告警", "容量压测与瓶颈定位实践", "SRE"},
	{"安全与合规", "WAF、RBAC、隐私与审计", "输入校验与速率限制、防爬策略", "安全"},
	{"云原生实践", "K8s 与服务网格治理", "声明式配置与自动化运维", "云原生"},
	{"DevOps 流水线", "CI/CD 与发布机制", "金丝雀与自动回滚、版本治理", "DevOps"},
	{"微服务拆分", "边界划分与治理模型", "限流熔断与服务发现", "微服务"},
	{"数据工程", "数据采集、清洗与ETL", "批流一体与数据湖", "数据工程"},
	{"AI 应用", "Embedding 与推荐融合", "模型上线与监控", "AI应用"},
	{"性能优化", "Profile 与热点治理", "资源压测与容量规划", "性能优化"},
	{"测试与质量", "单元/集成/端到端测试", "可用性与可靠性度量", "测试质量"},
	{"产品与运营", "ABTest 与漏斗分析", "增长与留存指标体系", "产品运营"},
}

// EnsureSampleData seeds the bootstrap articles on the primary when the
// table holds fewer rows than the sample set.
func EnsureSampleData(ctx context.Context, db *gorm.DB) error {
	count, err := CountArticles(ctx, db)
	if err != nil {
		return err
	}
	if count >= int64(len(sampleArticles)) {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]domain.Article, 0, len(sampleArticles))
	for i, s := range sampleArticles {
		rows = append(rows, domain.Article{
			Title:    s[0],
			Summary:  s[1],
			Content:  s[2],
			Category: s[3],
			// Spread timestamps so recency ordering is deterministic.
			PublishedAt: now.Add(time.Duration(i-len(sampleArticles)) * time.Minute),
		})
	}
	return InsertArticles(ctx, db, rows)
}
