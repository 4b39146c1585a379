package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/trending/internal/model"
)

// EntityTypeArticle 测试中使用的实体类型标识
const EntityTypeArticle = "article"

// FixedNow 返回一个固定时钟
func FixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// TestArticle 创建测试文章
func TestArticle(t *testing.T, db *gorm.DB, opts ...func(*Article)) *Article {
	t.Helper()

	article := &Article{
		Title: fmt.Sprintf("Test Article %d", time.Now().UnixNano()%10000),
	}

	for _, opt := range opts {
		opt(article)
	}

	if err := db.Create(article).Error; err != nil {
		t.Fatalf("Failed to create test article: %v", err)
	}

	return article
}

// WithArticleTitle 设置文章标题
func WithArticleTitle(title string) func(*Article) {
	return func(a *Article) {
		a.Title = title
	}
}

// ArticleRef 文章的实体引用
func ArticleRef(id uint64) model.EntityRef {
	return model.EntityRef{EntityType: EntityTypeArticle, EntityID: id}
}

// TestViewLog 直接写入一条浏览记录，createdAt 决定它归属哪一天
func TestViewLog(t *testing.T, db *gorm.DB, sessionKey string, ref model.EntityRef, kind string, createdAt time.Time) *model.ViewLog {
	t.Helper()

	log := &model.ViewLog{
		SessionKey: sessionKey,
		EntityType: ref.EntityType,
		EntityID:   ref.EntityID,
		Kind:       kind,
	}
	log.Touch(createdAt)

	if err := db.Create(log).Error; err != nil {
		t.Fatalf("Failed to create test view log: %v", err)
	}

	return log
}

// TestViewLogs 为同一实体写入 n 条来自不同会话的浏览记录，会话标识带上日期，多天写入互不冲突
func TestViewLogs(t *testing.T, db *gorm.DB, n int, ref model.EntityRef, kind string, createdAt time.Time) {
	t.Helper()

	day := createdAt.UTC().Format("20060102")
	for i := 0; i < n; i++ {
		session := fmt.Sprintf("s-%s-%d-%s-%s-%d", ref.EntityType, ref.EntityID, kind, day, i)
		TestViewLog(t, db, session, ref, kind, createdAt)
	}
}

// TestSummary 直接写入一条日汇总
func TestSummary(t *testing.T, db *gorm.DB, viewsOn model.Date, ref model.EntityRef, kind string, count uint64) *model.DailyViewSummary {
	t.Helper()

	summary := &model.DailyViewSummary{
		ViewsOn:    viewsOn,
		Count:      count,
		EntityType: ref.EntityType,
		EntityID:   ref.EntityID,
		Kind:       kind,
	}
	summary.Touch(time.Now())

	if err := db.Create(summary).Error; err != nil {
		t.Fatalf("Failed to create test summary: %v", err)
	}

	return summary
}
