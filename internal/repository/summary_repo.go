package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/trending/internal/model"
)

// TrendingRow 回溯窗口内按实体累加后的浏览数
type TrendingRow struct {
	EntityType string
	EntityID   uint64
	Kind       string
	NumViews   int64
}

type SummaryRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db, now: time.Now}
}

// WithClock 替换写入时使用的时钟
func (r *SummaryRepository) WithClock(now func() time.Time) *SummaryRepository {
	r.now = now
	return r
}

// GetByKey 按唯一键 (views_on, entity_type, entity_id) 查询，不区分 kind
func (r *SummaryRepository) GetByKey(ctx context.Context, viewsOn model.Date, ref model.EntityRef) (*model.DailyViewSummary, error) {
	var summary model.DailyViewSummary
	err := r.db.WithContext(ctx).
		Where("views_on = ? AND entity_type = ? AND entity_id = ?", viewsOn, ref.EntityType, ref.EntityID).
		First(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *SummaryRepository) Create(ctx context.Context, summary *model.DailyViewSummary) error {
	summary.Touch(r.now())
	return r.db.WithContext(ctx).Create(summary).Error
}

// UpdateCount 覆盖已有汇总的浏览数
func (r *SummaryRepository) UpdateCount(ctx context.Context, summary *model.DailyViewSummary, count uint64) error {
	summary.Count = count
	summary.Touch(r.now())
	return r.db.WithContext(ctx).Model(summary).Updates(map[string]interface{}{
		"count":       summary.Count,
		"modified_at": summary.ModifiedAt,
	}).Error
}

// ListByDate 获取某天的全部汇总
func (r *SummaryRepository) ListByDate(ctx context.Context, viewsOn model.Date) ([]*model.DailyViewSummary, error) {
	var summaries []*model.DailyViewSummary
	err := r.db.WithContext(ctx).
		Where("views_on = ?", viewsOn).
		Order("count DESC, entity_type ASC, entity_id ASC").
		Find(&summaries).Error
	return summaries, err
}

// SumTrending 对 views_on >= since 的汇总按实体累加，按总数降序。
// kind 精确匹配，空字符串只匹配未标记的记录。总数相同时按 entity_id 升序。
func (r *SummaryRepository) SumTrending(ctx context.Context, entityType string, since model.Date, kind string) ([]TrendingRow, error) {
	var rows []TrendingRow
	err := r.db.WithContext(ctx).Model(&model.DailyViewSummary{}).
		Select("entity_type, entity_id, kind, SUM(count) AS num_views").
		Where("entity_type = ? AND kind = ? AND views_on >= ?", entityType, kind, since).
		Group("entity_type, entity_id, kind").
		Order("num_views DESC, entity_id ASC").
		Scan(&rows).Error
	return rows, err
}
