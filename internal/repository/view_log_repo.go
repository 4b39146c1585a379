package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/trending/internal/model"
)

// ViewGroup 按 (实体类型, 实体ID, kind) 分组后的浏览数
type ViewGroup struct {
	EntityType string
	EntityID   uint64
	Kind       string
	NumViews   int64
}

type ViewLogRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewViewLogRepository(db *gorm.DB) *ViewLogRepository {
	return &ViewLogRepository{db: db, now: time.Now}
}

// WithClock 替换写入时使用的时钟
func (r *ViewLogRepository) WithClock(now func() time.Time) *ViewLogRepository {
	r.now = now
	return r
}

// CreateIfAbsent 写入浏览记录，(session_key, entity_type, entity_id) 已存在时忽略。
// 返回是否真正插入了新行。
func (r *ViewLogRepository) CreateIfAbsent(ctx context.Context, log *model.ViewLog) (bool, error) {
	log.Touch(r.now())

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "session_key"},
				{Name: "entity_type"},
				{Name: "entity_id"},
			},
			DoNothing: true,
		}).
		Create(log)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Exists 检查会话是否已浏览过该实体
func (r *ViewLogRepository) Exists(ctx context.Context, sessionKey string, ref model.EntityRef) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ViewLog{}).
		Where("session_key = ? AND entity_type = ? AND entity_id = ?", sessionKey, ref.EntityType, ref.EntityID).
		Count(&count).Error
	return count > 0, err
}

// CountByGroup 统计 [start, end) 内创建的浏览记录，按实体和 kind 分组。
// ref 非空时只统计该实体。结果按 (entity_type, entity_id, kind) 排序。
func (r *ViewLogRepository) CountByGroup(ctx context.Context, start, end time.Time, ref *model.EntityRef) ([]ViewGroup, error) {
	query := r.db.WithContext(ctx).Model(&model.ViewLog{}).
		Select("entity_type, entity_id, kind, COUNT(*) AS num_views").
		Where("created_at >= ? AND created_at < ?", start.UTC(), end.UTC())

	if ref != nil {
		query = query.Where("entity_type = ? AND entity_id = ?", ref.EntityType, ref.EntityID)
	}

	var groups []ViewGroup
	err := query.
		Group("entity_type, entity_id, kind").
		Order("entity_type ASC, entity_id ASC, kind ASC").
		Scan(&groups).Error
	return groups, err
}
