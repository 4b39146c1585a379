package model

const (
	MaxSessionKeyLength = 40
	MaxKindLength       = 50
	MaxEntityTypeLength = 100
)

// EntityRef 多态引用：实体类型 + 主键，指向任意被统计的对象
type EntityRef struct {
	EntityType string `json:"entity_type"`
	EntityID   uint64 `json:"entity_id"`
}

// ViewLog 一次会话对某个实体的浏览，同一会话对同一实体只记录一行
type ViewLog struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	SessionKey string `gorm:"size:40;not null;uniqueIndex:uk_view_logs_session_entity,priority:1" json:"session_key"`
	EntityType string `gorm:"size:100;not null;uniqueIndex:uk_view_logs_session_entity,priority:2" json:"entity_type"`
	EntityID   uint64 `gorm:"not null;uniqueIndex:uk_view_logs_session_entity,priority:3" json:"entity_id"`
	Kind       string `gorm:"size:50;not null;default:''" json:"kind"`
	AuditedRecord
}

func (ViewLog) TableName() string {
	return "view_logs"
}

func (v *ViewLog) Ref() EntityRef {
	return EntityRef{EntityType: v.EntityType, EntityID: v.EntityID}
}

// DailyViewSummary 按天汇总的浏览数。
// 唯一键不含 kind：同一实体同一天只会有一行。
type DailyViewSummary struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	ViewsOn    Date   `gorm:"not null;uniqueIndex:uk_daily_view_summaries_day_entity,priority:1" json:"views_on"`
	Count      uint64 `gorm:"column:count;not null;default:0" json:"count"`
	EntityType string `gorm:"size:100;not null;uniqueIndex:uk_daily_view_summaries_day_entity,priority:2;index:idx_daily_view_summaries_type_kind,priority:1" json:"entity_type"`
	EntityID   uint64 `gorm:"not null;uniqueIndex:uk_daily_view_summaries_day_entity,priority:3" json:"entity_id"`
	Kind       string `gorm:"size:50;not null;default:'';index:idx_daily_view_summaries_type_kind,priority:2" json:"kind"`
	AuditedRecord
}

func (DailyViewSummary) TableName() string {
	return "daily_view_summaries"
}

func (s *DailyViewSummary) Ref() EntityRef {
	return EntityRef{EntityType: s.EntityType, EntityID: s.EntityID}
}
