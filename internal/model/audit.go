package model

import "time"

// AuditedRecord 审计时间戳，嵌入到需要记录创建/修改时间的表中
type AuditedRecord struct {
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
	ModifiedAt time.Time `gorm:"not null" json:"modified_at"`
}

// Touch 由写入路径显式调用：首次写入同时设置两个时间，之后只刷新 ModifiedAt
func (a *AuditedRecord) Touch(now time.Time) {
	now = now.UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
		a.ModifiedAt = now
		return
	}
	a.ModifiedAt = now
}
