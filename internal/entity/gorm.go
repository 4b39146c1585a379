package entity

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// TableResolver 不依赖具体模型，按表名和主键列读取一行为 map
type TableResolver struct {
	db    *gorm.DB
	table string
	key   string
}

func NewTableResolver(db *gorm.DB, table, key string) *TableResolver {
	if key == "" {
		key = "id"
	}
	return &TableResolver{db: db, table: table, key: key}
}

func (r *TableResolver) Resolve(ctx context.Context, id uint64) (any, error) {
	row := map[string]interface{}{}
	err := r.db.WithContext(ctx).
		Table(r.table).
		Where(fmt.Sprintf("%s = ?", r.key), id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row, nil
}

// Exists 只查主键是否还在
func (r *TableResolver) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table(r.table).
		Where(fmt.Sprintf("%s = ?", r.key), id).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
