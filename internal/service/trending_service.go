package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/qs3c/trending/config"
	"github.com/qs3c/trending/internal/entity"
	"github.com/qs3c/trending/internal/model"
	"github.com/qs3c/trending/internal/model/dto"
	"github.com/qs3c/trending/internal/pkg/logger"
	"github.com/qs3c/trending/internal/repository"
)

// MaxDays 回溯窗口上限
const MaxDays = 3650

type TrendingService struct {
	summaryRepo *repository.SummaryRepository
	registry    *entity.Registry
	cache       *cache.Cache
	group       singleflight.Group
	cfg         *config.Config
	now         func() time.Time
}

// NewTrendingService trending.cache_ttl_seconds 为 0 时不缓存结果
func NewTrendingService(
	summaryRepo *repository.SummaryRepository,
	registry *entity.Registry,
	cfg *config.Config,
) *TrendingService {
	s := &TrendingService{
		summaryRepo: summaryRepo,
		registry:    registry,
		cfg:         cfg,
		now:         time.Now,
	}
	if ttl := cfg.Trending.CacheTTL(); ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// WithClock 替换"今天"的来源
func (s *TrendingService) WithClock(now func() time.Time) *TrendingService {
	s.now = now
	return s
}

// DefaultDays 未指定回溯天数时使用的窗口
func (s *TrendingService) DefaultDays() int {
	return s.cfg.Trending.Days()
}

// Trending 返回 entityType 在最近 days 天（含 today-days 当天）内的浏览排行。
// kind 精确匹配，空字符串表示只统计未标记 kind 的记录。
// 每一行附带解析出的对象，解析失败或对象已删除时为 nil，不影响整体结果。
func (s *TrendingService) Trending(ctx context.Context, entityType string, days int, kind string) ([]*dto.TrendingItem, error) {
	if entityType == "" {
		return nil, ErrInvalidEntity
	}
	if days < 0 || days > MaxDays {
		return nil, ErrInvalidDays
	}
	if len(kind) > model.MaxKindLength {
		return nil, ErrInvalidKind
	}
	if s.registry != nil && !s.registry.Has(entityType) {
		return nil, ErrUnknownEntityType
	}

	since := nowIn(s.now, s.cfg).AddDays(-days)
	key := fmt.Sprintf("%s|%s|%s", entityType, since, kind)

	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return copyItems(cached.([]*dto.TrendingItem)), nil
		}
	}

	// 共享查询不跟随任何一个调用方的取消，每个调用方只等待自己的 ctx
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		items, err := s.query(shared, entityType, since, kind)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.SetDefault(key, items)
		}
		return items, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return copyItems(res.Val.([]*dto.TrendingItem)), nil
	}
}

// Invalidate 清空结果缓存和实体解析缓存，汇总刷新后调用
func (s *TrendingService) Invalidate() {
	if s.cache != nil {
		s.cache.Flush()
	}
	if s.registry != nil {
		s.registry.Purge()
	}
}

func (s *TrendingService) query(ctx context.Context, entityType string, since model.Date, kind string) ([]*dto.TrendingItem, error) {
	rows, err := s.summaryRepo.SumTrending(ctx, entityType, since, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query trending %s: %w", entityType, err)
	}

	items := make([]*dto.TrendingItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, &dto.TrendingItem{
			EntityType: row.EntityType,
			EntityID:   row.EntityID,
			Kind:       row.Kind,
			NumViews:   row.NumViews,
			Object:     s.resolve(ctx, model.EntityRef{EntityType: row.EntityType, EntityID: row.EntityID}),
		})
	}
	return items, nil
}

func (s *TrendingService) resolve(ctx context.Context, ref model.EntityRef) interface{} {
	if s.registry == nil {
		return nil
	}

	obj, err := s.registry.Resolve(ctx, ref)
	if err != nil {
		if !errors.Is(err, entity.ErrNotFound) {
			logger.L().Warn("failed to resolve trending entity",
				zap.String("entity_type", ref.EntityType),
				zap.Uint64("entity_id", ref.EntityID),
				zap.Error(err),
			)
		}
		return nil
	}
	return obj
}

func copyItems(items []*dto.TrendingItem) []*dto.TrendingItem {
	out := make([]*dto.TrendingItem, len(items))
	copy(out, items)
	return out
}
