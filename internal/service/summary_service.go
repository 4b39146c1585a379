package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/trending/config"
	"github.com/qs3c/trending/internal/model"
	"github.com/qs3c/trending/internal/pkg/logger"
	"github.com/qs3c/trending/internal/pkg/pubsub"
	"github.com/qs3c/trending/internal/repository"
)

// SummaryPublisher 汇总完成后的通知出口
type SummaryPublisher interface {
	PublishSummarized(ctx context.Context, msg *pubsub.SummaryMessage) error
}

// NewRedisPublisher 未配置 Redis 时返回 nil，汇总照常进行但不发通知
func NewRedisPublisher(rdb *redis.Client) SummaryPublisher {
	if rdb == nil {
		return nil
	}
	return pubsub.NewPublisher(rdb)
}

// SummarizeResult 一次汇总的统计
type SummarizeResult struct {
	Date    model.Date
	Groups  int
	Created int
	Updated int
}

type SummaryService struct {
	viewRepo    *repository.ViewLogRepository
	summaryRepo *repository.SummaryRepository
	publisher   SummaryPublisher
	cfg         *config.Config
}

func NewSummaryService(
	viewRepo *repository.ViewLogRepository,
	summaryRepo *repository.SummaryRepository,
	publisher SummaryPublisher,
	cfg *config.Config,
) *SummaryService {
	return &SummaryService{
		viewRepo:    viewRepo,
		summaryRepo: summaryRepo,
		publisher:   publisher,
		cfg:         cfg,
	}
}

// Summarize 把 forDate 当天创建的浏览记录按 (实体, kind) 计数并写入日汇总。
// viewLog 非空时只重新汇总该记录所指的实体。
//
// 汇总行以 (日期, 实体) 为键，不含 kind：已存在的行会被当前分组的计数覆盖，
// 同一实体当天有多个 kind 时，最终保留的是最后处理的分组（按 kind 升序）。
// 存储层错误直接返回，不做重试，重复执行即可恢复。
func (s *SummaryService) Summarize(ctx context.Context, forDate model.Date, viewLog *model.ViewLog) (*SummarizeResult, error) {
	loc := s.cfg.Trending.Location()
	start := forDate.Start(loc)
	end := forDate.AddDays(1).Start(loc)

	var ref *model.EntityRef
	if viewLog != nil {
		r := viewLog.Ref()
		ref = &r
	}

	groups, err := s.viewRepo.CountByGroup(ctx, start, end, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to count view logs for %s: %w", forDate, err)
	}

	result := &SummarizeResult{Date: forDate, Groups: len(groups)}
	for _, g := range groups {
		key := model.EntityRef{EntityType: g.EntityType, EntityID: g.EntityID}
		count := uint64(g.NumViews)

		summary, err := s.summaryRepo.GetByKey(ctx, forDate, key)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to load summary %s %s/%d: %w", forDate, g.EntityType, g.EntityID, err)
			}

			summary = &model.DailyViewSummary{
				ViewsOn:    forDate,
				Count:      count,
				EntityType: g.EntityType,
				EntityID:   g.EntityID,
				Kind:       g.Kind,
			}
			if err := s.summaryRepo.Create(ctx, summary); err != nil {
				return nil, fmt.Errorf("failed to create summary %s %s/%d: %w", forDate, g.EntityType, g.EntityID, err)
			}
			result.Created++
			continue
		}

		if err := s.summaryRepo.UpdateCount(ctx, summary, count); err != nil {
			return nil, fmt.Errorf("failed to update summary %s %s/%d: %w", forDate, g.EntityType, g.EntityID, err)
		}
		result.Updated++
	}

	logger.L().Info("summarized daily views",
		zap.String("date", forDate.String()),
		zap.Int("groups", result.Groups),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
	)

	s.publish(ctx, result, ref)
	return result, nil
}

// SummarizeRange 依次汇总 [from, to] 内的每一天，用于补数
func (s *SummaryService) SummarizeRange(ctx context.Context, from, to model.Date) ([]*SummarizeResult, error) {
	if to.Before(from) {
		return nil, ErrInvalidDateRange
	}

	var results []*SummarizeResult
	for d := from; !to.Before(d); d = d.AddDays(1) {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := s.Summarize(ctx, d, nil)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// ListByDate 获取某天的汇总
func (s *SummaryService) ListByDate(ctx context.Context, viewsOn model.Date) ([]*model.DailyViewSummary, error) {
	return s.summaryRepo.ListByDate(ctx, viewsOn)
}

// Today 配置时区下的今天
func (s *SummaryService) Today(now time.Time) model.Date {
	return model.DateOf(now, s.cfg.Trending.Location())
}

func (s *SummaryService) publish(ctx context.Context, result *SummarizeResult, ref *model.EntityRef) {
	if s.publisher == nil || result.Groups == 0 {
		return
	}

	msg := &pubsub.SummaryMessage{
		Date:   result.Date.String(),
		Groups: result.Groups,
	}
	if ref != nil {
		msg.EntityType = ref.EntityType
		msg.EntityID = ref.EntityID
	}

	// 通知失败不影响汇总结果，缓存最多晚一个 TTL 刷新
	if err := s.publisher.PublishSummarized(ctx, msg); err != nil {
		logger.L().Warn("failed to publish summary notification",
			zap.String("date", msg.Date),
			zap.Error(err),
		)
	}
}
