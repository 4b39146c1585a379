package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/trending/config"
	"github.com/qs3c/trending/internal/entity"
	"github.com/qs3c/trending/internal/model"
	"github.com/qs3c/trending/internal/model/dto"
	"github.com/qs3c/trending/internal/pkg/logger"
	"github.com/qs3c/trending/internal/repository"
)

type ViewService struct {
	viewRepo       *repository.ViewLogRepository
	registry       *entity.Registry
	summaryService *SummaryService
	cfg            *config.Config
}

// NewViewService registry 为 nil 时不校验实体类型；summaryService 仅在
// trending.summarize_on_record 打开时使用
func NewViewService(
	viewRepo *repository.ViewLogRepository,
	registry *entity.Registry,
	summaryService *SummaryService,
	cfg *config.Config,
) *ViewService {
	return &ViewService{
		viewRepo:       viewRepo,
		registry:       registry,
		summaryService: summaryService,
		cfg:            cfg,
	}
}

// RecordView 记录会话对实体的一次浏览。
// 同一会话重复浏览同一实体不会新增记录，返回 Recorded=false 且不视为错误。
func (s *ViewService) RecordView(ctx context.Context, sessionKey string, req *dto.RecordViewRequest) (*dto.RecordViewResponse, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" || len(sessionKey) > model.MaxSessionKeyLength {
		return nil, ErrInvalidSessionKey
	}
	if req.EntityType == "" || len(req.EntityType) > model.MaxEntityTypeLength || req.EntityID == 0 {
		return nil, ErrInvalidEntity
	}
	if len(req.Kind) > model.MaxKindLength {
		return nil, ErrInvalidKind
	}
	if s.registry != nil && !s.registry.Has(req.EntityType) {
		return nil, ErrUnknownEntityType
	}

	log := &model.ViewLog{
		SessionKey: sessionKey,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Kind:       req.Kind,
	}

	created, err := s.viewRepo.CreateIfAbsent(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("failed to record view: %w", err)
	}

	if created && s.summaryService != nil && s.cfg.Trending.SummarizeOnRecord {
		s.resummarize(ctx, log)
	}

	return &dto.RecordViewResponse{
		Recorded:   created,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Kind:       req.Kind,
	}, nil
}

// HasViewed 会话是否已浏览过实体
func (s *ViewService) HasViewed(ctx context.Context, sessionKey string, ref model.EntityRef) (bool, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" || len(sessionKey) > model.MaxSessionKeyLength {
		return false, ErrInvalidSessionKey
	}
	if ref.EntityType == "" || ref.EntityID == 0 {
		return false, ErrInvalidEntity
	}
	if s.registry != nil && !s.registry.Has(ref.EntityType) {
		return false, ErrUnknownEntityType
	}

	viewed, err := s.viewRepo.Exists(ctx, sessionKey, ref)
	if err != nil {
		return false, fmt.Errorf("failed to check view: %w", err)
	}
	return viewed, nil
}

// resummarize 只针对该实体刷新当天汇总；失败时交给定时任务兜底
func (s *ViewService) resummarize(ctx context.Context, log *model.ViewLog) {
	day := model.DateOf(log.CreatedAt, s.cfg.Trending.Location())
	if _, err := s.summaryService.Summarize(ctx, day, log); err != nil {
		logger.L().Warn("failed to resummarize after recording view",
			zap.String("entity_type", log.EntityType),
			zap.Uint64("entity_id", log.EntityID),
			zap.Time("created_at", log.CreatedAt),
			zap.Error(err),
		)
	}
}

// nowIn 当前时间在配置时区下的日期，用于推算"今天"
func nowIn(now func() time.Time, cfg *config.Config) model.Date {
	return model.DateOf(now(), cfg.Trending.Location())
}
