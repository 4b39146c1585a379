package cron

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/trending/internal/model"
	"github.com/qs3c/trending/internal/pkg/logger"
	"github.com/qs3c/trending/internal/service"
)

// Summarizer 汇总某天的浏览记录
type Summarizer interface {
	Summarize(ctx context.Context, forDate model.Date, viewLog *model.ViewLog) (*service.SummarizeResult, error)
}

type Service struct {
	summarizer  Summarizer
	onRefreshed func()
	loc         *time.Location
	interval    time.Duration
	now         func() time.Time
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// NewService onRefreshed 在每次成功汇总后调用，可为 nil
func NewService(summarizer Summarizer, loc *time.Location, interval time.Duration, onRefreshed func()) *Service {
	if loc == nil {
		loc = time.Local
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Service{
		summarizer:  summarizer,
		onRefreshed: onRefreshed,
		loc:         loc,
		interval:    interval,
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDaily()
	go s.runRefresh()
	logger.L().Info("cron started",
		zap.String("timezone", s.loc.String()),
		zap.Duration("refresh_interval", s.interval),
	)
}

// Stop 停止定时任务，可重复调用
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		logger.L().Info("cron stopped")
	})
}

// runDaily 每天 0 点汇总前一天，保证昨天的数据最终完整
func (s *Service) runDaily() {
	now := s.now()
	timer := time.NewTimer(nextMidnight(now, s.loc).Sub(now))
	defer timer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-timer.C:
			now := s.now()
			yesterday := model.DateOf(now, s.loc).AddDays(-1)
			s.run(yesterday)
			timer.Reset(nextMidnight(now, s.loc).Sub(s.now()))
		}
	}
}

// runRefresh 按固定间隔刷新当天汇总
func (s *Service) runRefresh() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.run(model.DateOf(s.now(), s.loc))
		}
	}
}

func (s *Service) run(date model.Date) {
	if err := s.RunNow(context.Background(), date); err != nil {
		logger.L().Error("scheduled summarize failed", zap.String("date", date.String()), zap.Error(err))
	}
}

// RunNow 立即汇总指定日期（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context, date model.Date) error {
	start := time.Now()
	result, err := s.summarizer.Summarize(ctx, date, nil)
	if err != nil {
		return err
	}

	logger.L().Info("summarize completed",
		zap.String("date", date.String()),
		zap.Int("groups", result.Groups),
		zap.Duration("elapsed", time.Since(start)),
	)
	if s.onRefreshed != nil {
		s.onRefreshed()
	}
	return nil
}

func nextMidnight(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}
