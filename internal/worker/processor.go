package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/trending/internal/model/dto"
	"github.com/qs3c/trending/internal/pkg/logger"
	"github.com/qs3c/trending/internal/pkg/queue"
	"github.com/qs3c/trending/internal/service"
)

const popTimeout = 5 * time.Second

// ViewRecorder 写入浏览记录
type ViewRecorder interface {
	RecordView(ctx context.Context, sessionKey string, req *dto.RecordViewRequest) (*dto.RecordViewResponse, error)
}

// Source 浏览事件来源，超时无消息时 Pop 返回 (nil, nil)
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.ViewMessage, error)
	Length(ctx context.Context) (int64, error)
}

// Processor 从队列消费浏览事件
type Processor struct {
	source   Source
	recorder ViewRecorder
}

func NewProcessor(source Source, recorder ViewRecorder) *Processor {
	return &Processor{
		source:   source,
		recorder: recorder,
	}
}

// Process 处理单条事件。校验失败的事件被丢弃，只返回存储错误。
func (p *Processor) Process(ctx context.Context, msg *queue.ViewMessage) error {
	resp, err := p.recorder.RecordView(ctx, msg.SessionKey, &dto.RecordViewRequest{
		EntityType: msg.EntityType,
		EntityID:   msg.EntityID,
		Kind:       msg.Kind,
	})
	if err != nil {
		if isRejected(err) {
			logger.L().Warn("dropped invalid view event",
				zap.String("entity_type", msg.EntityType),
				zap.Uint64("entity_id", msg.EntityID),
				zap.Error(err),
			)
			return nil
		}
		return err
	}

	logger.L().Debug("view event processed",
		zap.String("entity_type", msg.EntityType),
		zap.Uint64("entity_id", msg.EntityID),
		zap.Bool("recorded", resp.Recorded),
	)
	return nil
}

// Run 启动 workers 个消费者，ctx 取消后等待全部退出
func (p *Processor) Run(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}

	if pending, err := p.source.Length(ctx); err != nil {
		logger.L().Warn("failed to read view queue backlog", zap.Error(err))
	} else {
		logger.L().Info("view worker starting", zap.Int("workers", workers), zap.Int64("pending", pending))
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.loop(ctx, workerID)
		}(i)
	}
	wg.Wait()
}

func (p *Processor) loop(ctx context.Context, workerID int) {
	l := logger.L().With(zap.Int("worker", workerID))
	for {
		if ctx.Err() != nil {
			l.Info("worker shutting down")
			return
		}

		msg, err := p.source.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.Warn("failed to pop view event", zap.Error(err))
			continue
		}
		if msg == nil {
			continue // 超时，继续等待
		}

		if err := p.Process(ctx, msg); err != nil {
			l.Error("failed to record view event", zap.Error(err))
		}
	}
}

func isRejected(err error) bool {
	return errors.Is(err, service.ErrInvalidSessionKey) ||
		errors.Is(err, service.ErrInvalidEntity) ||
		errors.Is(err, service.ErrInvalidKind) ||
		errors.Is(err, service.ErrUnknownEntityType)
}
