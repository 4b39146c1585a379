package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/qs3c/trending/config"
	"github.com/qs3c/trending/internal/database"
	"github.com/qs3c/trending/internal/entity"
	"github.com/qs3c/trending/internal/pkg/logger"
	"github.com/qs3c/trending/internal/pkg/pubsub"
	"github.com/qs3c/trending/internal/pkg/queue"
	"github.com/qs3c/trending/internal/repository"
	"github.com/qs3c/trending/internal/service"
	"github.com/qs3c/trending/internal/worker"
)

var configPath = flag.String("config", "config.yaml", "path to config file")

// worker 从 redis 队列读取浏览事件并写入 view_logs，
// 供不方便直接调用 HTTP 接口的服务端埋点使用
func main() {
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.Init(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zl.Sync()

	// 初始化数据库
	db, err := database.Open(&cfg.Database)
	if err != nil {
		zl.Fatal("failed to connect database", zap.Error(err))
	}

	// worker 依赖 redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		zl.Fatal("failed to connect redis", zap.Error(err))
	}
	if rdb == nil {
		zl.Fatal("redis is not configured")
	}

	registry, err := entity.NewRegistryFromConfig(db, cfg.Entities, cfg.Trending)
	if err != nil {
		zl.Fatal("invalid entity config", zap.Error(err))
	}

	viewRepo := repository.NewViewLogRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	summaryService := service.NewSummaryService(viewRepo, summaryRepo, pubsub.NewPublisher(rdb), cfg)
	viewService := service.NewViewService(viewRepo, registry, summaryService, cfg)

	viewQueue := queue.NewQueue(rdb, cfg.Queue.ViewQueue)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		zl.Info("received shutdown signal")
		cancel()
	}()

	processor := worker.NewProcessor(viewQueue, viewService)

	zl.Info("worker started", zap.Int("workers", cfg.Queue.MaxWorkers), zap.String("queue", cfg.Queue.ViewQueue))
	processor.Run(ctx, cfg.Queue.MaxWorkers)
	zl.Info("worker shutdown complete")
}
