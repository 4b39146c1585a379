package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/trending/config"
	"github.com/qs3c/trending/internal/api"
	"github.com/qs3c/trending/internal/api/handler"
	"github.com/qs3c/trending/internal/database"
	"github.com/qs3c/trending/internal/entity"
	"github.com/qs3c/trending/internal/pkg/cron"
	"github.com/qs3c/trending/internal/pkg/logger"
	"github.com/qs3c/trending/internal/pkg/pubsub"
	"github.com/qs3c/trending/internal/repository"
	"github.com/qs3c/trending/internal/service"
)

var configPath = flag.String("config", "config.yaml", "path to config file")

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
	if err := database.AutoMigrate(db); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}
	zl.Info("database connected", zap.String("driver", cfg.Database.Driver))

	// Redis 可选：未配置时不发布汇总通知
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		zl.Fatal("failed to connect redis", zap.Error(err))
	}

	registry, err := entity.NewRegistryFromConfig(db, cfg.Entities, cfg.Trending)
	if err != nil {
		zl.Fatal("invalid entity config", zap.Error(err))
	}
	if len(registry.Types()) == 0 {
		zl.Warn("no entity types configured, every view will be rejected")
	}

	// 初始化 Repository
	viewRepo := repository.NewViewLogRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	// 初始化 Service
	summaryService := service.NewSummaryService(viewRepo, summaryRepo, service.NewRedisPublisher(rdb), cfg)
	viewService := service.NewViewService(viewRepo, registry, summaryService, cfg)
	trendingService := service.NewTrendingService(summaryRepo, registry, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 其他实例汇总后清空本地榜单缓存
	if rdb != nil {
		subscriber := pubsub.NewSubscriber(rdb)
		go func() {
			err := subscriber.Subscribe(ctx, func(msg *pubsub.SummaryMessage) {
				trendingService.Invalidate()
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("summary subscription stopped", zap.Error(err))
			}
		}()
	}

	cronService := cron.NewService(summaryService, cfg.Trending.Location(), cfg.Trending.RefreshInterval(), trendingService.Invalidate)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(
		handler.NewViewHandler(viewService),
		handler.NewTrendingHandler(trendingService),
		handler.NewSummaryHandler(summaryService, trendingService.Invalidate),
		handler.NewHealthHandler(db),
		cfg,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router.Setup(),
	}

	go func() {
		zl.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	zl.Info("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown failed", zap.Error(err))
	}
	zl.Info("server stopped")
}
