package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/trending/config"
	"github.com/qs3c/trending/internal/database"
	"github.com/qs3c/trending/internal/model"
	"github.com/qs3c/trending/internal/pkg/logger"
	"github.com/qs3c/trending/internal/repository"
	"github.com/qs3c/trending/internal/service"
)

var (
	configPath = flag.String("config", "config.yaml", "path to config file")
	date       = flag.String("date", "", "date to summarize (YYYY-MM-DD), defaults to yesterday")
	from       = flag.String("from", "", "first date of a backfill range (YYYY-MM-DD)")
	to         = flag.String("to", "", "last date of a backfill range (YYYY-MM-DD), defaults to today")
	entityType = flag.String("type", "", "only summarize this entity type (requires -id)")
	entityID   = flag.Uint64("id", 0, "only summarize this entity id (requires -type)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.Init(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.Open(&cfg.Database)
	if err != nil {
		zl.Fatal("failed to connect database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}

	// 配置了 Redis 时通知各 API 实例刷新榜单缓存
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		zl.Fatal("failed to connect redis", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	summaryService := service.NewSummaryService(
		repository.NewViewLogRepository(db),
		repository.NewSummaryRepository(db),
		service.NewRedisPublisher(rdb),
		cfg,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	today := summaryService.Today(time.Now())

	if *from != "" {
		start := mustParse(zl, *from)
		end := today
		if *to != "" {
			end = mustParse(zl, *to)
		}
		results, err := summaryService.SummarizeRange(ctx, start, end)
		if err != nil {
			zl.Error("backfill failed", zap.Int("completed_days", len(results)), zap.Error(err))
			os.Exit(1)
		}
		zl.Info("backfill completed", zap.String("from", start.String()), zap.String("to", end.String()), zap.Int("days", len(results)))
		return
	}

	target := today.AddDays(-1)
	if *date != "" {
		target = mustParse(zl, *date)
	}

	var viewLog *model.ViewLog
	if *entityType != "" || *entityID != 0 {
		if *entityType == "" || *entityID == 0 {
			zl.Fatal("-type and -id must be given together")
		}
		viewLog = &model.ViewLog{EntityType: *entityType, EntityID: *entityID}
	}

	result, err := summaryService.Summarize(ctx, target, viewLog)
	if err != nil {
		zl.Error("summarize failed", zap.String("date", target.String()), zap.Error(err))
		os.Exit(1)
	}
	zl.Info("summarize completed",
		zap.String("date", result.Date.String()),
		zap.Int("groups", result.Groups),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
	)
}

func mustParse(zl *zap.Logger, s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		zl.Fatal("invalid date", zap.String("value", s), zap.Error(err))
	}
	return d
}
