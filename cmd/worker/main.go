package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/fieldline-erp/fieldline-erp/internal/app"
	"github.com/fieldline-erp/fieldline-erp/internal/catalog"
	jobmetrics "github.com/fieldline-erp/fieldline-erp/internal/jobs"
	"github.com/fieldline-erp/fieldline-erp/internal/platform/db"
	"github.com/fieldline-erp/fieldline-erp/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		_ = redisClient.Close()
	}()

	catalogService := catalog.NewService(
		catalog.NewRepository(pool),
		catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		logger,
	)
	catalogTasks := jobs.CatalogTaskDeps{
		Service: catalogService,
		Logger:  logger,
		Metrics: jobmetrics.NewMetrics(nil),
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCatalogCacheWarm, Handler: catalogTasks.HandleCacheWarm},
			{Type: jobs.TaskCatalogIntegrityScan, Handler: catalogTasks.HandleIntegrityScan},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/15 * * * *", Task: jobs.NewCatalogCacheWarmTask()},
			{Spec: "0 3 * * *", Task: jobs.NewCatalogIntegrityScanTask()},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
