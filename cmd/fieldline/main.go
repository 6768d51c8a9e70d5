package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fieldline-erp/fieldline-erp/internal/app"
	"github.com/fieldline-erp/fieldline-erp/internal/assignment"
	"github.com/fieldline-erp/fieldline-erp/internal/attendance"
	"github.com/fieldline-erp/fieldline-erp/internal/catalog"
	"github.com/fieldline-erp/fieldline-erp/internal/masterdata/employees"
	"github.com/fieldline-erp/fieldline-erp/internal/masterdata/stores"
	"github.com/fieldline-erp/fieldline-erp/internal/observability"
	"github.com/fieldline-erp/fieldline-erp/internal/platform/db"
	"github.com/fieldline-erp/fieldline-erp/internal/sales"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

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
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	catalogRepo := catalog.NewRepository(pool)
	catalogCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL)
	catalogService := catalog.NewService(catalogRepo, catalogCache, logger)

	assignmentRepo := assignment.NewRepository(pool)
	assignmentService := assignment.NewService(assignmentRepo, catalogRepo, logger)

	employeesService := employees.NewService(employees.NewRepository(pool))
	storesService := stores.NewService(stores.NewRepository(pool))
	salesService := sales.NewService(sales.NewRepository(pool), logger)
	attendanceService := attendance.NewService(attendance.NewRepository(pool), logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Metrics:           metrics,
		CatalogHandler:    catalog.NewHandler(logger, catalogService),
		AssignmentHandler: assignment.NewHandler(logger, assignmentService),
		EmployeesHandler:  employees.NewHandler(logger, employeesService),
		StoresHandler:     stores.NewHandler(logger, storesService),
		SalesHandler:      sales.NewHandler(logger, salesService),
		AttendanceHandler: attendance.NewHandler(logger, attendanceService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
