package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/mesa-hq/mesa/internal/app"
	"github.com/mesa-hq/mesa/internal/audit"
	jobmetrics "github.com/mesa-hq/mesa/internal/jobs"
	"github.com/mesa-hq/mesa/internal/menu"
	"github.com/mesa-hq/mesa/internal/platform/cache"
	"github.com/mesa-hq/mesa/internal/platform/db"
	"github.com/mesa-hq/mesa/internal/reservations"
	"github.com/mesa-hq/mesa/internal/restaurant"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)

	auditRepo := audit.NewRepository(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)
	cleanupJob := jobs.NewAuditCleanupJob(auditRepo, idempotencyStore, logger, metrics, cfg.AuditRetention)

	reservationRepo := reservations.NewRepository(pool)
	reminderJob := jobs.NewReservationReminderJob(reservationRepo, logger, metrics, cfg.ReminderLookAhead)

	restaurantRepo := restaurant.NewRepository(pool)
	menuRepo := menu.NewRepository(pool)
	publicMenuService := menu.NewPublicService(restaurantRepo, menuRepo, redisClient, cfg.PublicMenuCacheTTL, logger)
	warmupJob := jobs.NewMenuWarmupJob(restaurantRepo, publicMenuService, logger, metrics)

	cleanupTask, err := jobs.NewAuditCleanupTask(jobs.AuditCleanupPayload{Retention: cfg.AuditRetention})
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}
	reminderTask, err := jobs.NewReservationRemindersTask(jobs.ReservationRemindersPayload{})
	if err != nil {
		logger.Error("build reminder task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewMenuWarmupTask(jobs.MenuWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAuditCleanup, Handler: cleanupJob.Handle},
			{Type: jobs.TaskReservationReminders, Handler: reminderJob.Handle},
			{Type: jobs.TaskMenuWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "*/30 * * * *", Task: reminderTask, Options: []asynq.Option{asynq.MaxRetry(2)}},
			{Spec: "15 4 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
