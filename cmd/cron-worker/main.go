package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/velora-market/velora-backend/internal/availability"
	"github.com/velora-market/velora-backend/internal/bookings"
	"github.com/velora-market/velora-backend/internal/cron"
	"github.com/velora-market/velora-backend/internal/dashboard"
	"github.com/velora-market/velora-backend/internal/notifications"
	"github.com/velora-market/velora-backend/internal/suppliers"
	"github.com/velora-market/velora-backend/pkg/config"
	"github.com/velora-market/velora-backend/pkg/db"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/metrics"
	"github.com/velora-market/velora-backend/pkg/migrate"
	"github.com/velora-market/velora-backend/pkg/outbox"
	"github.com/velora-market/velora-backend/pkg/redis"
)

const serviceName = "velora-cron-worker"

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	mustInit(ctx, logg, "load config", err)

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	mustInit(ctx, logg, "bootstrap database", err)
	defer closeQuietly(ctx, logg, "database", dbClient.Close)

	mustInit(ctx, logg, "run dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	mustInit(ctx, logg, "bootstrap redis", err)
	defer closeQuietly(ctx, logg, "redis", redisClient.Close)

	gormDB := dbClient.DB()
	bookingRepo := bookings.NewRepository(gormDB)
	supplierRepo := suppliers.NewRepository(gormDB)
	availabilityRepo := availability.NewRepository(gormDB)
	notificationRepo := notifications.NewRepository(gormDB)
	outboxRepo := outbox.NewRepository(gormDB)

	dashboardService, err := dashboard.NewService(bookingRepo, redisClient, cfg.Dashboard, logg)
	mustInit(ctx, logg, "create dashboard service", err)

	projectionJob, err := cron.NewProjectionRefreshJob(cron.ProjectionRefreshJobParams{
		Logger:    logg,
		Suppliers: supplierRepo,
		Dashboard: dashboardService,
	})
	mustInit(ctx, logg, "create projection refresh job", err)

	reconcileJob, err := cron.NewAvailabilityReconcileJob(cron.AvailabilityReconcileJobParams{
		Logger:      logg,
		DB:          dbClient,
		Bookings:    bookingRepo,
		Calendar:    availabilityRepo,
		HorizonDays: cfg.Cron.ReconcileHorizonDays,
	})
	mustInit(ctx, logg, "create availability reconcile job", err)

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		Repository: outboxRepo,
		Retention:  cfg.Cron.OutboxRetentionDays,
	})
	mustInit(ctx, logg, "create outbox retention job", err)

	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		Repository: notificationRepo,
		Retention:  cfg.Cron.NotificationRetentionDays,
	})
	mustInit(ctx, logg, "create notification cleanup job", err)

	lock, err := cron.NewRedisLock(redisClient, redisClient.CronLockKey("worker"), cfg.Cron.LockTTL)
	mustInit(ctx, logg, "create cron lock", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(projectionJob, reconcileJob, retentionJob, cleanupJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	mustInit(ctx, logg, "create cron service", err)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	runCtx = logg.WithField(runCtx, "env", cfg.App.Env)
	logg.Info(runCtx, "starting cron worker")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "cron worker shutting down gracefully")
}

func mustInit(ctx context.Context, logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to "+what, err)
	os.Exit(1)
}

func closeQuietly(ctx context.Context, logg *logger.Logger, name string, close func() error) {
	if err := close(); err != nil {
		logg.Error(ctx, "error closing "+name, err)
	}
}
