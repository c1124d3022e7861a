package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/velora-market/velora-backend/internal/bookings"
	"github.com/velora-market/velora-backend/internal/dashboard"
	"github.com/velora-market/velora-backend/internal/notifications"
	"github.com/velora-market/velora-backend/pkg/config"
	"github.com/velora-market/velora-backend/pkg/db"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/migrate"
	"github.com/velora-market/velora-backend/pkg/outbox/idempotency"
	"github.com/velora-market/velora-backend/pkg/pubsub"
	"github.com/velora-market/velora-backend/pkg/redis"
)

const serviceName = "velora-worker"

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, "no .env file loaded")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	gormDB := dbClient.DB()
	bookingRepo := bookings.NewRepository(gormDB)

	dashboardService, err := dashboard.NewService(bookingRepo, redisClient, cfg.Dashboard, logg)
	requireResource(ctx, logg, "dashboard service", err)

	dashboardSub := pubsubClient.DashboardSubscription()
	if dashboardSub == nil {
		requireResource(ctx, logg, "dashboard subscription", errors.New("subscription not configured"))
	}
	dashboardConsumer, err := dashboard.NewConsumer(dashboardService, dashboardSub, manager, logg)
	requireResource(ctx, logg, "dashboard consumer", err)

	notificationSub := pubsubClient.NotificationSubscription()
	if notificationSub == nil {
		requireResource(ctx, logg, "notification subscription", errors.New("subscription not configured"))
	}
	notificationConsumer, err := notifications.NewConsumer(notifications.NewRepository(gormDB), notificationSub, manager, logg)
	requireResource(ctx, logg, "notification consumer", err)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	runCtx = logg.WithField(runCtx, "env", cfg.App.Env)
	logg.Info(runCtx, "worker ready")

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error { return dashboardConsumer.Run(groupCtx) })
	group.Go(func() error { return notificationConsumer.Run(groupCtx) })

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "worker shutting down")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
