package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/velora-market/velora-backend/internal/analytics"
	"github.com/velora-market/velora-backend/pkg/bigquery"
	"github.com/velora-market/velora-backend/pkg/config"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/outbox/idempotency"
	"github.com/velora-market/velora-backend/pkg/pubsub"
	"github.com/velora-market/velora-backend/pkg/redis"
)

const serviceName = "velora-analytics-worker"

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

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer closeQuietly(ctx, logg, "redis client", redisClient.Close)

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer closeQuietly(ctx, logg, "pubsub client", pubsubClient.Close)

	bqClient, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
	requireResource(ctx, logg, "bigquery client", err)
	defer closeQuietly(ctx, logg, "bigquery client", bqClient.Close)

	subscription := pubsubClient.AnalyticsSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "analytics subscription", errors.New("subscription not configured"))
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	consumer, err := analytics.NewConsumer(bqClient, cfg.BigQuery.BookingEventsTable, manager, logg)
	requireResource(ctx, logg, "analytics consumer", err)
	consumer = consumer.WithSubscription(subscription)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	runCtx = logg.WithField(runCtx, "env", cfg.App.Env)
	logg.Info(runCtx, "analytics worker ready")

	if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "analytics worker failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "analytics worker shutting down")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

func closeQuietly(ctx context.Context, logg *logger.Logger, name string, close func() error) {
	if err := close(); err != nil {
		logg.Error(ctx, "failed to close "+name, err)
	}
}
