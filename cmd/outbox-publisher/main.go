package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/velora-market/velora-backend/pkg/config"
	"github.com/velora-market/velora-backend/pkg/db"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/migrate"
	"github.com/velora-market/velora-backend/pkg/outbox"
	"github.com/velora-market/velora-backend/pkg/outbox/registry"
	"github.com/velora-market/velora-backend/pkg/pubsub"
)

const serviceName = "velora-outbox-publisher"

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, "no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(ctx, "failed to connect to database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "dev migrations failed", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to create pubsub client", err)
		os.Exit(1)
	}
	defer pubsubClient.Close()

	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		logg.Error(ctx, "failed to build event registry", err)
		os.Exit(1)
	}

	svc, err := NewService(ServiceParams{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		PubSub:        pubsubClient,
		Repository:    outbox.NewRepository(dbClient.DB()),
		DLQRepository: outbox.NewDLQRepository(dbClient.DB()),
		Registry:      eventRegistry,
	})
	if err != nil {
		logg.Error(ctx, "failed to build outbox publisher", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	logg.Info(runCtx, "outbox publisher starting")
	if err := svc.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "outbox publisher stopped", err)
		os.Exit(1)
	}
	logg.Info(ctx, "outbox publisher stopped")
}
