package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/velora-market/velora-backend/api/controllers"
	"github.com/velora-market/velora-backend/api/routes"
	"github.com/velora-market/velora-backend/internal/auth"
	"github.com/velora-market/velora-backend/internal/availability"
	"github.com/velora-market/velora-backend/internal/bookings"
	"github.com/velora-market/velora-backend/internal/dashboard"
	"github.com/velora-market/velora-backend/internal/notifications"
	"github.com/velora-market/velora-backend/internal/packages"
	"github.com/velora-market/velora-backend/internal/suppliers"
	"github.com/velora-market/velora-backend/internal/users"
	paymentwebhook "github.com/velora-market/velora-backend/internal/webhooks/payments"
	"github.com/velora-market/velora-backend/pkg/auth/session"
	"github.com/velora-market/velora-backend/pkg/config"
	"github.com/velora-market/velora-backend/pkg/db"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/metrics"
	"github.com/velora-market/velora-backend/pkg/migrate"
	"github.com/velora-market/velora-backend/pkg/outbox"
	"github.com/velora-market/velora-backend/pkg/redis"
)

const paymentWebhookScope = "payment-webhook"

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)
	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	supplierRepo := suppliers.NewRepository(gormDB)
	bookingRepo := bookings.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(gormDB),
		SupplierRepo:   supplierRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	bookingService, err := bookings.NewService(bookingRepo, dbClient, outboxService, bookings.NewCalendarReserver(), logg, bookingMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	supplierService, err := suppliers.NewService(supplierRepo, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier service", err)
		os.Exit(1)
	}

	packageService, err := packages.NewService(packages.NewRepository(gormDB), supplierRepo, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create package service", err)
		os.Exit(1)
	}

	availabilityService, err := availability.NewService(availability.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create availability service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(bookingRepo, redisClient, cfg.Dashboard, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	paymentWebhookService, err := paymentwebhook.NewService(bookingService)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment webhook service", err)
		os.Exit(1)
	}
	paymentWebhookGuard, err := paymentwebhook.NewIdempotencyGuard(redisClient, cfg.Eventing.OutboxIdempotencyTTL, paymentWebhookScope)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment webhook guard", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{
		"db":    dbClient,
		"redis": redisClient,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, redisClient, sessionManager, readiness, routes.Services{
			Auth:                authService,
			Bookings:            bookingService,
			Packages:            packageService,
			Suppliers:           supplierService,
			Availability:        availabilityService,
			Notifications:       notificationService,
			Dashboard:           dashboardService,
			PaymentWebhook:      paymentWebhookService,
			PaymentWebhookGuard: paymentWebhookGuard,
		}),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "error shutting down api server", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
