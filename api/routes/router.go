package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/velora-market/velora-backend/api/controllers"
	webhookcontrollers "github.com/velora-market/velora-backend/api/controllers/webhooks"
	"github.com/velora-market/velora-backend/api/middleware"
	"github.com/velora-market/velora-backend/internal/auth"
	"github.com/velora-market/velora-backend/internal/availability"
	"github.com/velora-market/velora-backend/internal/bookings"
	"github.com/velora-market/velora-backend/internal/dashboard"
	"github.com/velora-market/velora-backend/internal/notifications"
	"github.com/velora-market/velora-backend/internal/packages"
	"github.com/velora-market/velora-backend/internal/suppliers"
	paymentwebhook "github.com/velora-market/velora-backend/internal/webhooks/payments"
	"github.com/velora-market/velora-backend/pkg/auth/session"
	"github.com/velora-market/velora-backend/pkg/config"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/redis"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Auth          auth.Service
	Bookings      bookings.Service
	Packages      packages.Service
	Suppliers     suppliers.Service
	Availability  availability.Service
	Notifications notifications.Service
	Dashboard     dashboard.Service

	PaymentWebhook      *paymentwebhook.Service
	PaymentWebhookGuard *paymentwebhook.IdempotencyGuard
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	readiness map[string]controllers.Pinger,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payments", webhookcontrollers.PaymentWebhook(svcs.PaymentWebhook, cfg.PaymentIntake, svcs.PaymentWebhookGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1/supplier", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.SupplierContext(logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", controllers.ListBookings(svcs.Bookings, logg))
			r.Get("/{bookingID}", controllers.GetBookingDetail(svcs.Bookings, logg))
			r.Post("/{bookingID}/confirm", controllers.ConfirmBooking(svcs.Bookings, logg))
			r.Post("/{bookingID}/reject", controllers.RejectBooking(svcs.Bookings, logg))
			r.Post("/{bookingID}/start", controllers.StartBooking(svcs.Bookings, logg))
			r.Post("/{bookingID}/complete", controllers.CompleteBooking(svcs.Bookings, logg))
			r.Post("/{bookingID}/cancel", controllers.CancelBooking(svcs.Bookings, logg))
			r.Patch("/{bookingID}/notes", controllers.UpdateBookingNotes(svcs.Bookings, logg))
		})

		r.Route("/packages", func(r chi.Router) {
			r.Get("/", controllers.ListPackages(svcs.Packages, logg))
			r.Post("/", controllers.CreatePackage(svcs.Packages, logg))
			r.Get("/{packageID}", controllers.GetPackage(svcs.Packages, logg))
			r.Patch("/{packageID}", controllers.UpdatePackage(svcs.Packages, logg))
			r.Delete("/{packageID}", controllers.ArchivePackage(svcs.Packages, logg))
		})

		r.Route("/me", func(r chi.Router) {
			r.Get("/", controllers.GetSupplierProfile(svcs.Suppliers, logg))
			r.Put("/", controllers.UpdateSupplierProfile(svcs.Suppliers, logg))
			r.Post("/accepting-bookings", controllers.SetAcceptingBookings(svcs.Suppliers, logg))
			r.Post("/account-status", controllers.SetSupplierAccountStatus(svcs.Suppliers, logg))
		})

		r.Route("/availability", func(r chi.Router) {
			r.Get("/", controllers.ListAvailability(svcs.Availability, logg))
			r.Post("/", controllers.CreateBlockedDate(svcs.Availability, logg))
			r.Delete("/{entryID}", controllers.DeleteBlockedDate(svcs.Availability, logg))
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", controllers.GetDashboard(svcs.Dashboard, logg))
			r.Get("/stream", controllers.StreamDashboard(svcs.Dashboard, redisClient, cfg.Dashboard, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(svcs.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})
	})

	return r
}
