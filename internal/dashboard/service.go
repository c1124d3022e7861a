package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/internal/bookings"
	"github.com/velora-market/velora-backend/pkg/config"
	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/pagination"
	redisclient "github.com/velora-market/velora-backend/pkg/redis"
)

type bookingReader interface {
	CountByStatus(ctx context.Context, supplierID uuid.UUID, status enums.BookingStatus) (int64, error)
	ListSupplierBookings(ctx context.Context, supplierID uuid.UUID, params pagination.Params, filters bookings.ListFilters) ([]models.Booking, error)
	ListUpcoming(ctx context.Context, supplierID uuid.UUID, from time.Time, limit int) ([]models.Booking, error)
}

type projectionCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Publish(ctx context.Context, channel string, payload any) error
	DashboardKey(supplierID string) string
}

// Service computes and caches the supplier dashboard projection.
type Service interface {
	Get(ctx context.Context, supplierID uuid.UUID) (*Projection, error)
	Rebuild(ctx context.Context, supplierID uuid.UUID) (*Projection, error)
	Invalidate(ctx context.Context, supplierID uuid.UUID) error
	Notify(ctx context.Context, supplierID uuid.UUID) error
}

type service struct {
	reader bookingReader
	cache  projectionCache
	cfg    config.DashboardConfig
	logg   *logger.Logger
}

// NewService builds a dashboard service with the provided dependencies.
func NewService(reader bookingReader, cache projectionCache, cfg config.DashboardConfig, logg *logger.Logger) (Service, error) {
	if reader == nil {
		return nil, fmt.Errorf("booking reader required")
	}
	if cache == nil {
		return nil, fmt.Errorf("projection cache required")
	}
	return &service{reader: reader, cache: cache, cfg: cfg, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, supplierID uuid.UUID) (*Projection, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing")
	}

	key := s.cache.DashboardKey(supplierID.String())
	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var projection Projection
		if unmarshalErr := json.Unmarshal([]byte(cached), &projection); unmarshalErr == nil {
			return &projection, nil
		}
		// A corrupt cache entry falls through to a rebuild.
		if s.logg != nil {
			s.logg.Warn(ctx, "discarding unreadable dashboard projection")
		}
	} else if !redisclient.IsNil(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read dashboard cache")
	}

	return s.Rebuild(ctx, supplierID)
}

func (s *service) Rebuild(ctx context.Context, supplierID uuid.UUID) (*Projection, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing")
	}

	pending, err := s.reader.CountByStatus(ctx, supplierID, enums.BookingStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending bookings")
	}
	confirmed, err := s.reader.CountByStatus(ctx, supplierID, enums.BookingStatusConfirmed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count confirmed bookings")
	}

	recentLimit := s.cfg.RecentLimit
	if recentLimit <= 0 {
		recentLimit = 10
	}
	recent, err := s.reader.ListSupplierBookings(ctx, supplierID,
		pagination.Params{Limit: recentLimit}, bookings.ListFilters{})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent bookings")
	}
	recentPage, _ := pagination.TrimPage(recent, recentLimit)

	upcomingLimit := s.cfg.UpcomingLimit
	if upcomingLimit <= 0 {
		upcomingLimit = 10
	}
	upcoming, err := s.reader.ListUpcoming(ctx, supplierID, time.Now(), upcomingLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list upcoming events")
	}

	projection := &Projection{
		SupplierID:     supplierID,
		PendingCount:   pending,
		ConfirmedCount: confirmed,
		RecentBookings: make([]BookingCard, 0, len(recentPage)),
		UpcomingEvents: make([]UpcomingEvent, 0, len(upcoming)),
		GeneratedAt:    time.Now().UTC(),
	}
	for _, row := range recentPage {
		projection.RecentBookings = append(projection.RecentBookings, newBookingCard(row))
	}
	for _, row := range upcoming {
		projection.UpcomingEvents = append(projection.UpcomingEvents, newUpcomingEvent(row))
	}

	encoded, err := json.Marshal(projection)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode projection")
	}
	if err := s.cache.Set(ctx, s.cache.DashboardKey(supplierID.String()), string(encoded), s.cfg.ProjectionTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache projection")
	}
	return projection, nil
}

func (s *service) Invalidate(ctx context.Context, supplierID uuid.UUID) error {
	if supplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if err := s.cache.Del(ctx, s.cache.DashboardKey(supplierID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drop projection")
	}
	return s.Notify(ctx, supplierID)
}

// Notify tells connected dashboard streams that fresh data is available. The
// cached projection is left in place.
func (s *service) Notify(ctx context.Context, supplierID uuid.UUID) error {
	if supplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if err := s.cache.Publish(ctx, redisclient.DashboardInvalidationChannel, supplierID.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish invalidation")
	}
	return nil
}
