package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/velora-market/velora-backend/internal/dashboard"
	"github.com/velora-market/velora-backend/pkg/logger"
)

// ProjectionRefreshJobParams configure the dashboard refresh sweep.
type ProjectionRefreshJobParams struct {
	Logger    *logger.Logger
	Suppliers supplierSource
	Dashboard dashboardProjector
}

type supplierSource interface {
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type dashboardProjector interface {
	Rebuild(ctx context.Context, supplierID uuid.UUID) (*dashboard.Projection, error)
}

// NewProjectionRefreshJob constructs the dashboard projection sweep.
func NewProjectionRefreshJob(params ProjectionRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Suppliers == nil {
		return nil, fmt.Errorf("supplier source required")
	}
	if params.Dashboard == nil {
		return nil, fmt.Errorf("dashboard service required")
	}
	return &projectionRefreshJob{
		logg:      params.Logger,
		suppliers: params.Suppliers,
		dashboard: params.Dashboard,
	}, nil
}

type projectionRefreshJob struct {
	logg      *logger.Logger
	suppliers supplierSource
	dashboard dashboardProjector
}

func (j *projectionRefreshJob) Name() string { return "projection-refresh" }

// Run recomputes every active supplier's dashboard projection from Postgres.
// A stale cache entry self-heals here even when an invalidation message was
// lost, so a single supplier failure must not stop the sweep.
func (j *projectionRefreshJob) Run(ctx context.Context) error {
	ids, err := j.suppliers.ListActiveIDs(ctx)
	if err != nil {
		return fmt.Errorf("list active suppliers: %w", err)
	}

	var errs error
	refreshed := 0
	for _, supplierID := range ids {
		if _, err := j.dashboard.Rebuild(ctx, supplierID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("rebuild %s: %w", supplierID, err))
			continue
		}
		refreshed++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"suppliers": len(ids),
		"refreshed": refreshed,
	})
	j.logg.Info(logCtx, "projection refresh sweep complete")
	return errs
}
