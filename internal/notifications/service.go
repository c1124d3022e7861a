package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/db/models"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/pagination"
)

// Service defines notification list/read operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, supplierID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, supplierID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, supplierID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// ListParams configures pagination for notifications.
type ListParams struct {
	SupplierID uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

// requireSupplier rejects requests that reached the service without a
// resolved supplier, which would otherwise query an empty feed silently.
func requireSupplier(supplierID uuid.UUID) error {
	if supplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if err := requireSupplier(params.SupplierID); err != nil {
		return nil, err
	}

	query := listNotificationsParams{
		SupplierID: params.SupplierID,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	result := &ListResult{Items: rows}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) MarkRead(ctx context.Context, supplierID, notificationID uuid.UUID) error {
	if err := requireSupplier(supplierID); err != nil {
		return err
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, supplierID, notificationID, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	// An already-read notification is a no-op, not an error. Clients retry
	// mark-read freely after reconnects.
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	if err := requireSupplier(supplierID); err != nil {
		return 0, err
	}

	count, err := s.repo.MarkAllRead(ctx, supplierID, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) UnreadCount(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	if err := requireSupplier(supplierID); err != nil {
		return 0, err
	}
	count, err := s.repo.CountUnread(ctx, supplierID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}
