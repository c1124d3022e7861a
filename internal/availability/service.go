package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
)

type blockedDateRepository interface {
	Create(ctx context.Context, entry *models.BlockedDate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.BlockedDate, error)
	FindBySupplierAndDate(ctx context.Context, supplierID uuid.UUID, date time.Time) ([]models.BlockedDate, error)
	ListRange(ctx context.Context, supplierID uuid.UUID, from, to time.Time) ([]models.BlockedDate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EntryDTO exposes a calendar entry in API responses. Derived entries carry
// the originating booking id.
type EntryDTO struct {
	ID        uuid.UUID             `json:"id"`
	Date      string                `json:"date"`
	Type      enums.BlockedDateType `json:"type"`
	Reason    *string               `json:"reason,omitempty"`
	BookingID *uuid.UUID            `json:"bookingId,omitempty"`
	Manual    bool                  `json:"manual"`
}

// CreateEntryInput captures a manual unavailability entry.
type CreateEntryInput struct {
	Date   time.Time
	Type   enums.BlockedDateType
	Reason *string
}

// Service exposes the supplier availability calendar.
type Service interface {
	List(ctx context.Context, supplierID uuid.UUID, from, to time.Time) ([]EntryDTO, error)
	CreateManual(ctx context.Context, supplierID uuid.UUID, input CreateEntryInput) (*EntryDTO, error)
	DeleteManual(ctx context.Context, supplierID, entryID uuid.UUID) error
}

type service struct {
	repo blockedDateRepository
}

// NewService builds an availability service.
func NewService(repo blockedDateRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("blocked date repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, supplierID uuid.UUID, from, to time.Time) ([]EntryDTO, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing")
	}
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid date range")
	}

	rows, err := s.repo.ListRange(ctx, supplierID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list blocked dates")
	}
	entries := make([]EntryDTO, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, fromModel(row))
	}
	return entries, nil
}

func (s *service) CreateManual(ctx context.Context, supplierID uuid.UUID, input CreateEntryInput) (*EntryDTO, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing")
	}
	if input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date required")
	}
	if !input.Type.IsManual() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only blocked or unavailable entries can be created manually")
	}

	existing, err := s.repo.FindBySupplierAndDate(ctx, supplierID, input.Date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing entries")
	}
	for _, entry := range existing {
		if entry.Type == input.Type {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "date already marked")
		}
	}

	entry := &models.BlockedDate{
		SupplierID: supplierID,
		Date:       input.Date,
		Type:       input.Type,
		Reason:     input.Reason,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create blocked date")
	}
	dto := fromModel(*entry)
	return &dto, nil
}

func (s *service) DeleteManual(ctx context.Context, supplierID, entryID uuid.UUID) error {
	if supplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing")
	}
	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "calendar entry not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load calendar entry")
	}
	if entry.SupplierID != supplierID {
		return pkgerrors.New(pkgerrors.CodePermissionDenied, "entry does not belong to supplier")
	}
	// Reserved and requested entries follow their booking's lifecycle and can
	// only disappear through a booking transition.
	if !entry.Type.IsManual() {
		return pkgerrors.New(pkgerrors.CodeConflict, "booking-derived entries cannot be deleted")
	}

	if err := s.repo.Delete(ctx, entry.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete calendar entry")
	}
	return nil
}

func fromModel(m models.BlockedDate) EntryDTO {
	return EntryDTO{
		ID:        m.ID,
		Date:      m.Date.Format("2006-01-02"),
		Type:      m.Type,
		Reason:    m.Reason,
		BookingID: m.BookingID,
		Manual:    m.Type.IsManual(),
	}
}
