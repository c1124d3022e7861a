package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/enums"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/outbox"
	"github.com/velora-market/velora-backend/pkg/outbox/payloads"

	"github.com/velora-market/velora-backend/pkg/db/models"
)

type supplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	Update(ctx context.Context, supplier *models.Supplier) error
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Supplier, error)
	UpdateWithTx(tx *gorm.DB, supplier *models.Supplier) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes supplier account operations.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*SupplierDTO, error)
	UpdateProfile(ctx context.Context, actor Actor, supplierID uuid.UUID, input UpdateProfileInput) (*SupplierDTO, error)
	SetAcceptingBookings(ctx context.Context, actor Actor, supplierID uuid.UUID, accepting bool) (*SupplierDTO, error)
	SetAccountStatus(ctx context.Context, actor Actor, supplierID uuid.UUID, input StatusInput) (*SupplierDTO, error)
}

// Actor identifies the authenticated user performing a supplier operation.
type Actor struct {
	UserID     uuid.UUID
	SupplierID uuid.UUID
	Role       enums.MemberRole
}

// UpdateProfileInput captures the supplier fields open to mutation. The
// category is locked at onboarding and deliberately absent here.
type UpdateProfileInput struct {
	BusinessName *string
	Description  *string
	Phone        *string
	City         *string
}

// StatusInput moves the supplier account through the verification pipeline.
type StatusInput struct {
	Status enums.AccountStatus
	Reason string
}

type service struct {
	repo   supplierRepository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a supplier service with the provided dependencies.
func NewService(repo supplierRepository, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*SupplierDTO, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return FromModel(supplier), nil
}

func (s *service) authorize(actor Actor, supplierID uuid.UUID, roles ...enums.MemberRole) error {
	if actor.SupplierID != supplierID {
		return pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier does not belong to actor")
	}
	for _, role := range roles {
		if actor.Role == role {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodePermissionDenied, "insufficient role")
}

func (s *service) UpdateProfile(ctx context.Context, actor Actor, supplierID uuid.UUID, input UpdateProfileInput) (*SupplierDTO, error) {
	if err := s.authorize(actor, supplierID, enums.MemberRoleOwner, enums.MemberRoleManager); err != nil {
		return nil, err
	}

	supplier, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}

	if input.BusinessName != nil {
		name := strings.TrimSpace(*input.BusinessName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "business name cannot be empty")
		}
		supplier.BusinessName = name
	}
	if input.Description != nil {
		supplier.Description = cloneStringPtr(input.Description)
	}
	if input.Phone != nil {
		supplier.Phone = cloneStringPtr(input.Phone)
	}
	if input.City != nil {
		supplier.City = cloneStringPtr(input.City)
	}

	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier")
	}
	return FromModel(supplier), nil
}

func (s *service) SetAcceptingBookings(ctx context.Context, actor Actor, supplierID uuid.UUID, accepting bool) (*SupplierDTO, error) {
	if err := s.authorize(actor, supplierID, enums.MemberRoleOwner, enums.MemberRoleManager); err != nil {
		return nil, err
	}

	supplier, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	if accepting && !supplier.IsEligibleForBookings() {
		return nil, pkgerrors.New(pkgerrors.CodeFailedPrecondition, "account is not active and verified")
	}

	supplier.AcceptingBookings = accepting
	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier")
	}
	return FromModel(supplier), nil
}

func (s *service) SetAccountStatus(ctx context.Context, actor Actor, supplierID uuid.UUID, input StatusInput) (*SupplierDTO, error) {
	if err := s.authorize(actor, supplierID, enums.MemberRoleOwner); err != nil {
		return nil, err
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account status")
	}

	var updated *models.Supplier
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		supplier, err := s.repo.FindByIDWithTx(tx, supplierID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
		}
		if supplier.AccountStatus == input.Status {
			updated = supplier
			return nil
		}

		supplier.AccountStatus = input.Status
		if input.Status == enums.AccountStatusActive && supplier.VerifiedAt == nil {
			now := time.Now()
			supplier.VerifiedAt = &now
		}
		// Suspended or rejected accounts must stop receiving bookings.
		if input.Status != enums.AccountStatusActive {
			supplier.AcceptingBookings = false
		}

		if err := s.repo.UpdateWithTx(tx, supplier); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier status")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSupplierStatusChanged,
			AggregateType: enums.AggregateSupplier,
			AggregateID:   supplier.ID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID:     actor.UserID,
				SupplierID: &actor.SupplierID,
				Role:       string(actor.Role),
			},
			Data: payloads.SupplierStatusChangedEvent{
				SupplierID: supplier.ID,
				Status:     supplier.AccountStatus,
				Reason:     input.Reason,
			},
		}); err != nil {
			return err
		}

		updated = supplier
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
