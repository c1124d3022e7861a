package packages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/outbox"
	"github.com/velora-market/velora-backend/pkg/outbox/payloads"
	"github.com/velora-market/velora-backend/pkg/types"
)

type packageRepository interface {
	CreateWithTx(tx *gorm.DB, pkg *models.Package) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Package, error)
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Package, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID, includeInactive bool) ([]models.Package, error)
	UpdateWithTx(tx *gorm.DB, pkg *models.Package) error
}

type supplierReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Actor identifies the authenticated user performing a package operation.
type Actor struct {
	UserID     uuid.UUID
	SupplierID uuid.UUID
	Role       enums.MemberRole
}

// Service exposes package catalogue operations.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreatePackageInput) (*PackageDTO, error)
	Update(ctx context.Context, actor Actor, packageID uuid.UUID, input UpdatePackageInput) (*PackageDTO, error)
	Archive(ctx context.Context, actor Actor, packageID uuid.UUID) error
	GetByID(ctx context.Context, actor Actor, packageID uuid.UUID) (*PackageDTO, error)
	List(ctx context.Context, actor Actor, includeInactive bool) ([]PackageDTO, error)
}

type service struct {
	repo      packageRepository
	suppliers supplierReader
	tx        txRunner
	outbox    outboxPublisher
}

// NewService builds a package service with the provided dependencies.
func NewService(repo packageRepository, suppliers supplierReader, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("package repository required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("supplier reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, suppliers: suppliers, tx: tx, outbox: publisher}, nil
}

func (s *service) authorize(actor Actor) error {
	if actor.SupplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing")
	}
	if actor.Role != enums.MemberRoleOwner && actor.Role != enums.MemberRoleManager {
		return pkgerrors.New(pkgerrors.CodePermissionDenied, "insufficient role")
	}
	return nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreatePackageInput) (*PackageDTO, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "package name required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	supplier, err := s.suppliers.FindByID(ctx, actor.SupplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}

	pkg := &models.Package{
		SupplierID: supplier.ID,
		Name:       name,
		// The category is copied from the supplier, never from the caller.
		Category:       supplier.Category,
		Description:    input.Description,
		Price:          input.Price,
		Currency:       enums.CurrencyUSD,
		DurationHours:  input.DurationHours,
		Includes:       types.StringList(input.Includes),
		Customizations: input.Customizations,
		Photos:         types.StringList(input.Photos),
		IsActive:       true,
	}
	if input.Currency != nil {
		if !input.Currency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
		}
		pkg.Currency = *input.Currency
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateWithTx(tx, pkg); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create package")
		}
		return s.emitChange(ctx, tx, actor, pkg, "created")
	})
	if err != nil {
		return nil, err
	}
	return FromModel(pkg), nil
}

func (s *service) Update(ctx context.Context, actor Actor, packageID uuid.UUID, input UpdatePackageInput) (*PackageDTO, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	if packageID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "package id required")
	}

	var updated *models.Package
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		pkg, err := s.repo.FindByIDWithTx(tx, packageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load package")
		}
		if pkg.SupplierID != actor.SupplierID {
			return pkgerrors.New(pkgerrors.CodePermissionDenied, "package does not belong to supplier")
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "package name cannot be empty")
			}
			pkg.Name = name
		}
		if input.Description != nil {
			pkg.Description = input.Description
		}
		if input.Price != nil {
			if input.Price.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
			}
			pkg.Price = *input.Price
		}
		if input.DurationHours != nil {
			pkg.DurationHours = input.DurationHours
		}
		if input.Includes != nil {
			pkg.Includes = types.StringList(*input.Includes)
		}
		if input.Customizations != nil {
			pkg.Customizations = *input.Customizations
		}
		if input.Photos != nil {
			pkg.Photos = types.StringList(*input.Photos)
		}
		if input.IsActive != nil {
			pkg.IsActive = *input.IsActive
		}

		if err := s.repo.UpdateWithTx(tx, pkg); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update package")
		}
		updated = pkg
		return s.emitChange(ctx, tx, actor, pkg, "updated")
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Archive(ctx context.Context, actor Actor, packageID uuid.UUID) error {
	if err := s.authorize(actor); err != nil {
		return err
	}
	if packageID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "package id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		pkg, err := s.repo.FindByIDWithTx(tx, packageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load package")
		}
		if pkg.SupplierID != actor.SupplierID {
			return pkgerrors.New(pkgerrors.CodePermissionDenied, "package does not belong to supplier")
		}
		if !pkg.IsActive {
			return nil
		}

		pkg.IsActive = false
		if err := s.repo.UpdateWithTx(tx, pkg); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive package")
		}
		return s.emitChange(ctx, tx, actor, pkg, "archived")
	})
}

func (s *service) GetByID(ctx context.Context, actor Actor, packageID uuid.UUID) (*PackageDTO, error) {
	if actor.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing")
	}
	pkg, err := s.repo.FindByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load package")
	}
	if pkg.SupplierID != actor.SupplierID {
		return nil, pkgerrors.New(pkgerrors.CodePermissionDenied, "package does not belong to supplier")
	}
	return FromModel(pkg), nil
}

func (s *service) List(ctx context.Context, actor Actor, includeInactive bool) ([]PackageDTO, error) {
	if actor.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing")
	}
	rows, err := s.repo.ListBySupplier(ctx, actor.SupplierID, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list packages")
	}
	dtos := make([]PackageDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) emitChange(ctx context.Context, tx *gorm.DB, actor Actor, pkg *models.Package, change string) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPackageChanged,
		AggregateType: enums.AggregatePackage,
		AggregateID:   pkg.ID,
		Version:       1,
		Actor: &outbox.ActorRef{
			UserID:     actor.UserID,
			SupplierID: &actor.SupplierID,
			Role:       string(actor.Role),
		},
		Data: payloads.PackageChangedEvent{
			PackageID:  pkg.ID,
			SupplierID: pkg.SupplierID,
			Category:   pkg.Category,
			IsActive:   pkg.IsActive,
			Change:     change,
		},
	})
}
