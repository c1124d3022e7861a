package packages

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/outbox"
	"github.com/velora-market/velora-backend/pkg/outbox/payloads"
)

type stubPackageRepo struct {
	pkg     *models.Package
	created *models.Package
	saved   *models.Package
	rows    []models.Package
}

func (s *stubPackageRepo) CreateWithTx(tx *gorm.DB, pkg *models.Package) error {
	if pkg.ID == uuid.Nil {
		pkg.ID = uuid.New()
	}
	s.created = pkg
	return nil
}

func (s *stubPackageRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	if s.pkg == nil || s.pkg.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.pkg, nil
}

func (s *stubPackageRepo) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Package, error) {
	return s.FindByID(context.Background(), id)
}

func (s *stubPackageRepo) ListBySupplier(ctx context.Context, supplierID uuid.UUID, includeInactive bool) ([]models.Package, error) {
	return s.rows, nil
}

func (s *stubPackageRepo) UpdateWithTx(tx *gorm.DB, pkg *models.Package) error {
	s.saved = pkg
	return nil
}

type stubSupplierReader struct {
	supplier *models.Supplier
}

func (s *stubSupplierReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	if s.supplier == nil || s.supplier.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.supplier, nil
}

type stubOutboxPublisher struct {
	event  outbox.DomainEvent
	called bool
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.called = true
	s.event = event
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func cateringSupplier() *models.Supplier {
	now := time.Now()
	return &models.Supplier{
		ID:            uuid.New(),
		BusinessName:  "Harvest Table Catering",
		Category:      enums.SupplierCategoryCatering,
		AccountStatus: enums.AccountStatusActive,
		VerifiedAt:    &now,
	}
}

func managerActor(supplierID uuid.UUID) Actor {
	return Actor{UserID: uuid.New(), SupplierID: supplierID, Role: enums.MemberRoleManager}
}

func TestCreatePackageLocksCategory(t *testing.T) {
	supplier := cateringSupplier()
	repo := &stubPackageRepo{}
	publisher := &stubOutboxPublisher{}
	svc, err := NewService(repo, &stubSupplierReader{supplier: supplier}, stubTxRunner{}, publisher)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	dto, err := svc.Create(context.Background(), managerActor(supplier.ID), CreatePackageInput{
		Name:  "Full-Service Dinner",
		Price: decimal.NewFromInt(4500),
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if dto.Category != enums.SupplierCategoryCatering {
		t.Fatalf("expected supplier category, got %s", dto.Category)
	}
	if repo.created == nil {
		t.Fatal("expected package persisted")
	}
	if !publisher.called {
		t.Fatal("expected package event")
	}
	payload := publisher.event.Data.(payloads.PackageChangedEvent)
	if payload.Change != "created" {
		t.Fatalf("unexpected change %q", payload.Change)
	}
}

func TestCreatePackageRejectsNegativePrice(t *testing.T) {
	supplier := cateringSupplier()
	svc, _ := NewService(&stubPackageRepo{}, &stubSupplierReader{supplier: supplier}, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := svc.Create(context.Background(), managerActor(supplier.ID), CreatePackageInput{
		Name:  "Dinner",
		Price: decimal.NewFromInt(-1),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreatePackageStaffForbidden(t *testing.T) {
	supplier := cateringSupplier()
	svc, _ := NewService(&stubPackageRepo{}, &stubSupplierReader{supplier: supplier}, stubTxRunner{}, &stubOutboxPublisher{})

	actor := Actor{UserID: uuid.New(), SupplierID: supplier.ID, Role: enums.MemberRoleStaff}
	_, err := svc.Create(context.Background(), actor, CreatePackageInput{
		Name:  "Dinner",
		Price: decimal.NewFromInt(100),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePermissionDenied {
		t.Fatalf("expected permission-denied, got %v", err)
	}
}

func TestUpdateForeignPackage(t *testing.T) {
	supplier := cateringSupplier()
	pkg := &models.Package{
		ID:         uuid.New(),
		SupplierID: uuid.New(),
		Name:       "Dinner",
		Category:   enums.SupplierCategoryCatering,
		IsActive:   true,
	}
	repo := &stubPackageRepo{pkg: pkg}
	svc, _ := NewService(repo, &stubSupplierReader{supplier: supplier}, stubTxRunner{}, &stubOutboxPublisher{})

	name := "Buffet"
	_, err := svc.Update(context.Background(), managerActor(supplier.ID), pkg.ID, UpdatePackageInput{Name: &name})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePermissionDenied {
		t.Fatalf("expected permission-denied, got %v", err)
	}
}

func TestUpdatePackageFields(t *testing.T) {
	supplier := cateringSupplier()
	pkg := &models.Package{
		ID:         uuid.New(),
		SupplierID: supplier.ID,
		Name:       "Dinner",
		Category:   enums.SupplierCategoryCatering,
		Price:      decimal.NewFromInt(4500),
		IsActive:   true,
	}
	repo := &stubPackageRepo{pkg: pkg}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, &stubSupplierReader{supplier: supplier}, stubTxRunner{}, publisher)

	price := decimal.NewFromInt(5200)
	dto, err := svc.Update(context.Background(), managerActor(supplier.ID), pkg.ID, UpdatePackageInput{
		Price: &price,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !dto.Price.Equal(price) {
		t.Fatalf("expected updated price, got %s", dto.Price)
	}
	if repo.saved == nil {
		t.Fatal("expected package persisted")
	}
}

func TestArchivePackage(t *testing.T) {
	supplier := cateringSupplier()
	pkg := &models.Package{
		ID:         uuid.New(),
		SupplierID: supplier.ID,
		Name:       "Dinner",
		Category:   enums.SupplierCategoryCatering,
		IsActive:   true,
	}
	repo := &stubPackageRepo{pkg: pkg}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, &stubSupplierReader{supplier: supplier}, stubTxRunner{}, publisher)

	if err := svc.Archive(context.Background(), managerActor(supplier.ID), pkg.ID); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if pkg.IsActive {
		t.Fatal("expected package archived")
	}
	payload := publisher.event.Data.(payloads.PackageChangedEvent)
	if payload.Change != "archived" || payload.IsActive {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestArchiveAlreadyInactiveIsNoOp(t *testing.T) {
	supplier := cateringSupplier()
	pkg := &models.Package{
		ID:         uuid.New(),
		SupplierID: supplier.ID,
		Name:       "Dinner",
		Category:   enums.SupplierCategoryCatering,
		IsActive:   false,
	}
	repo := &stubPackageRepo{pkg: pkg}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, &stubSupplierReader{supplier: supplier}, stubTxRunner{}, publisher)

	if err := svc.Archive(context.Background(), managerActor(supplier.ID), pkg.ID); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if publisher.called {
		t.Fatal("archived package should not emit again")
	}
}
