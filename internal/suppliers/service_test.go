package suppliers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/outbox"
	"github.com/velora-market/velora-backend/pkg/outbox/payloads"
)

type stubSupplierRepo struct {
	supplier *models.Supplier
	saved    *models.Supplier
}

func (s *stubSupplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	if s.supplier == nil || s.supplier.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.supplier, nil
}

func (s *stubSupplierRepo) Update(ctx context.Context, supplier *models.Supplier) error {
	s.saved = supplier
	return nil
}

func (s *stubSupplierRepo) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Supplier, error) {
	return s.FindByID(context.Background(), id)
}

func (s *stubSupplierRepo) UpdateWithTx(tx *gorm.DB, supplier *models.Supplier) error {
	return s.Update(context.Background(), supplier)
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

func activeSupplier() *models.Supplier {
	now := time.Now()
	return &models.Supplier{
		ID:                uuid.New(),
		BusinessName:      "Bloom & Vine Florals",
		Category:          enums.SupplierCategoryFlowers,
		AccountStatus:     enums.AccountStatusActive,
		AcceptingBookings: true,
		VerifiedAt:        &now,
	}
}

func ownerActor(supplierID uuid.UUID) Actor {
	return Actor{UserID: uuid.New(), SupplierID: supplierID, Role: enums.MemberRoleOwner}
}

func TestUpdateProfile(t *testing.T) {
	supplier := activeSupplier()
	repo := &stubSupplierRepo{supplier: supplier}
	svc, err := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	name := "  Bloom & Vine Studio  "
	city := "Austin"
	dto, err := svc.UpdateProfile(context.Background(), ownerActor(supplier.ID), supplier.ID, UpdateProfileInput{
		BusinessName: &name,
		City:         &city,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if dto.BusinessName != "Bloom & Vine Studio" {
		t.Fatalf("expected trimmed name, got %q", dto.BusinessName)
	}
	if dto.City == nil || *dto.City != "Austin" {
		t.Fatal("expected city updated")
	}
	if repo.saved == nil {
		t.Fatal("expected supplier persisted")
	}
}

func TestUpdateProfileStaffForbidden(t *testing.T) {
	supplier := activeSupplier()
	repo := &stubSupplierRepo{supplier: supplier}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})

	actor := Actor{UserID: uuid.New(), SupplierID: supplier.ID, Role: enums.MemberRoleStaff}
	_, err := svc.UpdateProfile(context.Background(), actor, supplier.ID, UpdateProfileInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePermissionDenied {
		t.Fatalf("expected permission-denied, got %v", err)
	}
}

func TestUpdateProfileForeignSupplier(t *testing.T) {
	supplier := activeSupplier()
	repo := &stubSupplierRepo{supplier: supplier}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := svc.UpdateProfile(context.Background(), ownerActor(uuid.New()), supplier.ID, UpdateProfileInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePermissionDenied {
		t.Fatalf("expected permission-denied, got %v", err)
	}
}

func TestSetAcceptingBookingsRequiresEligibility(t *testing.T) {
	supplier := activeSupplier()
	supplier.AccountStatus = enums.AccountStatusPendingReview
	supplier.VerifiedAt = nil
	supplier.AcceptingBookings = false
	repo := &stubSupplierRepo{supplier: supplier}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := svc.SetAcceptingBookings(context.Background(), ownerActor(supplier.ID), supplier.ID, true)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeFailedPrecondition {
		t.Fatalf("expected failed-precondition, got %v", err)
	}
}

func TestSetAcceptingBookingsPause(t *testing.T) {
	supplier := activeSupplier()
	repo := &stubSupplierRepo{supplier: supplier}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})

	dto, err := svc.SetAcceptingBookings(context.Background(), ownerActor(supplier.ID), supplier.ID, false)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if dto.AcceptingBookings {
		t.Fatal("expected bookings paused")
	}
}

func TestSetAccountStatusSuspendedEmitsEvent(t *testing.T) {
	supplier := activeSupplier()
	repo := &stubSupplierRepo{supplier: supplier}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, publisher)

	dto, err := svc.SetAccountStatus(context.Background(), ownerActor(supplier.ID), supplier.ID, StatusInput{
		Status: enums.AccountStatusSuspended,
		Reason: "payout account failed verification",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if dto.AccountStatus != enums.AccountStatusSuspended {
		t.Fatalf("expected suspended, got %s", dto.AccountStatus)
	}
	if dto.AcceptingBookings {
		t.Fatal("suspension should stop accepting bookings")
	}
	if !publisher.called {
		t.Fatal("expected supplier status event")
	}
	if publisher.event.EventType != enums.EventSupplierStatusChanged {
		t.Fatalf("unexpected event type %s", publisher.event.EventType)
	}
	payload := publisher.event.Data.(payloads.SupplierStatusChangedEvent)
	if payload.Status != enums.AccountStatusSuspended {
		t.Fatalf("unexpected payload status %s", payload.Status)
	}
}

func TestSetAccountStatusActivateStampsVerification(t *testing.T) {
	supplier := activeSupplier()
	supplier.AccountStatus = enums.AccountStatusPendingReview
	supplier.VerifiedAt = nil
	repo := &stubSupplierRepo{supplier: supplier}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, publisher)

	dto, err := svc.SetAccountStatus(context.Background(), ownerActor(supplier.ID), supplier.ID, StatusInput{
		Status: enums.AccountStatusActive,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !dto.Verified {
		t.Fatal("expected verification stamp on activation")
	}
}

func TestSetAccountStatusNoOpWhenUnchanged(t *testing.T) {
	supplier := activeSupplier()
	repo := &stubSupplierRepo{supplier: supplier}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, publisher)

	_, err := svc.SetAccountStatus(context.Background(), ownerActor(supplier.ID), supplier.ID, StatusInput{
		Status: enums.AccountStatusActive,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if publisher.called {
		t.Fatal("unchanged status should not emit an event")
	}
}
