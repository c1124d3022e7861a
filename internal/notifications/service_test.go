package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/pagination"
)

type stubNotificationsRepo struct {
	rows      []models.Notification
	next      *pagination.Cursor
	marked    []uuid.UUID
	markFound bool
	allRead   int64
	unread    int64
}

func (s *stubNotificationsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubNotificationsRepo) Create(ctx context.Context, notification *models.Notification) error {
	s.rows = append(s.rows, *notification)
	return nil
}

func (s *stubNotificationsRepo) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	return s.rows, s.next, nil
}

func (s *stubNotificationsRepo) MarkRead(ctx context.Context, supplierID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	s.marked = append(s.marked, notificationID)
	return notificationMarkResult{Found: s.markFound, Updated: s.markFound}, nil
}

func (s *stubNotificationsRepo) MarkAllRead(ctx context.Context, supplierID uuid.UUID, now time.Time) (int64, error) {
	return s.allRead, nil
}

func (s *stubNotificationsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (s *stubNotificationsRepo) CountUnread(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	return s.unread, nil
}

func TestListReturnsCursor(t *testing.T) {
	next := &pagination.Cursor{CreatedAt: time.Now(), ID: uuid.New()}
	repo := &stubNotificationsRepo{
		rows: []models.Notification{{
			ID:         uuid.New(),
			SupplierID: uuid.New(),
			Type:       enums.NotificationBookingConfirmed,
			Title:      "Booking confirmed",
			Message:    "The booking for Lee Wedding is confirmed.",
		}},
		next: next,
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	result, err := svc.List(context.Background(), ListParams{SupplierID: uuid.New(), Limit: 10})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected encoded cursor")
	}
}

func TestListRequiresSupplier(t *testing.T) {
	svc, _ := NewService(&stubNotificationsRepo{})

	_, err := svc.List(context.Background(), ListParams{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePermissionDenied {
		t.Fatalf("expected permission-denied, got %v", err)
	}
}

func TestMarkReadNotFound(t *testing.T) {
	repo := &stubNotificationsRepo{markFound: false}
	svc, _ := NewService(repo)

	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestMarkRead(t *testing.T) {
	repo := &stubNotificationsRepo{markFound: true}
	svc, _ := NewService(repo)

	notificationID := uuid.New()
	if err := svc.MarkRead(context.Background(), uuid.New(), notificationID); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(repo.marked) != 1 || repo.marked[0] != notificationID {
		t.Fatalf("expected mark call, got %v", repo.marked)
	}
}

func TestMarkAllRead(t *testing.T) {
	repo := &stubNotificationsRepo{allRead: 4}
	svc, _ := NewService(repo)

	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 marked, got %d", count)
	}
}

func TestUnreadCount(t *testing.T) {
	repo := &stubNotificationsRepo{unread: 2}
	svc, _ := NewService(repo)

	count, err := svc.UnreadCount(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}
}
