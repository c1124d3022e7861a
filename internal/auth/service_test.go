package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/velora-market/velora-backend/pkg/auth"
	"github.com/velora-market/velora-backend/pkg/auth/session"
	"github.com/velora-market/velora-backend/pkg/config"
	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/security"
)

type stubUserRepo struct {
	user      *models.User
	lastLogin *time.Time
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin = &at
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

type stubSessionManager struct {
	generated string
	revoked   []string
	rotateErr error
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.generated = accessID
	return "refresh-token", nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	return session.NewAccessID(), "rotated-refresh-token", nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "velora",
		ExpirationMinutes: 15,
	}
}

func testFixtures(t *testing.T, password string) (*stubUserRepo, *stubSupplierReader) {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now()
	supplier := &models.Supplier{
		ID:            uuid.New(),
		BusinessName:  "Moments Photography",
		Category:      enums.SupplierCategoryPhotography,
		AccountStatus: enums.AccountStatusActive,
		VerifiedAt:    &now,
	}
	user := &models.User{
		ID:           uuid.New(),
		SupplierID:   supplier.ID,
		Email:        "owner@moments.example",
		FullName:     "Jordan Reyes",
		PasswordHash: hash,
		Role:         enums.MemberRoleOwner,
	}
	return &stubUserRepo{user: user}, &stubSupplierReader{supplier: supplier}
}

func newTestService(t *testing.T, usersRepo *stubUserRepo, suppliersRepo *stubSupplierReader, sessions *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       usersRepo,
		SupplierRepo:   suppliersRepo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func TestLogin(t *testing.T) {
	usersRepo, suppliersRepo := testFixtures(t, "correct horse battery")
	sessions := &stubSessionManager{}
	svc := newTestService(t, usersRepo, suppliersRepo, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Owner@Moments.example",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if usersRepo.lastLogin == nil {
		t.Fatal("expected last login stamp")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("access token should parse: %v", err)
	}
	if claims.UserID != usersRepo.user.ID {
		t.Fatal("claims should carry the user id")
	}
	if claims.SupplierID == nil || *claims.SupplierID != suppliersRepo.supplier.ID {
		t.Fatal("claims should carry the supplier id")
	}
	if claims.ID != sessions.generated {
		t.Fatal("jti should match the stored session access id")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	usersRepo, suppliersRepo := testFixtures(t, "correct horse battery")
	svc := newTestService(t, usersRepo, suppliersRepo, &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "owner@moments.example",
		Password: "wrong",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	usersRepo, suppliersRepo := testFixtures(t, "correct horse battery")
	svc := newTestService(t, usersRepo, suppliersRepo, &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct horse battery",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	usersRepo, suppliersRepo := testFixtures(t, "correct horse battery")
	sessions := &stubSessionManager{}
	svc := newTestService(t, usersRepo, suppliersRepo, sessions)

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "owner@moments.example",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), login.AccessToken, RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if resp.RefreshToken != "rotated-refresh-token" {
		t.Fatalf("expected rotated token, got %q", resp.RefreshToken)
	}
	if resp.AccessToken == login.AccessToken {
		t.Fatal("expected a fresh access token")
	}
}

func TestRefreshInvalidToken(t *testing.T) {
	usersRepo, suppliersRepo := testFixtures(t, "correct horse battery")
	sessions := &stubSessionManager{rotateErr: session.ErrInvalidRefreshToken}
	svc := newTestService(t, usersRepo, suppliersRepo, sessions)

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "owner@moments.example",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	_, err = svc.Refresh(context.Background(), login.AccessToken, RefreshRequest{
		RefreshToken: "stale",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	usersRepo, suppliersRepo := testFixtures(t, "correct horse battery")
	sessions := &stubSessionManager{}
	svc := newTestService(t, usersRepo, suppliersRepo, sessions)

	if err := svc.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-id" {
		t.Fatalf("expected session revoked, got %v", sessions.revoked)
	}
}
