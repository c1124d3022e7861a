package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/config"
	"github.com/velora-market/velora-backend/pkg/enums"
)

func testJWTConfig(ttlMinutes int) config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "velora",
		ExpirationMinutes: ttlMinutes,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig(30)
	now := time.Now().UTC()
	supplierID := uuid.New()
	status := enums.AccountStatusActive
	payload := AccessTokenPayload{
		UserID:        uuid.New(),
		SupplierID:    &supplierID,
		Role:          enums.MemberRoleOwner,
		AccountStatus: &status,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != payload.UserID {
		t.Fatalf("expected user_id %s, got %s", payload.UserID, claims.UserID)
	}
	if claims.SupplierID == nil || *claims.SupplierID != supplierID {
		t.Fatalf("supplier id not preserved")
	}
	if claims.Role != enums.MemberRoleOwner {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.AccountStatus == nil || *claims.AccountStatus != status {
		t.Fatalf("account status mismatch")
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	if diff := claims.ExpiresAt.Sub(exp).Abs(); diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp, claims.ExpiresAt.UTC(), diff)
	}
}

func TestMintAccessTokenKeepsProvidedJTI(t *testing.T) {
	payload := AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.MemberRoleStaff,
		JTI:    "session-123",
	}

	token, err := MintAccessToken(testJWTConfig(5), time.Now(), payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	claims, err := ParseAccessToken(testJWTConfig(5), token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ID != "session-123" {
		t.Fatalf("expected jti session-123, got %s", claims.ID)
	}
}

func TestParseAccessTokenRejections(t *testing.T) {
	cfg := testJWTConfig(15)
	mint := func(t *testing.T, cfg config.JWTConfig, now time.Time) string {
		t.Helper()
		token, err := MintAccessToken(cfg, now, AccessTokenPayload{
			UserID: uuid.New(),
			Role:   enums.MemberRoleManager,
		})
		if err != nil {
			t.Fatalf("mint access token: %v", err)
		}
		return token
	}

	t.Run("tampered signature", func(t *testing.T) {
		if _, err := ParseAccessToken(cfg, mint(t, cfg, time.Now())+"x"); err == nil {
			t.Fatal("expected invalid signature error")
		}
	})

	t.Run("expired", func(t *testing.T) {
		token := mint(t, cfg, time.Now().Add(-time.Hour))
		_, err := ParseAccessToken(cfg, token)
		if err == nil {
			t.Fatal("expected expiration error")
		}
		if !strings.Contains(err.Error(), "expired") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := cfg
		other.Issuer = "someone-else"
		if _, err := ParseAccessToken(cfg, mint(t, other, time.Now())); err == nil {
			t.Fatal("expected issuer mismatch error")
		}
	})
}

func TestParseAccessTokenAllowExpired(t *testing.T) {
	cfg := testJWTConfig(15)
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.MemberRoleOwner,
		JTI:    "expired-session",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	// The refresh flow still needs the jti out of an expired token.
	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("parse expired token: %v", err)
	}
	if claims.ID != "expired-session" {
		t.Fatalf("expected jti expired-session, got %s", claims.ID)
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	now := time.Now()
	valid := AccessTokenPayload{UserID: uuid.New(), Role: enums.MemberRoleOwner}

	cases := []struct {
		name    string
		cfg     config.JWTConfig
		payload AccessTokenPayload
	}{
		{"missing secret", config.JWTConfig{Issuer: "velora", ExpirationMinutes: 5}, valid},
		{"missing issuer", config.JWTConfig{Secret: "secret", ExpirationMinutes: 5}, valid},
		{"zero ttl", config.JWTConfig{Secret: "secret", Issuer: "velora"}, valid},
		{"empty role", testJWTConfig(5), AccessTokenPayload{UserID: uuid.New()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := MintAccessToken(tc.cfg, now, tc.payload); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
