package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintAccessToken issues a signed JWT for the provided payload using the configured TTL.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	switch {
	case cfg.Secret == "":
		return "", fmt.Errorf("jwt secret is required")
	case cfg.Issuer == "":
		return "", fmt.Errorf("jwt issuer is required")
	case cfg.ExpirationMinutes <= 0:
		return "", fmt.Errorf("jwt expiration minutes must be positive")
	case !payload.Role.IsValid():
		return "", fmt.Errorf("invalid member role %q", payload.Role)
	case payload.AccountStatus != nil && !payload.AccountStatus.IsValid():
		return "", fmt.Errorf("invalid account status %q", *payload.AccountStatus)
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}

	claims := AccessTokenClaims{
		UserID:        payload.UserID,
		SupplierID:    payload.SupplierID,
		Role:          payload.Role,
		AccountStatus: payload.AccountStatus,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates the JWT string and returns typed claims.
func ParseAccessToken(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	return parseClaims(cfg, tokenString, false)
}

// ParseAccessTokenAllowExpired parses the JWT without validating exp/nbf so
// the refresh flow can inspect the jti of an expired token.
func ParseAccessTokenAllowExpired(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	return parseClaims(cfg, tokenString, true)
}

func parseClaims(cfg config.JWTConfig, tokenString string, allowExpired bool) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	}
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &AccessTokenClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtSigningMethod {
			return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}
