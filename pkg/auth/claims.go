package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID        uuid.UUID
	SupplierID    *uuid.UUID
	Role          enums.MemberRole
	AccountStatus *enums.AccountStatus
	JTI           string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID        uuid.UUID            `json:"user_id"`
	SupplierID    *uuid.UUID           `json:"supplier_id,omitempty"`
	Role          enums.MemberRole     `json:"role"`
	AccountStatus *enums.AccountStatus `json:"account_status,omitempty"`
	jwt.RegisteredClaims
}
