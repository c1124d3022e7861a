package auth

import (
	"github.com/velora-market/velora-backend/internal/suppliers"
	"github.com/velora-market/velora-backend/internal/users"
)

// LoginRequest carries the credentials submitted to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the token pair plus the user and supplier context.
type LoginResponse struct {
	AccessToken  string                 `json:"accessToken"`
	RefreshToken string                 `json:"refreshToken"`
	User         *users.UserDTO         `json:"user"`
	Supplier     *suppliers.SupplierDTO `json:"supplier"`
}

// RefreshRequest rotates a refresh token into a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
