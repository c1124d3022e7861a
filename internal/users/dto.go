package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
)

// UserDTO exposes safe user data in API responses.
type UserDTO struct {
	ID          uuid.UUID        `json:"id"`
	SupplierID  uuid.UUID        `json:"supplierId"`
	Email       string           `json:"email"`
	FullName    string           `json:"fullName"`
	Role        enums.MemberRole `json:"role"`
	LastLoginAt *time.Time       `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// CreateUserDTO holds creation-time data for a new user.
type CreateUserDTO struct {
	SupplierID   uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	Role         enums.MemberRole
}

// ToModel prepares the GORM model from creation data.
func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		SupplierID:   c.SupplierID,
		Email:        c.Email,
		FullName:     c.FullName,
		PasswordHash: c.PasswordHash,
		Role:         c.Role,
	}
}

// FromModel maps the persisted user into a DTO.
func FromModel(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	return &UserDTO{
		ID:          m.ID,
		SupplierID:  m.SupplierID,
		Email:       m.Email,
		FullName:    m.FullName,
		Role:        m.Role,
		LastLoginAt: m.LastLoginAt,
		CreatedAt:   m.CreatedAt,
	}
}
