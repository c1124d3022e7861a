package suppliers

import (
	"time"

	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/db/models"
	"github.com/velora-market/velora-backend/pkg/enums"
)

// SupplierDTO exposes safe supplier data in API responses.
type SupplierDTO struct {
	ID                uuid.UUID              `json:"id"`
	BusinessName      string                 `json:"businessName"`
	Category          enums.SupplierCategory `json:"category"`
	AccountStatus     enums.AccountStatus    `json:"accountStatus"`
	AcceptingBookings bool                   `json:"acceptingBookings"`
	Verified          bool                   `json:"verified"`
	Description       *string                `json:"description,omitempty"`
	Phone             *string                `json:"phone,omitempty"`
	City              *string                `json:"city,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

// FromModel maps the persisted supplier into a DTO.
func FromModel(m *models.Supplier) *SupplierDTO {
	if m == nil {
		return nil
	}
	return &SupplierDTO{
		ID:                m.ID,
		BusinessName:      m.BusinessName,
		Category:          m.Category,
		AccountStatus:     m.AccountStatus,
		AcceptingBookings: m.AcceptingBookings,
		Verified:          m.VerifiedAt != nil,
		Description:       m.Description,
		Phone:             m.Phone,
		City:              m.City,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
