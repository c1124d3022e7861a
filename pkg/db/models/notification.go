package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to suppliers.
type Notification struct {
	ID         uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID uuid.UUID              `gorm:"type:uuid;not null"`
	Type       enums.NotificationType `gorm:"type:notification_type;not null"`
	Title      string                 `gorm:"type:text;not null"`
	Message    string                 `gorm:"type:text;not null"`
	BookingID  *uuid.UUID             `gorm:"type:uuid"`
	ReadAt     *time.Time             `gorm:"type:timestamptz"`
	CreatedAt  time.Time              `gorm:"type:timestamptz;default:now()"`
}
