package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/pkg/enums"
)

// User is a person who can sign in on behalf of a supplier.
type User struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID   uuid.UUID        `gorm:"column:supplier_id;type:uuid;not null"`
	Email        string           `gorm:"column:email;type:citext;not null;uniqueIndex:ux_users_email"`
	PasswordHash string           `gorm:"column:password_hash;type:text;not null"`
	FullName     string           `gorm:"column:full_name;type:text;not null"`
	Role         enums.MemberRole `gorm:"column:role;type:member_role;not null;default:'staff'"`
	LastLoginAt  *time.Time       `gorm:"column:last_login_at"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
