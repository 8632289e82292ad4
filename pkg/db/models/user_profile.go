package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adigart/adigart-backend/pkg/enums"
)

// UserProfile is an account that can sign in: admins manage everything,
// sellers only touch projects they are assigned to.
type UserProfile struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;not null"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
}
