package access

import (
	"time"

	"github.com/google/uuid"

	"github.com/adigart/adigart-backend/pkg/enums"
)

// AssignedUser pairs an assignment with the profile it grants access to.
type AssignedUser struct {
	UserID     uuid.UUID      `json:"user_id"`
	Email      string         `json:"email"`
	Role       enums.UserRole `json:"role"`
	AssignedAt time.Time      `json:"assigned_at"`
}
