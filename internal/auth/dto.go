package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/adigart/adigart-backend/pkg/db/models"
	"github.com/adigart/adigart-backend/pkg/enums"
)

// LoginRequest carries the credentials presented at sign-in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the token pair and the signed-in profile.
type LoginResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         UserDTO `json:"user"`
}

// UserDTO is the API representation of an account.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

// FromModel maps a profile row to its API shape.
func FromModel(user *models.UserProfile) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// CreateSellerRequest is the admin flow for onboarding a seller. When the
// password is omitted a temporary one is generated and returned once.
type CreateSellerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// CreateSellerResponse echoes the created profile. TempPassword is only set
// when the server generated one; it is never stored in clear.
type CreateSellerResponse struct {
	User         UserDTO `json:"user"`
	TempPassword string  `json:"temp_password,omitempty"`
}
