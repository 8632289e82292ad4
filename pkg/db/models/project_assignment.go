package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectAssignment grants one seller visibility and mutation rights on one
// project. Admins bypass assignments entirely.
type ProjectAssignment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_assignment_user_project"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;uniqueIndex:idx_assignment_user_project"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
