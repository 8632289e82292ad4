package access

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adigart/adigart-backend/pkg/db"
	"github.com/adigart/adigart-backend/pkg/db/models"
	pkgerrors "github.com/adigart/adigart-backend/pkg/errors"
)

// Repository exposes project assignment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// IsAssigned reports whether the user holds an assignment for the project.
func (r *Repository) IsAssigned(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProjectAssignment{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Assign creates an assignment linking the user to the project.
func (r *Repository) Assign(ctx context.Context, userID, projectID uuid.UUID) (*models.ProjectAssignment, error) {
	assignment := &models.ProjectAssignment{
		ID:        uuid.New(),
		UserID:    userID,
		ProjectID: projectID,
	}
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user is already assigned to this project")
		}
		return nil, err
	}
	return assignment, nil
}

// Unassign removes the assignment linking the user to the project.
func (r *Repository) Unassign(ctx context.Context, userID, projectID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.ProjectAssignment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
	}
	return nil
}

// ListProjectIDs returns the ids of every project the user is assigned to.
func (r *Repository) ListProjectIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ProjectAssignment{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListAssignedUsers returns the users assigned to the project with their profile data.
func (r *Repository) ListAssignedUsers(ctx context.Context, projectID uuid.UUID) ([]AssignedUser, error) {
	var rows []AssignedUser
	err := r.db.WithContext(ctx).
		Model(&models.ProjectAssignment{}).
		Select("project_assignments.user_id, user_profiles.email, user_profiles.role, project_assignments.created_at AS assigned_at").
		Joins("JOIN user_profiles ON user_profiles.id = project_assignments.user_id").
		Where("project_assignments.project_id = ?", projectID).
		Order("project_assignments.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
