package projects

import (
	"time"

	"github.com/google/uuid"

	"github.com/adigart/adigart-backend/pkg/db/models"
)

// CreateProjectInput holds the validated payload to create a project.
type CreateProjectInput struct {
	Name      string
	StartDate *time.Time
	EndDate   *time.Time
}

// UpdateProjectInput holds optional mutation values for a project.
type UpdateProjectInput struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
	Archived  *bool
}

// ProjectDTO is the API representation of a project.
type ProjectDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Archived  bool       `json:"archived"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewProjectDTO maps the model to its API shape.
func NewProjectDTO(project *models.Project) *ProjectDTO {
	if project == nil {
		return nil
	}
	return &ProjectDTO{
		ID:        project.ID,
		Name:      project.Name,
		StartDate: project.StartDate,
		EndDate:   project.EndDate,
		Archived:  project.Archived,
		CreatedAt: project.CreatedAt,
	}
}
