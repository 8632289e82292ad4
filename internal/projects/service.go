package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adigart/adigart-backend/internal/access"
	"github.com/adigart/adigart-backend/pkg/db/models"
	pkgerrors "github.com/adigart/adigart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes project management operations.
type Service interface {
	CreateProject(ctx context.Context, actor access.Actor, input CreateProjectInput) (*ProjectDTO, error)
	UpdateProject(ctx context.Context, actor access.Actor, projectID uuid.UUID, input UpdateProjectInput) (*ProjectDTO, error)
	GetProject(ctx context.Context, actor access.Actor, projectID uuid.UUID) (*ProjectDTO, error)
	ListProjects(ctx context.Context, actor access.Actor) ([]ProjectDTO, error)
	DeleteProject(ctx context.Context, actor access.Actor, projectID uuid.UUID) error
}

type service struct {
	repo   *Repository
	tx     txRunner
	access *access.Service
}

// NewService constructs a project service instance.
func NewService(repo *Repository, tx txRunner, accessSvc *access.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("project repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if accessSvc == nil {
		return nil, fmt.Errorf("access service required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		access: accessSvc,
	}, nil
}

// CreateProject creates a project. Admin only.
func (s *service) CreateProject(ctx context.Context, actor access.Actor, input CreateProjectInput) (*ProjectDTO, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project name is required")
	}

	project, err := s.repo.Create(ctx, &models.Project{
		ID:        uuid.New(),
		Name:      name,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert project")
	}
	return NewProjectDTO(project), nil
}

// UpdateProject applies partial updates to a project. Admin only.
func (s *service) UpdateProject(ctx context.Context, actor access.Actor, projectID uuid.UUID, input UpdateProjectInput) (*ProjectDTO, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	project, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "project name cannot be empty")
		}
		project.Name = name
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		project.EndDate = input.EndDate
	}
	if err := validateDates(project.StartDate, project.EndDate); err != nil {
		return nil, err
	}
	if input.Archived != nil {
		project.Archived = *input.Archived
	}

	updated, err := s.repo.Update(ctx, project)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update project")
	}
	return NewProjectDTO(updated), nil
}

// GetProject loads one project, enforcing the actor's visibility.
func (s *service) GetProject(ctx context.Context, actor access.Actor, projectID uuid.UUID) (*ProjectDTO, error) {
	if err := s.access.RequireProjectAccess(ctx, actor, projectID); err != nil {
		return nil, err
	}
	project, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	return NewProjectDTO(project), nil
}

// ListProjects returns every project the actor can see.
func (s *service) ListProjects(ctx context.Context, actor access.Actor) ([]ProjectDTO, error) {
	ids, err := s.access.AccessibleProjectIDs(ctx, actor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve visibility")
	}

	var rows []ProjectDTO
	if actor.IsAdmin() {
		all, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list projects")
		}
		for i := range all {
			rows = append(rows, *NewProjectDTO(&all[i]))
		}
		return rows, nil
	}

	assigned, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned projects")
	}
	for i := range assigned {
		rows = append(rows, *NewProjectDTO(&assigned[i]))
	}
	return rows, nil
}

// DeleteProject removes a project and everything hanging off it. Admin only.
func (s *service) DeleteProject(ctx context.Context, actor access.Actor, projectID uuid.UUID) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}

	if _, err := s.repo.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteCascade(ctx, projectID)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete project")
	}
	return nil
}

func validateDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end_date cannot precede start_date")
	}
	return nil
}
