package access

import (
	"context"

	"github.com/google/uuid"

	"github.com/adigart/adigart-backend/pkg/enums"
	pkgerrors "github.com/adigart/adigart-backend/pkg/errors"
)

// Actor identifies the authenticated caller for access decisions.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// Service answers the access questions the rest of the platform asks:
// admins see everything, sellers only what they are assigned.
type Service struct {
	repo *Repository
}

// NewService wires the access service to its repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CanAccessProject reports whether the actor may read or mutate the project.
func (s *Service) CanAccessProject(ctx context.Context, actor Actor, projectID uuid.UUID) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	return s.repo.IsAssigned(ctx, actor.UserID, projectID)
}

// RequireProjectAccess returns a forbidden error when the actor lacks access.
func (s *Service) RequireProjectAccess(ctx context.Context, actor Actor, projectID uuid.UUID) error {
	allowed, err := s.CanAccessProject(ctx, actor, projectID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking project access")
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeForbidden, "you do not have access to this project")
	}
	return nil
}

// RequireAdmin returns a forbidden error for non-admin actors.
func RequireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return nil
}

// Assign grants the user access to the project.
func (s *Service) Assign(ctx context.Context, actor Actor, userID, projectID uuid.UUID) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	_, err := s.repo.Assign(ctx, userID, projectID)
	return err
}

// Unassign revokes the user's access to the project.
func (s *Service) Unassign(ctx context.Context, actor Actor, userID, projectID uuid.UUID) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	return s.repo.Unassign(ctx, userID, projectID)
}

// AccessibleProjectIDs lists project ids visible to the actor. A nil slice
// means unrestricted visibility (admin).
func (s *Service) AccessibleProjectIDs(ctx context.Context, actor Actor) ([]uuid.UUID, error) {
	if actor.IsAdmin() {
		return nil, nil
	}
	return s.repo.ListProjectIDs(ctx, actor.UserID)
}

// AssignedUsers lists the users assigned to a project.
func (s *Service) AssignedUsers(ctx context.Context, actor Actor, projectID uuid.UUID) ([]AssignedUser, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.ListAssignedUsers(ctx, projectID)
}
