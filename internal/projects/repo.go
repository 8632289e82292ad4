package projects

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adigart/adigart-backend/pkg/db/models"
)

// Repository exposes project persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists a new project.
func (r *Repository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// FindByID loads a project by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Update persists the project's mutable fields.
func (r *Repository) Update(ctx context.Context, project *models.Project) (*models.Project, error) {
	if err := r.db.WithContext(ctx).Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// ListAll returns every project, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]models.Project, error) {
	var rows []models.Project
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByIDs returns the projects matching the provided ids, newest first.
func (r *Repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Project, error) {
	if len(ids) == 0 {
		return []models.Project{}, nil
	}
	var rows []models.Project
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteCascade removes the project together with its products, their
// variants, their transactions, and the project's assignments. Runs against
// whatever handle the repo is bound to; callers wrap it in a transaction.
func (r *Repository) DeleteCascade(ctx context.Context, projectID uuid.UUID) error {
	productIDs := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("id").
		Where("project_id = ?", projectID)

	if err := r.db.WithContext(ctx).
		Where("product_id IN (?)", productIDs).
		Delete(&models.Transaction{}).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("product_id IN (?)", productIDs).
		Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.Product{}).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.ProjectAssignment{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Delete(&models.Project{}, "id = ?", projectID).Error
}
