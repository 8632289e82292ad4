package transactions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adigart/adigart-backend/pkg/db/models"
)

// Repository exposes transaction persistence operations.
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

// Insert persists a new transaction row.
func (r *Repository) Insert(ctx context.Context, tr *models.Transaction) (*models.Transaction, error) {
	if err := r.db.WithContext(ctx).Create(tr).Error; err != nil {
		return nil, err
	}
	return tr, nil
}

// FindByID loads one transaction.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var tr models.Transaction
	if err := r.db.WithContext(ctx).First(&tr, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tr, nil
}

// Update persists the transaction's mutable fields.
func (r *Repository) Update(ctx context.Context, tr *models.Transaction) (*models.Transaction, error) {
	if err := r.db.WithContext(ctx).Save(tr).Error; err != nil {
		return nil, err
	}
	return tr, nil
}

// Delete removes one transaction row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Transaction{}, "id = ?", id).Error
}

// DeleteByProject removes every transaction belonging to the project's
// products and returns how many rows went away.
func (r *Repository) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	productIDs := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("id").
		Where("project_id = ?", projectID)

	res := r.db.WithContext(ctx).
		Where("product_id IN (?)", productIDs).
		Delete(&models.Transaction{})
	return res.RowsAffected, res.Error
}
