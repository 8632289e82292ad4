package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adigart/adigart-backend/internal/access"
	"github.com/adigart/adigart-backend/pkg/db"
	"github.com/adigart/adigart-backend/pkg/db/models"
	pkgerrors "github.com/adigart/adigart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CategoryDTO is the API representation of a category.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Service manages the global category list shared across projects.
type Service struct {
	db *gorm.DB
	tx txRunner
}

// NewService wires the category service.
func NewService(conn *gorm.DB, tx txRunner) (*Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("db connection required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &Service{db: conn, tx: tx}, nil
}

// Create adds a category. Admin only.
func (s *Service) Create(ctx context.Context, actor access.Actor, name string) (*CategoryDTO, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category := &models.Category{ID: uuid.New(), Name: name}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
	}
	return &CategoryDTO{ID: category.ID, Name: category.Name, CreatedAt: category.CreatedAt}, nil
}

// List returns every category ordered by name.
func (s *Service) List(ctx context.Context) ([]CategoryDTO, error) {
	var rows []models.Category
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, CategoryDTO{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt})
	}
	return out, nil
}

// Delete removes a category and detaches it from any product referencing it.
// Products keep existing with a null category. Admin only.
func (s *Service) Delete(ctx context.Context, actor access.Actor, categoryID uuid.UUID) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}

	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("category_id = ?", categoryID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.WithContext(ctx).Delete(&models.Category{}, "id = ?", categoryID).Error
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}
