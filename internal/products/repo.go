package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adigart/adigart-backend/pkg/db/models"
)

// Repository exposes product and variant persistence operations.
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

// CreateProduct persists a new product.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads a product with its variants.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByProject returns the project's products with variants, newest first.
func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateProduct persists the product's mutable fields.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit("Variants").Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindVariantByID loads a single variant.
func (r *Repository) FindVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// ClaimAllocation checks that qty more units fit under the product's
// allocation ceiling. The check and the claim are one conditional UPDATE so
// two concurrent variant creations cannot both squeeze into the last slot;
// the touched row stays locked for the rest of the transaction.
func (r *Repository) ClaimAllocation(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE products
		 SET updated_at = updated_at
		 WHERE id = ?
		   AND stock - (SELECT COALESCE(SUM(stock), 0) FROM product_variants WHERE product_id = ?) >= ?`,
		productID, productID, qty,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CreateVariant persists a new variant row.
func (r *Repository) CreateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return nil, err
	}
	return variant, nil
}

// DeleteVariantCascade removes the variant together with its transactions.
func (r *Repository) DeleteVariantCascade(ctx context.Context, variantID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Delete(&models.Transaction{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.ProductVariant{}, "id = ?", variantID).Error
}

// DeleteProductCascade removes the product together with its variants and
// transactions. Callers wrap it in a transaction.
func (r *Repository) DeleteProductCascade(ctx context.Context, productID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.Transaction{}).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", productID).Error
}
