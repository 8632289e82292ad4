package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adigart/adigart-backend/internal/access"
	"github.com/adigart/adigart-backend/internal/ledger"
	"github.com/adigart/adigart-backend/pkg/db/models"
	pkgerrors "github.com/adigart/adigart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes product and variant management operations.
type Service interface {
	CreateProduct(ctx context.Context, actor access.Actor, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, actor access.Actor, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, actor access.Actor, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, actor access.Actor, projectID uuid.UUID) ([]ProductDTO, error)
	DeleteProduct(ctx context.Context, actor access.Actor, productID uuid.UUID) error
	Restock(ctx context.Context, actor access.Actor, productID uuid.UUID, quantity int) (*ProductDTO, error)
	CreateVariant(ctx context.Context, actor access.Actor, productID uuid.UUID, input VariantInput) (*VariantDTO, error)
	CreateVariants(ctx context.Context, actor access.Actor, productID uuid.UUID, inputs []VariantInput) ([]VariantDTO, error)
	RestockVariant(ctx context.Context, actor access.Actor, variantID uuid.UUID, quantity int) (*VariantDTO, error)
	DeleteVariant(ctx context.Context, actor access.Actor, variantID uuid.UUID) error
}

type service struct {
	repo   *Repository
	tx     txRunner
	access *access.Service
}

// NewService constructs a product service instance.
func NewService(repo *Repository, tx txRunner, accessSvc *access.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if accessSvc == nil {
		return nil, fmt.Errorf("access service required")
	}
	return &service{repo: repo, tx: tx, access: accessSvc}, nil
}

// CreateProduct creates the product and any initial variants. Admin only.
func (s *service) CreateProduct(ctx context.Context, actor access.Actor, input CreateProductInput) (*ProductDTO, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.access.RequireProjectAccess(ctx, actor, input.ProjectID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	allocated := 0
	for _, variant := range input.Variants {
		if variant.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant stock cannot be negative")
		}
		allocated += variant.Stock
	}
	if allocated > input.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeAllocationExceeded, "variant stocks exceed product stock").
			WithDetails(map[string]any{"stock": input.Stock, "allocated": allocated})
	}

	var createdID uuid.UUID
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product := &models.Product{
			ID:         uuid.New(),
			ProjectID:  input.ProjectID,
			Name:       name,
			SKU:        input.SKU,
			Price:      input.Price,
			Stock:      input.Stock,
			CategoryID: input.CategoryID,
			ImageURL:   input.ImageURL,
		}
		created, err := txRepo.CreateProduct(ctx, product)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		createdID = created.ID

		for _, variant := range input.Variants {
			row := &models.ProductVariant{
				ID:        uuid.New(),
				ProductID: created.ID,
				Size:      variant.Size,
				Color:     variant.Color,
				SKU:       variant.SKU,
				Stock:     variant.Stock,
			}
			if _, err := txRepo.CreateVariant(ctx, row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert variant")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	return s.loadDTO(ctx, createdID)
}

// UpdateProduct applies partial updates to the product's descriptive fields.
// Admin only.
func (s *service) UpdateProduct(ctx context.Context, actor access.Actor, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
	}
	if input.SKU != nil {
		product.SKU = input.SKU
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}

	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return s.loadDTO(ctx, productID)
}

// GetProduct loads one product with variants, enforcing the actor's visibility.
func (s *service) GetProduct(ctx context.Context, actor access.Actor, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product), nil
}

// ListProducts returns the project's products.
func (s *service) ListProducts(ctx context.Context, actor access.Actor, projectID uuid.UUID) ([]ProductDTO, error) {
	if err := s.access.RequireProjectAccess(ctx, actor, projectID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out, nil
}

// DeleteProduct removes the product, its variants, and its transaction
// history in one transaction. Admin only.
func (s *service) DeleteProduct(ctx context.Context, actor access.Actor, productID uuid.UUID) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.loadProduct(ctx, actor, productID); err != nil {
		return err
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteProductCascade(ctx, productID)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// Restock adds quantity to the product's own stock pool.
func (s *service) Restock(ctx context.Context, actor access.Actor, productID uuid.UUID, quantity int) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return ledger.Credit(ctx, tx, ledger.Direct(product.ID), quantity)
	}); err != nil {
		return nil, err
	}
	return s.loadDTO(ctx, productID)
}

// CreateVariant carves one new variant out of the product's stock ceiling.
func (s *service) CreateVariant(ctx context.Context, actor access.Actor, productID uuid.UUID, input VariantInput) (*VariantDTO, error) {
	created, err := s.CreateVariants(ctx, actor, productID, []VariantInput{input})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// CreateVariants creates several variants atomically; either every variant
// fits under the allocation ceiling or none is created. Admin only.
func (s *service) CreateVariants(ctx context.Context, actor access.Actor, productID uuid.UUID, inputs []VariantInput) ([]VariantDTO, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one variant is required")
	}
	product, err := s.loadProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, input := range inputs {
		if input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant stock cannot be negative")
		}
		total += input.Stock
	}

	var created []VariantDTO
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		ok, err := txRepo.ClaimAllocation(ctx, productID, total)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim allocation")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeAllocationExceeded, "variant stocks exceed product stock").
				WithDetails(map[string]any{
					"product_id": productID,
					"requested":  total,
					"available":  product.AllocatableRemaining(),
				})
		}

		for _, input := range inputs {
			row := &models.ProductVariant{
				ID:        uuid.New(),
				ProductID: productID,
				Size:      input.Size,
				Color:     input.Color,
				SKU:       input.SKU,
				Stock:     input.Stock,
			}
			if _, err := txRepo.CreateVariant(ctx, row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert variant")
			}
			created = append(created, *NewVariantDTO(row))
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create variants")
	}
	return created, nil
}

// RestockVariant adds quantity to one variant's stock pool. The parent
// product is untouched; variant movements only ever hit the variant pool.
func (s *service) RestockVariant(ctx context.Context, actor access.Actor, variantID uuid.UUID, quantity int) (*VariantDTO, error) {
	variant, err := s.repo.FindVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if _, err := s.loadProduct(ctx, actor, variant.ProductID); err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return ledger.Credit(ctx, tx, ledger.Allocated(variant.ProductID, variant.ID), quantity)
	}); err != nil {
		return nil, err
	}

	reloaded, err := s.repo.FindVariantByID(ctx, variantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload variant")
	}
	return NewVariantDTO(reloaded), nil
}

// DeleteVariant removes the variant and its transaction history. Admin only.
func (s *service) DeleteVariant(ctx context.Context, actor access.Actor, variantID uuid.UUID) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	variant, err := s.repo.FindVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if _, err := s.loadProduct(ctx, actor, variant.ProductID); err != nil {
		return err
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteVariantCascade(ctx, variantID)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete variant")
	}
	return nil
}

func (s *service) loadProduct(ctx context.Context, actor access.Actor, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.access.RequireProjectAccess(ctx, actor, product.ProjectID); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) loadDTO(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	return NewProductDTO(product), nil
}
