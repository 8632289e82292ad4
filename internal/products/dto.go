package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adigart/adigart-backend/pkg/db/models"
)

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	ProjectID  uuid.UUID
	Name       string
	SKU        *string
	Price      decimal.Decimal
	Stock      int
	CategoryID *uuid.UUID
	ImageURL   *string
	Variants   []VariantInput
}

// UpdateProductInput holds optional mutation values for a product. Stock is
// deliberately absent; stock only moves through restocks and transactions.
type UpdateProductInput struct {
	Name       *string
	SKU        *string
	Price      *decimal.Decimal
	CategoryID *uuid.UUID
	ImageURL   *string
}

// VariantInput describes one variant to carve out of the product's stock.
type VariantInput struct {
	Size  *string
	Color *string
	SKU   *string
	Stock int
}

// VariantDTO is the API representation of a product variant.
type VariantDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Size      *string   `json:"size,omitempty"`
	Color     *string   `json:"color,omitempty"`
	SKU       *string   `json:"sku,omitempty"`
	Stock     int       `json:"stock"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductDTO is the API representation of a product with its variants.
type ProductDTO struct {
	ID                   uuid.UUID       `json:"id"`
	ProjectID            uuid.UUID       `json:"project_id"`
	Name                 string          `json:"name"`
	SKU                  *string         `json:"sku,omitempty"`
	Price                decimal.Decimal `json:"price"`
	Stock                int             `json:"stock"`
	CategoryID           *uuid.UUID      `json:"category_id,omitempty"`
	ImageURL             *string         `json:"image_url,omitempty"`
	Variants             []VariantDTO    `json:"variants"`
	AllocatableRemaining int             `json:"allocatable_remaining"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// NewVariantDTO maps the model to its API shape.
func NewVariantDTO(variant *models.ProductVariant) *VariantDTO {
	if variant == nil {
		return nil
	}
	return &VariantDTO{
		ID:        variant.ID,
		ProductID: variant.ProductID,
		Size:      variant.Size,
		Color:     variant.Color,
		SKU:       variant.SKU,
		Stock:     variant.Stock,
		Label:     variant.Label(),
		CreatedAt: variant.CreatedAt,
	}
}

// NewProductDTO maps the model, including preloaded variants, to its API shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	variants := make([]VariantDTO, 0, len(product.Variants))
	for i := range product.Variants {
		variants = append(variants, *NewVariantDTO(&product.Variants[i]))
	}
	return &ProductDTO{
		ID:                   product.ID,
		ProjectID:            product.ProjectID,
		Name:                 product.Name,
		SKU:                  product.SKU,
		Price:                product.Price,
		Stock:                product.Stock,
		CategoryID:           product.CategoryID,
		ImageURL:             product.ImageURL,
		Variants:             variants,
		AllocatableRemaining: product.AllocatableRemaining(),
		CreatedAt:            product.CreatedAt,
		UpdatedAt:            product.UpdatedAt,
	}
}
