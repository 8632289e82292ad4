package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is one sellable listing inside a project. Stock counts whole units;
// once variants exist the product's own stock acts as the allocation ceiling
// for its variant pools.
type Product struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID  uuid.UUID        `gorm:"column:project_id;type:uuid;not null"`
	Name       string           `gorm:"column:name;not null"`
	SKU        *string          `gorm:"column:sku"`
	Price      decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	Stock      int              `gorm:"column:stock;not null;default:0"`
	CategoryID *uuid.UUID       `gorm:"column:category_id;type:uuid"`
	ImageURL   *string          `gorm:"column:image_url"`
	Variants   []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// AllocatableRemaining returns how much of the product's stock ceiling is not
// yet carved into variants. Callers must have preloaded Variants.
func (p Product) AllocatableRemaining() int {
	remaining := p.Stock
	for _, variant := range p.Variants {
		remaining -= variant.Stock
	}
	return remaining
}
