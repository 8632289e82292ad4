package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is a size/color declination carrying its own stock pool,
// carved out of the parent product's stock at creation time.
type ProductVariant struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Size      *string   `gorm:"column:size"`
	Color     *string   `gorm:"column:color"`
	SKU       *string   `gorm:"column:sku"`
	Stock     int       `gorm:"column:stock;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the legacy table name.
func (ProductVariant) TableName() string {
	return "product_variants"
}

// Label renders the human-readable "size / color" form used in history and
// exports.
func (v ProductVariant) Label() string {
	switch {
	case v.Size != nil && v.Color != nil:
		return *v.Size + " / " + *v.Color
	case v.Size != nil:
		return *v.Size
	case v.Color != nil:
		return *v.Color
	default:
		return ""
	}
}
