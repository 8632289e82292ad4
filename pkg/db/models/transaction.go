package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adigart/adigart-backend/pkg/enums"
)

// Transaction is the append-only record of one stock movement (sale or gift).
// Rows created by one cart checkout share a SaleGroupID.
type Transaction struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	VariantID     *uuid.UUID            `gorm:"column:variant_id;type:uuid"`
	Type          enums.TransactionType `gorm:"column:type;not null"`
	PaymentMethod *enums.PaymentMethod  `gorm:"column:payment_method"`
	Quantity      int                   `gorm:"column:quantity;not null"`
	Amount        decimal.Decimal       `gorm:"column:amount;type:numeric(10,2);not null"`
	Comment       *string               `gorm:"column:comment;size:255"`
	SaleGroupID   *uuid.UUID            `gorm:"column:sale_group_id;type:uuid"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
}
