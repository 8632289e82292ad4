package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adigart/adigart-backend/pkg/db/models"
	"github.com/adigart/adigart-backend/pkg/enums"
)

// RecordTransactionInput holds the validated payload for a stock movement.
type RecordTransactionInput struct {
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	Type          enums.TransactionType
	PaymentMethod *enums.PaymentMethod
	Quantity      int
	Amount        decimal.Decimal
	Comment       *string
	SaleGroupID   *uuid.UUID
}

// UpdateTransactionInput holds optional corrections to a recorded movement.
// The targeted product/variant pool is fixed for the life of the record.
type UpdateTransactionInput struct {
	Type          *enums.TransactionType
	PaymentMethod *enums.PaymentMethod
	Quantity      *int
	Amount        *decimal.Decimal
	Comment       *string
}

// TransactionDTO is the API representation of a recorded movement.
type TransactionDTO struct {
	ID            uuid.UUID             `json:"id"`
	ProductID     uuid.UUID             `json:"product_id"`
	VariantID     *uuid.UUID            `json:"variant_id,omitempty"`
	Type          enums.TransactionType `json:"type"`
	PaymentMethod *enums.PaymentMethod  `json:"payment_method,omitempty"`
	Quantity      int                   `json:"quantity"`
	Amount        decimal.Decimal       `json:"amount"`
	Comment       *string               `json:"comment,omitempty"`
	SaleGroupID   *uuid.UUID            `json:"sale_group_id,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// NewTransactionDTO maps the model to its API shape.
func NewTransactionDTO(tr *models.Transaction) *TransactionDTO {
	if tr == nil {
		return nil
	}
	return &TransactionDTO{
		ID:            tr.ID,
		ProductID:     tr.ProductID,
		VariantID:     tr.VariantID,
		Type:          tr.Type,
		PaymentMethod: tr.PaymentMethod,
		Quantity:      tr.Quantity,
		Amount:        tr.Amount,
		Comment:       tr.Comment,
		SaleGroupID:   tr.SaleGroupID,
		CreatedAt:     tr.CreatedAt,
	}
}
