package reports

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adigart/adigart-backend/internal/transactions"
	"github.com/adigart/adigart-backend/pkg/enums"
	"github.com/adigart/adigart-backend/pkg/pagination"
)

// ProjectSummaryDTO aggregates a project's recorded movements.
type ProjectSummaryDTO struct {
	ProjectID    uuid.UUID            `json:"project_id"`
	TotalRevenue decimal.Decimal      `json:"total_revenue"`
	CashRevenue  decimal.Decimal      `json:"cash_revenue"`
	CardRevenue  decimal.Decimal      `json:"card_revenue"`
	SalesCount   int64                `json:"sales_count"`
	GiftsCount   int64                `json:"gifts_count"`
	QuantitySold int64                `json:"quantity_sold"`
	Products     []ProductQuantityDTO `json:"products"`
}

// ProductQuantityDTO is one product's share of the project's movements.
type ProductQuantityDTO struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	QuantitySold int64     `json:"quantity_sold"`
}

// HistoryParams filters and paginates the transaction history.
type HistoryParams struct {
	Pagination pagination.Params
	Type       *enums.TransactionType
	ProductID  *uuid.UUID
	Search     string
}

// HistoryPage is one cursor page of movements, newest first.
type HistoryPage struct {
	Items      []transactions.TransactionDTO `json:"items"`
	NextCursor string                        `json:"next_cursor,omitempty"`
}
