package reports

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adigart/adigart-backend/pkg/db/models"
	"github.com/adigart/adigart-backend/pkg/enums"
	"github.com/adigart/adigart-backend/pkg/pagination"
)

// Repository runs the read-side queries behind summaries, history, and
// exports. It never writes.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type summaryRow struct {
	TotalRevenue decimal.Decimal
	CashRevenue  decimal.Decimal
	CardRevenue  decimal.Decimal
	SalesCount   int64
	GiftsCount   int64
	QuantitySold int64
}

// Summary aggregates revenue and movement counts for one project.
func (r *Repository) Summary(ctx context.Context, projectID uuid.UUID) (*summaryRow, error) {
	var row summaryRow
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select(
			"COALESCE(SUM(CASE WHEN transactions.type = ? THEN transactions.amount ELSE 0 END), 0) AS total_revenue, "+
				"COALESCE(SUM(CASE WHEN transactions.type = ? AND transactions.payment_method = ? THEN transactions.amount ELSE 0 END), 0) AS cash_revenue, "+
				"COALESCE(SUM(CASE WHEN transactions.type = ? AND transactions.payment_method = ? THEN transactions.amount ELSE 0 END), 0) AS card_revenue, "+
				"COALESCE(SUM(CASE WHEN transactions.type = ? THEN 1 ELSE 0 END), 0) AS sales_count, "+
				"COALESCE(SUM(CASE WHEN transactions.type = ? THEN 1 ELSE 0 END), 0) AS gifts_count, "+
				"COALESCE(SUM(transactions.quantity), 0) AS quantity_sold",
			enums.TransactionTypeSale,
			enums.TransactionTypeSale, enums.PaymentMethodCash,
			enums.TransactionTypeSale, enums.PaymentMethodCard,
			enums.TransactionTypeSale, enums.TransactionTypeGift,
		).
		Joins("JOIN products ON products.id = transactions.product_id").
		Where("products.project_id = ?", projectID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ProductBreakdown sums moved quantity per product, busiest first.
func (r *Repository) ProductBreakdown(ctx context.Context, projectID uuid.UUID) ([]ProductQuantityDTO, error) {
	var rows []ProductQuantityDTO
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("transactions.product_id, products.name AS product_name, COALESCE(SUM(transactions.quantity), 0) AS quantity_sold").
		Joins("JOIN products ON products.id = transactions.product_id").
		Where("products.project_id = ?", projectID).
		Group("transactions.product_id, products.name").
		Order("quantity_sold DESC, product_name ASC").
		Find(&rows).Error
	return rows, err
}

// HistoryPage returns up to limit movements for the project, newest first,
// resuming after the cursor when one is set.
func (r *Repository) HistoryPage(ctx context.Context, projectID uuid.UUID, params HistoryParams, cursor *pagination.Cursor, limit int) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Joins("JOIN products ON products.id = transactions.product_id").
		Where("products.project_id = ?", projectID)

	if params.Type != nil {
		query = query.Where("transactions.type = ?", *params.Type)
	}
	if params.ProductID != nil {
		query = query.Where("transactions.product_id = ?", *params.ProductID)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(products.name) LIKE ? OR LOWER(COALESCE(transactions.comment, '')) LIKE ?",
			pattern, pattern,
		)
	}
	if cursor != nil {
		query = query.Where(
			"transactions.created_at < ? OR (transactions.created_at = ? AND transactions.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Transaction
	err := query.
		Order("transactions.created_at DESC, transactions.id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ExportRow is one CSV line of the project export, joined with the product
// and variant the movement targeted.
type ExportRow struct {
	CreatedAt     time.Time
	ProductName   string
	ProductSKU    *string
	VariantSize   *string
	VariantColor  *string
	VariantSKU    *string
	Type          enums.TransactionType
	PaymentMethod *enums.PaymentMethod
	Quantity      int
	Amount        decimal.Decimal
	Comment       *string
}

// ExportRows streams every movement of the project, oldest first.
func (r *Repository) ExportRows(ctx context.Context, projectID uuid.UUID) ([]ExportRow, error) {
	var rows []ExportRow
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select(
			"transactions.created_at, products.name AS product_name, products.sku AS product_sku, " +
				"product_variants.size AS variant_size, product_variants.color AS variant_color, " +
				"product_variants.sku AS variant_sku, " +
				"transactions.type, transactions.payment_method, transactions.quantity, " +
				"transactions.amount, transactions.comment",
		).
		Joins("JOIN products ON products.id = transactions.product_id").
		Joins("LEFT JOIN product_variants ON product_variants.id = transactions.variant_id").
		Where("products.project_id = ?", projectID).
		Order("transactions.created_at ASC, transactions.id ASC").
		Find(&rows).Error
	return rows, err
}
