package cart

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adigart/adigart-backend/internal/access"
	"github.com/adigart/adigart-backend/internal/ledger"
	"github.com/adigart/adigart-backend/internal/transactions"
	"github.com/adigart/adigart-backend/pkg/db/models"
	"github.com/adigart/adigart-backend/pkg/enums"
	pkgerrors "github.com/adigart/adigart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
}

// CheckoutLine is one product or variant position in the cart.
type CheckoutLine struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
	Type      enums.TransactionType
	// Amount overrides the computed price * quantity for this line.
	Amount *decimal.Decimal
}

// CheckoutInput is the whole cart handed over at the stand. The payment
// method and comment apply to every line.
type CheckoutInput struct {
	PaymentMethod *enums.PaymentMethod
	Comment       *string
	Lines         []CheckoutLine
}

const maxCommentLength = 255

// CheckoutResult reports what one checkout wrote.
type CheckoutResult struct {
	SaleGroupID  uuid.UUID                     `json:"sale_group_id"`
	Transactions []transactions.TransactionDTO `json:"transactions"`
	Total        decimal.Decimal               `json:"total"`
}

// Service turns a cart into transactions. All lines commit or none do.
type Service interface {
	Checkout(ctx context.Context, actor access.Actor, input CheckoutInput) (*CheckoutResult, error)
}

type service struct {
	products productLoader
	txRepo   *transactions.Repository
	tx       txRunner
	access   *access.Service
}

// NewService builds the checkout service.
func NewService(products productLoader, txRepo *transactions.Repository, tx txRunner, accessSvc *access.Service) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if txRepo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if accessSvc == nil {
		return nil, fmt.Errorf("access service required")
	}
	return &service{products: products, txRepo: txRepo, tx: tx, access: accessSvc}, nil
}

// preparedLine carries a validated line with its resolved pool and pricing.
type preparedLine struct {
	index  int
	pool   ledger.Pool
	line   CheckoutLine
	amount decimal.Decimal
	method *enums.PaymentMethod
}

// Checkout validates every line, then debits each touched pool once with the
// cart's cumulative demand and writes one transaction row per line, all
// inside a single DB transaction. A failure on any line rolls back the lot.
func (s *service) Checkout(ctx context.Context, actor access.Actor, input CheckoutInput) (*CheckoutResult, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if input.Comment != nil && utf8.RuneCountInString(*input.Comment) > maxCommentLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment cannot exceed 255 characters")
	}

	prepared := make([]preparedLine, 0, len(input.Lines))
	demand := map[string]int{}
	pools := map[string]ledger.Pool{}

	for i, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"line": i})
		}

		product, pool, err := s.resolveLine(ctx, actor, line)
		if err != nil {
			return nil, err
		}

		amount := decimal.Zero
		var method *enums.PaymentMethod
		switch line.Type {
		case enums.TransactionTypeSale:
			if input.PaymentMethod == nil || !input.PaymentMethod.IsValid() {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "a sale requires a valid payment method").
					WithDetails(map[string]any{"line": i})
			}
			method = input.PaymentMethod
			amount = product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			if line.Amount != nil {
				if line.Amount.IsNegative() {
					return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative").
						WithDetails(map[string]any{"line": i})
				}
				amount = *line.Amount
			}
		case enums.TransactionTypeGift:
			// Gifts move stock but no money, whatever the caller sent.
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type").
				WithDetails(map[string]any{"line": i})
		}

		key := pool.Key()
		demand[key] += line.Quantity
		pools[key] = pool
		prepared = append(prepared, preparedLine{
			index:  i,
			pool:   pool,
			line:   line,
			amount: amount,
			method: method,
		})
	}

	saleGroupID := uuid.New()
	result := &CheckoutResult{SaleGroupID: saleGroupID, Total: decimal.Zero}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for key, quantity := range demand {
			if err := ledger.Debit(ctx, tx, pools[key], quantity); err != nil {
				return checkoutFailed(err, prepared, key)
			}
		}

		repo := s.txRepo.WithTx(tx)
		for _, line := range prepared {
			row := &models.Transaction{
				ID:            uuid.New(),
				ProductID:     line.line.ProductID,
				VariantID:     line.pool.VariantID(),
				Type:          line.line.Type,
				PaymentMethod: line.method,
				Quantity:      line.line.Quantity,
				Amount:        line.amount,
				Comment:       input.Comment,
				SaleGroupID:   &saleGroupID,
			}
			if _, err := repo.Insert(ctx, row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert transaction")
			}
			result.Transactions = append(result.Transactions, *transactions.NewTransactionDTO(row))
			result.Total = result.Total.Add(line.amount)
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout")
	}

	return result, nil
}

func (s *service) resolveLine(ctx context.Context, actor access.Actor, line CheckoutLine) (*models.Product, ledger.Pool, error) {
	product, err := s.products.FindByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.Pool{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, ledger.Pool{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.access.RequireProjectAccess(ctx, actor, product.ProjectID); err != nil {
		return nil, ledger.Pool{}, err
	}

	if line.VariantID == nil || *line.VariantID == uuid.Nil {
		return product, ledger.Direct(product.ID), nil
	}

	variant, err := s.products.FindVariantByID(ctx, *line.VariantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.Pool{}, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, ledger.Pool{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if variant.ProductID != product.ID {
		return nil, ledger.Pool{}, pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to this product")
	}
	return product, ledger.Allocated(product.ID, variant.ID), nil
}

// checkoutFailed wraps a ledger failure with the cart lines that hit the
// failing pool so the caller can point at what to fix.
func checkoutFailed(err error, prepared []preparedLine, poolKey string) error {
	var lines []int
	for _, line := range prepared {
		if line.pool.Key() == poolKey {
			lines = append(lines, line.index)
		}
	}

	details := map[string]any{"pool": poolKey, "lines": lines}
	if typed := pkgerrors.As(err); typed != nil {
		if inner, ok := typed.Details().(map[string]any); ok {
			for k, v := range inner {
				details[k] = v
			}
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeCheckoutFailed, err, "checkout could not reserve stock").
		WithDetails(details)
}
