package transactions

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
	"github.com/adigart/adigart-backend/pkg/db/models"
	"github.com/adigart/adigart-backend/pkg/enums"
	pkgerrors "github.com/adigart/adigart-backend/pkg/errors"
)

const maxCommentLength = 255

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
}

// Service records, corrects, and removes stock movements. Every mutation
// keeps the transaction row and the stock pool in step inside one DB
// transaction.
type Service interface {
	Record(ctx context.Context, actor access.Actor, input RecordTransactionInput) (*TransactionDTO, error)
	Update(ctx context.Context, actor access.Actor, transactionID uuid.UUID, input UpdateTransactionInput) (*TransactionDTO, error)
	Delete(ctx context.Context, actor access.Actor, transactionID uuid.UUID) error
	ClearHistory(ctx context.Context, actor access.Actor, projectID uuid.UUID) (int64, error)
}

type service struct {
	repo     *Repository
	products productLoader
	tx       txRunner
	access   *access.Service
}

// NewService constructs a transaction service instance.
func NewService(repo *Repository, products productLoader, tx txRunner, accessSvc *access.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if accessSvc == nil {
		return nil, fmt.Errorf("access service required")
	}
	return &service{repo: repo, products: products, tx: tx, access: accessSvc}, nil
}

// Record debits the targeted pool and persists the movement atomically.
func (s *service) Record(ctx context.Context, actor access.Actor, input RecordTransactionInput) (*TransactionDTO, error) {
	pool, err := s.resolvePool(ctx, actor, input.ProductID, input.VariantID)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeMovement(input.Type, input.PaymentMethod, input.Amount)
	if err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if err := validateComment(input.Comment); err != nil {
		return nil, err
	}

	row := &models.Transaction{
		ID:            uuid.New(),
		ProductID:     input.ProductID,
		VariantID:     pool.VariantID(),
		Type:          input.Type,
		PaymentMethod: normalized.paymentMethod,
		Quantity:      input.Quantity,
		Amount:        normalized.amount,
		Comment:       input.Comment,
		SaleGroupID:   input.SaleGroupID,
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := ledger.Debit(ctx, tx, pool, input.Quantity); err != nil {
			return err
		}
		if _, err := s.repo.WithTx(tx).Insert(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert transaction")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record transaction")
	}

	return NewTransactionDTO(row), nil
}

// Update corrects a recorded movement. The pool is fixed; quantity changes
// settle against the pool as a delta debit or credit.
func (s *service) Update(ctx context.Context, actor access.Actor, transactionID uuid.UUID, input UpdateTransactionInput) (*TransactionDTO, error) {
	tr, err := s.loadTransaction(ctx, actor, transactionID)
	if err != nil {
		return nil, err
	}

	newType := tr.Type
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
		}
		newType = *input.Type
	}

	newMethod := tr.PaymentMethod
	if input.PaymentMethod != nil {
		newMethod = input.PaymentMethod
	}
	// A gift carries a zero amount, so turning it into a sale cannot
	// inherit one. The caller has to supply the price.
	if tr.Type == enums.TransactionTypeGift && newType == enums.TransactionTypeSale && input.Amount == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "converting a gift into a sale requires an amount")
	}
	newAmount := tr.Amount
	if input.Amount != nil {
		newAmount = *input.Amount
	}

	normalized, err := normalizeMovement(newType, newMethod, newAmount)
	if err != nil {
		return nil, err
	}

	newQuantity := tr.Quantity
	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		newQuantity = *input.Quantity
	}
	if err := validateComment(input.Comment); err != nil {
		return nil, err
	}

	pool := ledger.Resolve(tr.ProductID, tr.VariantID)
	delta := newQuantity - tr.Quantity

	tr.Type = newType
	tr.PaymentMethod = normalized.paymentMethod
	tr.Amount = normalized.amount
	tr.Quantity = newQuantity
	if input.Comment != nil {
		tr.Comment = input.Comment
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		switch {
		case delta > 0:
			if err := ledger.Debit(ctx, tx, pool, delta); err != nil {
				return err
			}
		case delta < 0:
			if err := ledger.Credit(ctx, tx, pool, -delta); err != nil {
				return err
			}
		}
		if _, err := s.repo.WithTx(tx).Update(ctx, tr); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update transaction")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transaction")
	}

	return NewTransactionDTO(tr), nil
}

// Delete removes the movement and returns its quantity to the pool.
func (s *service) Delete(ctx context.Context, actor access.Actor, transactionID uuid.UUID) error {
	tr, err := s.loadTransaction(ctx, actor, transactionID)
	if err != nil {
		return err
	}

	pool := ledger.Resolve(tr.ProductID, tr.VariantID)
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := ledger.Credit(ctx, tx, pool, tr.Quantity); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Delete(ctx, tr.ID)
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete transaction")
	}
	return nil
}

// ClearHistory wipes the project's transaction log. Stock pools keep their
// current values; this is bookkeeping cleanup, not a rollback. Admin only.
func (s *service) ClearHistory(ctx context.Context, actor access.Actor, projectID uuid.UUID) (int64, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return 0, err
	}

	var removed int64
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		count, err := s.repo.WithTx(tx).DeleteByProject(ctx, projectID)
		if err != nil {
			return err
		}
		removed = count
		return nil
	}); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear history")
	}
	return removed, nil
}

// resolvePool validates the product/variant pair and the actor's access, and
// returns the stock pool the movement targets.
func (s *service) resolvePool(ctx context.Context, actor access.Actor, productID uuid.UUID, variantID *uuid.UUID) (ledger.Pool, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledger.Pool{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return ledger.Pool{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.access.RequireProjectAccess(ctx, actor, product.ProjectID); err != nil {
		return ledger.Pool{}, err
	}

	if variantID == nil || *variantID == uuid.Nil {
		return ledger.Direct(productID), nil
	}

	variant, err := s.products.FindVariantByID(ctx, *variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledger.Pool{}, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return ledger.Pool{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if variant.ProductID != productID {
		return ledger.Pool{}, pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to this product")
	}
	return ledger.Allocated(productID, variant.ID), nil
}

func (s *service) loadTransaction(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Transaction, error) {
	tr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	product, err := s.products.FindByID(ctx, tr.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.access.RequireProjectAccess(ctx, actor, product.ProjectID); err != nil {
		return nil, err
	}
	return tr, nil
}

type movement struct {
	paymentMethod *enums.PaymentMethod
	amount        decimal.Decimal
}

// normalizeMovement enforces the SALE/GIFT rules: sales carry a payment
// method and a non-negative amount, gifts carry neither money nor method.
func normalizeMovement(trType enums.TransactionType, method *enums.PaymentMethod, amount decimal.Decimal) (movement, error) {
	switch trType {
	case enums.TransactionTypeSale:
		if method == nil || !method.IsValid() {
			return movement{}, pkgerrors.New(pkgerrors.CodeValidation, "a sale requires a valid payment method")
		}
		if amount.IsNegative() {
			return movement{}, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
		}
		return movement{paymentMethod: method, amount: amount}, nil
	case enums.TransactionTypeGift:
		return movement{paymentMethod: nil, amount: decimal.Zero}, nil
	default:
		return movement{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}
}

func validateComment(comment *string) error {
	if comment != nil && utf8.RuneCountInString(*comment) > maxCommentLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "comment exceeds 255 characters")
	}
	return nil
}
