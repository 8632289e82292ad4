package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"

	pkgerrors "github.com/adigart/adigart-backend/pkg/errors"
)

// Debit decreases the pool's stock by qty. The check and the decrement are a
// single conditional UPDATE, so two concurrent debits of the last unit cannot
// both succeed. Must run inside the same transaction as the ledger row that
// justifies the movement.
func Debit(ctx context.Context, tx *gorm.DB, pool Pool, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "ledger debit requires a transaction handle")
	}
	if err := pool.validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock pool")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit quantity must be positive")
	}

	model, id := pool.model()
	res := tx.WithContext(ctx).
		Model(model).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "debit stock")
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// Zero rows: either the pool is gone or the stock check failed.
	available, err := Stock(ctx, tx, pool)
	if err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock below requested quantity").
		WithDetails(map[string]any{
			"pool":      pool.Key(),
			"available": available,
			"requested": qty,
		})
}

// Credit increases the pool's stock by qty. There is no upper bound; restocks
// and reconciliations always succeed when the pool exists.
func Credit(ctx context.Context, tx *gorm.DB, pool Pool, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "ledger credit requires a transaction handle")
	}
	if err := pool.validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock pool")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit quantity must be positive")
	}

	model, id := pool.model()
	res := tx.WithContext(ctx).
		Model(model).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "credit stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "stock pool not found").
			WithDetails(map[string]any{"pool": pool.Key()})
	}
	return nil
}

// Stock reads the pool's current value through the provided handle.
func Stock(ctx context.Context, tx *gorm.DB, pool Pool) (int, error) {
	if err := pool.validate(); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock pool")
	}

	model, id := pool.model()
	var row struct{ Stock int }
	err := tx.WithContext(ctx).
		Model(model).
		Select("stock").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "stock pool not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read stock")
	}
	return row.Stock, nil
}
