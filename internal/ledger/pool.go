package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/adigart/adigart-backend/pkg/db/models"
)

// Pool identifies the stock counter a movement debits or credits: either a
// product's own stock or one of its variants'. The two cases never mix; an
// operation carrying a variant id always targets the variant pool.
type Pool struct {
	productID uuid.UUID
	variantID *uuid.UUID
}

// Direct targets the product's own stock.
func Direct(productID uuid.UUID) Pool {
	return Pool{productID: productID}
}

// Allocated targets one variant's stock pool.
func Allocated(productID, variantID uuid.UUID) Pool {
	id := variantID
	return Pool{productID: productID, variantID: &id}
}

// Resolve builds the pool for a transaction-shaped (productID, variantID) pair.
func Resolve(productID uuid.UUID, variantID *uuid.UUID) Pool {
	if variantID != nil && *variantID != uuid.Nil {
		return Allocated(productID, *variantID)
	}
	return Direct(productID)
}

// ProductID returns the owning product.
func (p Pool) ProductID() uuid.UUID {
	return p.productID
}

// VariantID returns the variant id when the pool is allocated, nil otherwise.
func (p Pool) VariantID() *uuid.UUID {
	if p.variantID == nil {
		return nil
	}
	id := *p.variantID
	return &id
}

// IsVariant reports whether the pool targets a variant.
func (p Pool) IsVariant() bool {
	return p.variantID != nil
}

// Key returns a stable identifier usable for grouping demand across lines.
func (p Pool) Key() string {
	if p.variantID != nil {
		return "variant:" + p.variantID.String()
	}
	return "product:" + p.productID.String()
}

func (p Pool) String() string {
	if p.variantID != nil {
		return fmt.Sprintf("variant %s (product %s)", p.variantID, p.productID)
	}
	return fmt.Sprintf("product %s", p.productID)
}

// model returns the GORM model matching the pool's table.
func (p Pool) model() (any, uuid.UUID) {
	if p.variantID != nil {
		return &models.ProductVariant{}, *p.variantID
	}
	return &models.Product{}, p.productID
}

var errPoolWithoutProduct = errors.New("pool requires a product id")

func (p Pool) validate() error {
	if p.productID == uuid.Nil {
		return errPoolWithoutProduct
	}
	return nil
}
