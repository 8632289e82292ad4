package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adigart/adigart-backend/pkg/db/models"
	pkgerrors "github.com/adigart/adigart-backend/pkg/errors"
)

func TestDebitDirectPool(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 5)

	if err := Debit(ctx, db, Direct(product.ID), 3); err != nil {
		t.Fatalf("debit: %v", err)
	}

	stock, err := Stock(ctx, db, Direct(product.ID))
	if err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if stock != 2 {
		t.Fatalf("expected stock 2, got %d", stock)
	}
}

func TestDebitInsufficientStockLeavesPoolUntouched(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 2)

	err := Debit(ctx, db, Direct(product.ID), 3)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}

	stock, err := Stock(ctx, db, Direct(product.ID))
	if err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if stock != 2 {
		t.Fatalf("expected stock unchanged at 2, got %d", stock)
	}
}

func TestDebitAllocatedPool(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)
	variant := seedVariant(t, db, product.ID, 4)

	pool := Resolve(product.ID, &variant.ID)
	if !pool.IsVariant() {
		t.Fatal("expected resolve to pick the variant pool")
	}

	if err := Debit(ctx, db, pool, 4); err != nil {
		t.Fatalf("debit variant: %v", err)
	}

	stock, err := Stock(ctx, db, pool)
	if err != nil {
		t.Fatalf("read variant stock: %v", err)
	}
	if stock != 0 {
		t.Fatalf("expected variant stock 0, got %d", stock)
	}

	// Parent product stock is untouched by variant movements.
	parentStock, err := Stock(ctx, db, Direct(product.ID))
	if err != nil {
		t.Fatalf("read product stock: %v", err)
	}
	if parentStock != 10 {
		t.Fatalf("expected product stock 10, got %d", parentStock)
	}
}

func TestCreditRestoresStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 1)

	if err := Credit(ctx, db, Direct(product.ID), 7); err != nil {
		t.Fatalf("credit: %v", err)
	}

	stock, err := Stock(ctx, db, Direct(product.ID))
	if err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if stock != 8 {
		t.Fatalf("expected stock 8, got %d", stock)
	}
}

func TestCreditUnknownPool(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	err := Credit(context.Background(), db, Direct(uuid.New()), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDebitRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	product := seedProduct(t, db, 5)

	for _, qty := range []int{0, -2} {
		err := Debit(context.Background(), db, Direct(product.ID), qty)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("qty %d: expected validation error, got %v", qty, err)
		}
	}
}

func TestConcurrentDebitsNeverOversell(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 3)

	const sellers = 8
	var wg sync.WaitGroup
	results := make(chan error, sellers)
	for i := 0; i < sellers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- db.Transaction(func(tx *gorm.DB) error {
				return Debit(ctx, tx, Direct(product.ID), 1)
			})
		}()
	}
	wg.Wait()
	close(results)

	successes, insufficient := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeInsufficientStock:
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 3 || insufficient != sellers-3 {
		t.Fatalf("expected 3 successes and %d rejections, got %d/%d", sellers-3, successes, insufficient)
	}

	stock, err := Stock(ctx, db, Direct(product.ID))
	if err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if stock != 0 {
		t.Fatalf("expected stock drained to 0, got %d", stock)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db handle: %v", err)
	}
	// One connection keeps sqlite honest under the concurrency tests.
	sqlDB.SetMaxOpenConns(1)

	for _, ddl := range []string{productsDDL, variantsDDL} {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

const productsDDL = `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT,
  price NUMERIC NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  category_id TEXT,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`

const variantsDDL = `
CREATE TABLE IF NOT EXISTS product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  size TEXT,
  color TEXT,
  sku TEXT,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at DATETIME
);`

func seedProduct(t *testing.T, db *gorm.DB, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:        uuid.New(),
		ProjectID: uuid.New(),
		Name:      "Affiche A3",
		Stock:     stock,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedVariant(t *testing.T, db *gorm.DB, productID uuid.UUID, stock int) *models.ProductVariant {
	t.Helper()
	size := "M"
	variant := &models.ProductVariant{
		ID:        uuid.New(),
		ProductID: productID,
		Size:      &size,
		Stock:     stock,
	}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
	return variant
}
