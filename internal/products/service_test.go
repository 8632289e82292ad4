package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adigart/adigart-backend/internal/access"
	"github.com/adigart/adigart-backend/pkg/db/models"
	"github.com/adigart/adigart-backend/pkg/enums"
	pkgerrors "github.com/adigart/adigart-backend/pkg/errors"
)

func TestCreateProductWithInitialVariants(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()
	admin := adminActor()
	projectID := seedProject(t, gdb)

	size := "M"
	product, err := svc.CreateProduct(ctx, admin, CreateProductInput{
		ProjectID: projectID,
		Name:      "T-shirt sérigraphié",
		Price:     decimal.NewFromInt(25),
		Stock:     20,
		Variants:  []VariantInput{{Size: &size, Stock: 5}},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if product.Stock != 20 || len(product.Variants) != 1 {
		t.Fatalf("unexpected product shape: %+v", product)
	}
	if product.AllocatableRemaining != 15 {
		t.Fatalf("expected 15 allocatable, got %d", product.AllocatableRemaining)
	}
}

func TestCreateProductRejectsOverAllocation(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	projectID := seedProject(t, gdb)

	_, err := svc.CreateProduct(context.Background(), adminActor(), CreateProductInput{
		ProjectID: projectID,
		Name:      "Tote bag",
		Price:     decimal.NewFromInt(10),
		Stock:     3,
		Variants:  []VariantInput{{Stock: 2}, {Stock: 2}},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeAllocationExceeded {
		t.Fatalf("expected allocation exceeded, got %v", err)
	}
}

func TestCreateVariantAllocationCeiling(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()
	admin := adminActor()
	projectID := seedProject(t, gdb)

	product, err := svc.CreateProduct(ctx, admin, CreateProductInput{
		ProjectID: projectID,
		Name:      "T-shirt",
		Price:     decimal.NewFromInt(25),
		Stock:     20,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	sizeM := "M"
	if _, err := svc.CreateVariant(ctx, admin, product.ID, VariantInput{Size: &sizeM, Stock: 5}); err != nil {
		t.Fatalf("create variant M: %v", err)
	}

	sizeL := "L"
	_, err = svc.CreateVariant(ctx, admin, product.ID, VariantInput{Size: &sizeL, Stock: 16})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeAllocationExceeded {
		t.Fatalf("expected allocation exceeded for 16 > 15 remaining, got %v", err)
	}

	if _, err := svc.CreateVariant(ctx, admin, product.ID, VariantInput{Size: &sizeL, Stock: 15}); err != nil {
		t.Fatalf("create variant L at exact remaining: %v", err)
	}

	detail, err := svc.GetProduct(ctx, admin, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if detail.AllocatableRemaining != 0 {
		t.Fatalf("expected 0 allocatable, got %d", detail.AllocatableRemaining)
	}
	if len(detail.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(detail.Variants))
	}
}

func TestCreateVariantsAtomicity(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()
	admin := adminActor()
	projectID := seedProject(t, gdb)

	product, err := svc.CreateProduct(ctx, admin, CreateProductInput{
		ProjectID: projectID,
		Name:      "Print A4",
		Price:     decimal.NewFromInt(15),
		Stock:     10,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	_, err = svc.CreateVariants(ctx, admin, product.ID, []VariantInput{{Stock: 6}, {Stock: 6}})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeAllocationExceeded {
		t.Fatalf("expected allocation exceeded, got %v", err)
	}

	var count int64
	if err := gdb.Model(&models.ProductVariant{}).Count(&count).Error; err != nil {
		t.Fatalf("count variants: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no variants after rejected batch, got %d", count)
	}
}

func TestRestockProductAndVariant(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()
	admin := adminActor()
	projectID := seedProject(t, gdb)

	size := "M"
	product, err := svc.CreateProduct(ctx, admin, CreateProductInput{
		ProjectID: projectID,
		Name:      "Sweat",
		Price:     decimal.NewFromInt(40),
		Stock:     8,
		Variants:  []VariantInput{{Size: &size, Stock: 3}},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	restocked, err := svc.Restock(ctx, admin, product.ID, 4)
	if err != nil {
		t.Fatalf("restock product: %v", err)
	}
	if restocked.Stock != 12 {
		t.Fatalf("expected stock 12, got %d", restocked.Stock)
	}

	variant, err := svc.RestockVariant(ctx, admin, product.Variants[0].ID, 2)
	if err != nil {
		t.Fatalf("restock variant: %v", err)
	}
	if variant.Stock != 5 {
		t.Fatalf("expected variant stock 5, got %d", variant.Stock)
	}

	if _, err := svc.Restock(ctx, admin, product.ID, 0); err == nil {
		t.Fatal("expected validation error for zero quantity")
	}
}

func TestDeleteProductCascades(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()
	admin := adminActor()
	projectID := seedProject(t, gdb)

	size := "M"
	product, err := svc.CreateProduct(ctx, admin, CreateProductInput{
		ProjectID: projectID,
		Name:      "Mug",
		Price:     decimal.NewFromInt(12),
		Stock:     6,
		Variants:  []VariantInput{{Size: &size, Stock: 2}},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	tr := &models.Transaction{
		ID:        uuid.New(),
		ProductID: product.ID,
		Type:      enums.TransactionTypeGift,
		Quantity:  1,
	}
	if err := gdb.Create(tr).Error; err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	if err := svc.DeleteProduct(ctx, admin, product.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	for _, probe := range []struct {
		name  string
		model any
	}{
		{"products", &models.Product{}},
		{"product_variants", &models.ProductVariant{}},
		{"transactions", &models.Transaction{}},
	} {
		var count int64
		if err := gdb.Model(probe.model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", probe.name, err)
		}
		if count != 0 {
			t.Fatalf("expected %s empty after delete, found %d rows", probe.name, count)
		}
	}
}

func TestSellerVisibilityOnProducts(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()
	admin := adminActor()
	projectID := seedProject(t, gdb)

	seller := access.Actor{UserID: uuid.New(), Role: enums.UserRoleSeller}

	product, err := svc.CreateProduct(ctx, admin, CreateProductInput{
		ProjectID: projectID,
		Name:      "Badge",
		Price:     decimal.NewFromInt(3),
		Stock:     50,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if _, err := svc.GetProduct(ctx, seller, product.ID); err == nil {
		t.Fatal("expected forbidden for unassigned seller")
	}

	assignment := &models.ProjectAssignment{ID: uuid.New(), UserID: seller.UserID, ProjectID: projectID}
	if err := gdb.Create(assignment).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	if _, err := svc.GetProduct(ctx, seller, product.ID); err != nil {
		t.Fatalf("expected access after assignment, got %v", err)
	}

	listed, err := svc.ListProducts(ctx, seller, projectID)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 product, got %d", len(listed))
	}
}

func TestCatalogMutationsRequireAdmin(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()
	admin := adminActor()
	projectID := seedProject(t, gdb)

	size := "M"
	product, err := svc.CreateProduct(ctx, admin, CreateProductInput{
		ProjectID: projectID,
		Name:      "Affiche",
		Price:     decimal.NewFromInt(8),
		Stock:     10,
		Variants:  []VariantInput{{Size: &size, Stock: 2}},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	// Even an assigned seller only gets read and restock access.
	seller := access.Actor{UserID: uuid.New(), Role: enums.UserRoleSeller}
	assignment := &models.ProjectAssignment{ID: uuid.New(), UserID: seller.UserID, ProjectID: projectID}
	if err := gdb.Create(assignment).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	expectForbidden := func(name string, err error) {
		t.Helper()
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
			t.Fatalf("%s: expected forbidden for seller, got %v", name, err)
		}
	}

	_, err = svc.CreateProduct(ctx, seller, CreateProductInput{
		ProjectID: projectID,
		Name:      "Sticker",
		Price:     decimal.NewFromInt(2),
		Stock:     5,
	})
	expectForbidden("create product", err)

	_, err = svc.UpdateProduct(ctx, seller, product.ID, UpdateProductInput{})
	expectForbidden("update product", err)

	expectForbidden("delete product", svc.DeleteProduct(ctx, seller, product.ID))

	_, err = svc.CreateVariants(ctx, seller, product.ID, []VariantInput{{Stock: 1}})
	expectForbidden("create variants", err)

	expectForbidden("delete variant", svc.DeleteVariant(ctx, seller, product.Variants[0].ID))

	if _, err := svc.Restock(ctx, seller, product.ID, 3); err != nil {
		t.Fatalf("expected assigned seller to restock, got %v", err)
	}
}

func adminActor() access.Actor {
	return access.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

type gormTxRunner struct{ db *gorm.DB }

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	gdb := newTestDB(t)
	accessSvc := access.NewService(access.NewRepository(gdb))
	svc, err := NewService(NewRepository(gdb), gormTxRunner{db: gdb}, accessSvc)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, gdb
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	for _, ddl := range testSchema {
		if err := gdb.Exec(ddl).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return gdb
}

var testSchema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  start_date DATETIME,
  end_date DATETIME,
  archived BOOLEAN NOT NULL DEFAULT FALSE,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS project_assignments (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  project_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (user_id, project_id)
);`,
	`CREATE TABLE IF NOT EXISTS products (
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
);`,
	`CREATE TABLE IF NOT EXISTS product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  size TEXT,
  color TEXT,
  sku TEXT,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  variant_id TEXT,
  type TEXT NOT NULL,
  payment_method TEXT,
  quantity INTEGER NOT NULL,
  amount NUMERIC NOT NULL DEFAULT 0,
  comment TEXT,
  sale_group_id TEXT,
  created_at DATETIME
);`,
}

func seedProject(t *testing.T, gdb *gorm.DB) uuid.UUID {
	t.Helper()
	project := &models.Project{ID: uuid.New(), Name: "Festival"}
	if err := gdb.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project.ID
}
