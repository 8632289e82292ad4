package reports

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adigart/adigart-backend/internal/access"
	"github.com/adigart/adigart-backend/pkg/config"
	"github.com/adigart/adigart-backend/pkg/db/models"
	"github.com/adigart/adigart-backend/pkg/enums"
	pkgerrors "github.com/adigart/adigart-backend/pkg/errors"
	"github.com/adigart/adigart-backend/pkg/logger"
	"github.com/adigart/adigart-backend/pkg/pagination"
)

func TestProjectSummaryAggregates(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()
	admin := adminActor()

	projectID, productID := seedProject(t, gdb, "Affiche", 15)
	cash := enums.PaymentMethodCash
	card := enums.PaymentMethodCard
	seedTransaction(t, gdb, productID, enums.TransactionTypeSale, &cash, 2, 30, time.Now())
	seedTransaction(t, gdb, productID, enums.TransactionTypeSale, &card, 1, 15, time.Now())
	seedTransaction(t, gdb, productID, enums.TransactionTypeGift, nil, 3, 0, time.Now())

	summary, err := svc.ProjectSummary(ctx, admin, projectID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if want := decimal.NewFromInt(45); !summary.TotalRevenue.Equal(want) {
		t.Fatalf("expected revenue %s, got %s", want, summary.TotalRevenue)
	}
	if want := decimal.NewFromInt(30); !summary.CashRevenue.Equal(want) {
		t.Fatalf("expected cash revenue %s, got %s", want, summary.CashRevenue)
	}
	if want := decimal.NewFromInt(15); !summary.CardRevenue.Equal(want) {
		t.Fatalf("expected card revenue %s, got %s", want, summary.CardRevenue)
	}
	if summary.SalesCount != 2 || summary.GiftsCount != 1 {
		t.Fatalf("expected 2 sales and 1 gift, got %d/%d", summary.SalesCount, summary.GiftsCount)
	}
	if summary.QuantitySold != 6 {
		t.Fatalf("expected quantity 6, got %d", summary.QuantitySold)
	}
	if len(summary.Products) != 1 {
		t.Fatalf("expected one product in breakdown, got %d", len(summary.Products))
	}
	if summary.Products[0].ProductName != "Affiche" || summary.Products[0].QuantitySold != 6 {
		t.Fatalf("unexpected breakdown row %+v", summary.Products[0])
	}
}

func TestProjectSummaryDegradesToZeros(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()
	admin := adminActor()

	projectID, _ := seedProject(t, gdb, "Affiche", 15)

	// Break the read path; the summary must still answer.
	if err := gdb.Exec("DROP TABLE transactions").Error; err != nil {
		t.Fatalf("drop table: %v", err)
	}

	summary, err := svc.ProjectSummary(ctx, admin, projectID)
	if err != nil {
		t.Fatalf("expected degraded summary, got error: %v", err)
	}
	if !summary.TotalRevenue.IsZero() || summary.SalesCount != 0 || summary.GiftsCount != 0 {
		t.Fatalf("expected all-zero summary, got %+v", summary)
	}
}

func TestHistoryPaginatesNewestFirst(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()
	admin := adminActor()

	projectID, productID := seedProject(t, gdb, "Affiche", 15)
	base := time.Date(2026, 7, 12, 14, 0, 0, 0, time.UTC)
	cash := enums.PaymentMethodCash
	for i := 0; i < 3; i++ {
		seedTransaction(t, gdb, productID, enums.TransactionTypeSale, &cash, 1, 15, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := svc.History(ctx, admin, projectID, HistoryParams{Pagination: pagination.Params{Limit: 2}})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Items) != 2 || first.NextCursor == "" {
		t.Fatalf("expected 2 items and a cursor, got %d items", len(first.Items))
	}
	if !first.Items[0].CreatedAt.After(first.Items[1].CreatedAt) {
		t.Fatalf("expected newest first ordering")
	}

	second, err := svc.History(ctx, admin, projectID, HistoryParams{
		Pagination: pagination.Params{Limit: 2, Cursor: first.NextCursor},
	})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Items) != 1 || second.NextCursor != "" {
		t.Fatalf("expected final page of 1, got %d items cursor %q", len(second.Items), second.NextCursor)
	}
}

func TestHistoryFiltersByType(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()
	admin := adminActor()

	projectID, productID := seedProject(t, gdb, "Affiche", 15)
	cash := enums.PaymentMethodCash
	seedTransaction(t, gdb, productID, enums.TransactionTypeSale, &cash, 1, 15, time.Now())
	seedTransaction(t, gdb, productID, enums.TransactionTypeGift, nil, 1, 0, time.Now())

	gift := enums.TransactionTypeGift
	page, err := svc.History(ctx, admin, projectID, HistoryParams{Type: &gift})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Type != enums.TransactionTypeGift {
		t.Fatalf("expected one gift row, got %+v", page.Items)
	}
}

func TestHistoryFiltersBySearch(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()
	admin := adminActor()

	projectID, productID := seedProject(t, gdb, "Affiche", 15)
	cash := enums.PaymentMethodCash
	seedTransaction(t, gdb, productID, enums.TransactionTypeSale, &cash, 1, 15, time.Now())
	seedTransaction(t, gdb, productID, enums.TransactionTypeGift, nil, 1, 0, time.Now())
	comment := "remise pour les bénévoles"
	if err := gdb.Model(&models.Transaction{}).
		Where("type = ?", enums.TransactionTypeGift).
		Update("comment", comment).Error; err != nil {
		t.Fatalf("set comment: %v", err)
	}

	page, err := svc.History(ctx, admin, projectID, HistoryParams{Search: "bénévoles"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Type != enums.TransactionTypeGift {
		t.Fatalf("expected the commented gift row, got %+v", page.Items)
	}

	// Product name matches hit every row of that product.
	page, err = svc.History(ctx, admin, projectID, HistoryParams{Search: "affiche"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected both rows on product name match, got %d", len(page.Items))
	}
}

func TestHistoryRejectsSellerWithoutAssignment(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	projectID, _ := seedProject(t, gdb, "Affiche", 15)

	seller := access.Actor{UserID: uuid.New(), Role: enums.UserRoleSeller}
	_, err := svc.History(context.Background(), seller, projectID, HistoryParams{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	svc, gdb := newTestService(t)
	ctx := context.Background()
	admin := adminActor()

	projectID, productID := seedProject(t, gdb, "T-shirt", 25)
	if err := gdb.Model(&models.Product{}).Where("id = ?", productID).Update("sku", "TS-01").Error; err != nil {
		t.Fatalf("set product sku: %v", err)
	}
	variantSKU := "TS-01-M"
	size := "M"
	variant := &models.ProductVariant{ID: uuid.New(), ProductID: productID, Size: &size, SKU: &variantSKU, Stock: 10}
	if err := gdb.Create(variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}

	cash := enums.PaymentMethodCash
	seedTransaction(t, gdb, productID, enums.TransactionTypeSale, &cash, 2, 50, time.Date(2026, 7, 12, 12, 0, 0, 0, time.UTC))
	seedTransaction(t, gdb, productID, enums.TransactionTypeGift, nil, 1, 0, time.Date(2026, 7, 12, 13, 0, 0, 0, time.UTC))
	variantSale := &models.Transaction{
		ID:            uuid.New(),
		ProductID:     productID,
		VariantID:     &variant.ID,
		Type:          enums.TransactionTypeSale,
		PaymentMethod: &cash,
		Quantity:      1,
		Amount:        decimal.NewFromInt(25),
		CreatedAt:     time.Date(2026, 7, 12, 14, 0, 0, 0, time.UTC),
	}
	if err := gdb.Create(variantSale).Error; err != nil {
		t.Fatalf("seed variant sale: %v", err)
	}

	var buf bytes.Buffer
	if err := svc.ExportCSV(ctx, admin, projectID, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "\xEF\xBB\xBF") {
		t.Fatalf("expected UTF-8 BOM prefix")
	}
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(out, "\xEF\xBB\xBF")), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Date;Produit;Variante;SKU;Type") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "Vente") || !strings.Contains(lines[1], "Espèces") || !strings.Contains(lines[1], "50.00") {
		t.Fatalf("unexpected sale row: %q", lines[1])
	}
	// Without a variant the row falls back to the product SKU.
	if !strings.Contains(lines[1], ";TS-01;") {
		t.Fatalf("expected product sku fallback in sale row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "Don") {
		t.Fatalf("unexpected gift row: %q", lines[2])
	}
	if !strings.Contains(lines[3], ";TS-01-M;") {
		t.Fatalf("expected variant sku in variant row: %q", lines[3])
	}
}

func adminActor() access.Actor {
	return access.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	gdb := newTestDB(t)
	accessSvc := access.NewService(access.NewRepository(gdb))
	log := logger.New(logger.Options{ServiceName: "reports-test", Output: io.Discard})
	svc, err := NewService(NewRepository(gdb), accessSvc, log, config.ExportConfig{TimeZone: "Europe/Paris"})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, gdb
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:reports_" + uuid.NewString() + "?mode=memory&cache=shared"
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

func seedProject(t *testing.T, gdb *gorm.DB, productName string, price int64) (uuid.UUID, uuid.UUID) {
	t.Helper()
	project := &models.Project{ID: uuid.New(), Name: "Festival"}
	if err := gdb.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	product := &models.Product{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Name:      productName,
		Price:     decimal.NewFromInt(price),
		Stock:     100,
	}
	if err := gdb.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return project.ID, product.ID
}

func seedTransaction(t *testing.T, gdb *gorm.DB, productID uuid.UUID, trType enums.TransactionType, method *enums.PaymentMethod, quantity int, amount int64, createdAt time.Time) {
	t.Helper()
	row := &models.Transaction{
		ID:            uuid.New(),
		ProductID:     productID,
		Type:          trType,
		PaymentMethod: method,
		Quantity:      quantity,
		Amount:        decimal.NewFromInt(amount),
		CreatedAt:     createdAt,
	}
	if err := gdb.Create(row).Error; err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
}
