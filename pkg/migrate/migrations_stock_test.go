package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adigart/adigart-backend/pkg/migrate"
)

func TestProductMigrationsGuardStock(t *testing.T) {
	for _, tc := range []struct {
		glob   string
		checks []string
	}{
		{
			glob: "*_create_products.sql",
			checks: []string{
				"CREATE TABLE IF NOT EXISTS products",
				"CHECK (stock >= 0)",
				"FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE",
				"DROP TABLE IF EXISTS products",
			},
		},
		{
			glob: "*_create_product_variants.sql",
			checks: []string{
				"CREATE TABLE IF NOT EXISTS product_variants",
				"CHECK (stock >= 0)",
				"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
				"DROP TABLE IF EXISTS product_variants",
			},
		},
		{
			glob: "*_create_transactions.sql",
			checks: []string{
				"CREATE TABLE IF NOT EXISTS transactions",
				"CHECK (quantity > 0)",
				"CHECK (type IN ('SALE', 'GIFT'))",
				"DROP TABLE IF EXISTS transactions",
			},
		},
	} {
		matches, err := filepath.Glob(filepath.Join("migrations", tc.glob))
		if err != nil {
			t.Fatalf("glob migrations: %v", err)
		}
		if len(matches) == 0 {
			t.Fatalf("no migration file matching %s", tc.glob)
		}

		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read migration file: %v", err)
		}
		content := string(data)

		for _, sub := range tc.checks {
			if !strings.Contains(content, sub) {
				t.Errorf("%s: missing expected statement %q", matches[0], sub)
			}
		}
	}
}

func TestValidateMigrationsDir(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
