package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adigart/adigart-backend/internal/access"
	pkgAuth "github.com/adigart/adigart-backend/pkg/auth"
	"github.com/adigart/adigart-backend/pkg/config"
	"github.com/adigart/adigart-backend/pkg/enums"
	pkgerrors "github.com/adigart/adigart-backend/pkg/errors"
)

func TestLoginIssuesTokenPair(t *testing.T) {
	t.Parallel()

	svc, admin, _ := newTestService(t)
	seedUser(t, svc, admin, "vendeur@adigart.fr", "s3cret-pass")

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Vendeur@Adigart.fr",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.RefreshToken != "refresh-token-1" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Role != enums.UserRoleSeller {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ID == "" {
		t.Fatalf("expected a session id in the token")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	svc, admin, _ := newTestService(t)
	seedUser(t, svc, admin, "vendeur@adigart.fr", "s3cret-pass")

	cases := []LoginRequest{
		{Email: "vendeur@adigart.fr", Password: "wrong"},
		{Email: "nobody@adigart.fr", Password: "s3cret-pass"},
		{Email: "", Password: "s3cret-pass"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for %q, got %v", req.Email, err)
		}
	}
}

func TestCreateSellerGeneratesTempPassword(t *testing.T) {
	t.Parallel()

	svc, admin, _ := newTestService(t)

	resp, err := svc.CreateSeller(context.Background(), admin, CreateSellerRequest{
		Email: "nouveau@adigart.fr",
	})
	if err != nil {
		t.Fatalf("create seller: %v", err)
	}
	if resp.TempPassword == "" {
		t.Fatalf("expected a generated temp password")
	}
	if resp.User.Role != enums.UserRoleSeller {
		t.Fatalf("expected seller role, got %s", resp.User.Role)
	}

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nouveau@adigart.fr",
		Password: resp.TempPassword,
	})
	if err != nil {
		t.Fatalf("login with temp password: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Fatalf("expected the created account to sign in")
	}
}

func TestCreateSellerRejectsDuplicatesAndNonAdmins(t *testing.T) {
	t.Parallel()

	svc, admin, _ := newTestService(t)

	password := "chosen-pass-123"
	if _, err := svc.CreateSeller(context.Background(), admin, CreateSellerRequest{
		Email:    "double@adigart.fr",
		Password: &password,
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.CreateSeller(context.Background(), admin, CreateSellerRequest{Email: "double@adigart.fr"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	seller := access.Actor{UserID: uuid.New(), Role: enums.UserRoleSeller}
	_, err = svc.CreateSeller(context.Background(), seller, CreateSellerRequest{Email: "autre@adigart.fr"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAdminRegister(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc, err := NewAdminRegisterService(NewRepository(gdb), gormTxRunner{db: gdb}, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	user, err := svc.Register(context.Background(), AdminRegisterRequest{
		Email:    "Admin@Adigart.fr",
		Password: "super-secret-1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != enums.UserRoleAdmin || user.Email != "admin@adigart.fr" {
		t.Fatalf("unexpected user %+v", user)
	}

	_, err = svc.Register(context.Background(), AdminRegisterRequest{
		Email:    "admin@adigart.fr",
		Password: "super-secret-1",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

type stubSessionManager struct {
	calls int
}

func (m *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	m.calls++
	return "refresh-token-1", nil
}

type gormTxRunner struct{ db *gorm.DB }

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "adigart-test",
		ExpirationMinutes: 15,
	}
}

func newTestService(t *testing.T) (Service, access.Actor, *gorm.DB) {
	t.Helper()
	gdb := newTestDB(t)
	svc, err := NewService(ServiceParams{
		Repo:           NewRepository(gdb),
		TxRunner:       gormTxRunner{db: gdb},
		SessionManager: &stubSessionManager{},
		JWTConfig:      testJWTConfig(),
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	admin := access.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	return svc, admin, gdb
}

// seedUser goes through CreateSeller so the stored hash matches production.
func seedUser(t *testing.T, svc Service, admin access.Actor, email, password string) {
	t.Helper()
	if _, err := svc.CreateSeller(context.Background(), admin, CreateSellerRequest{
		Email:    email,
		Password: &password,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	ddl := `CREATE TABLE IF NOT EXISTS user_profiles (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at DATETIME
);`
	if err := gdb.Exec(ddl).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return gdb
}
