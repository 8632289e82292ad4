package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/adigart/adigart-backend/api/routes"
	"github.com/adigart/adigart-backend/internal/access"
	"github.com/adigart/adigart-backend/internal/auth"
	"github.com/adigart/adigart-backend/internal/cart"
	"github.com/adigart/adigart-backend/internal/categories"
	"github.com/adigart/adigart-backend/internal/products"
	"github.com/adigart/adigart-backend/internal/projects"
	"github.com/adigart/adigart-backend/internal/reports"
	"github.com/adigart/adigart-backend/internal/transactions"
	"github.com/adigart/adigart-backend/pkg/auth/session"
	"github.com/adigart/adigart-backend/pkg/config"
	"github.com/adigart/adigart-backend/pkg/db"
	"github.com/adigart/adigart-backend/pkg/logger"
	"github.com/adigart/adigart-backend/pkg/metrics"
	"github.com/adigart/adigart-backend/pkg/migrate"
	"github.com/adigart/adigart-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	accessService := access.NewService(access.NewRepository(gdb))

	authService, err := auth.NewService(auth.ServiceParams{
		Repo:           auth.NewRepository(gdb),
		TxRunner:       dbClient,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	adminRegisterSvc, err := auth.NewAdminRegisterService(auth.NewRepository(gdb), dbClient, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin register service", err)
		os.Exit(1)
	}

	projectService, err := projects.NewService(projects.NewRepository(gdb), dbClient, accessService)
	if err != nil {
		logg.Error(context.Background(), "failed to create project service", err)
		os.Exit(1)
	}
	categoryService, err := categories.NewService(gdb, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}
	productRepo := products.NewRepository(gdb)
	productService, err := products.NewService(productRepo, dbClient, accessService)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}
	transactionRepo := transactions.NewRepository(gdb)
	transactionService, err := transactions.NewService(transactionRepo, productRepo, dbClient, accessService)
	if err != nil {
		logg.Error(context.Background(), "failed to create transaction service", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(productRepo, transactionRepo, dbClient, accessService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	reportService, err := reports.NewService(reports.NewRepository(gdb), accessService, logg, cfg.Export)
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			SessionManager: sessionManager,
			HTTPMetrics:    httpMetrics,
			PromRegistry:   promRegistry,

			AuthService:        authService,
			AdminRegisterSvc:   adminRegisterSvc,
			AccessService:      accessService,
			ProjectService:     projectService,
			CategoryService:    categoryService,
			ProductService:     productService,
			TransactionService: transactionService,
			CartService:        cartService,
			ReportService:      reportService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
