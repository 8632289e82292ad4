package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adigart/adigart-backend/api/controllers"
	"github.com/adigart/adigart-backend/api/middleware"
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
	"github.com/adigart/adigart-backend/pkg/enums"
	"github.com/adigart/adigart-backend/pkg/logger"
	"github.com/adigart/adigart-backend/pkg/metrics"
	"github.com/adigart/adigart-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the router mounts.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             controllers.Pinger
	Redis          *redis.Client
	SessionManager sessionManager
	HTTPMetrics    *metrics.HTTPMetrics
	PromRegistry   *prometheus.Registry

	AuthService        auth.Service
	AdminRegisterSvc   auth.AdminRegisterService
	AccessService      *access.Service
	ProjectService     projects.Service
	CategoryService    *categories.Service
	ProductService     products.Service
	TransactionService transactions.Service
	CartService        cart.Service
	ReportService      reports.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg, deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": deps.DB,
			"redis":    deps.Redis,
		}))
	})

	if deps.PromRegistry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.LoginRateLimit(cfg.RateLimit, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.SessionManager, cfg.JWT, logg))
		if !cfg.App.IsProd() {
			r.Post("/register-admin", controllers.AdminAuthRegister(deps.AdminRegisterSvc, logg))
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", controllers.ProjectList(deps.ProjectService, logg))
			r.Get("/{projectId}", controllers.ProjectGet(deps.ProjectService, logg))
			r.Get("/{projectId}/summary", controllers.ProjectSummary(deps.ReportService, logg))
			r.Get("/{projectId}/transactions", controllers.ProjectHistory(deps.ReportService, logg))
			r.Get("/{projectId}/transactions/export", controllers.ProjectExportCSV(deps.ReportService, logg))
			r.Get("/{projectId}/assignments", controllers.AssignmentList(deps.AccessService, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(deps.CategoryService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.ProductService, logg))
			r.Get("/{productId}", controllers.ProductGet(deps.ProductService, logg))
			r.Post("/{productId}/restock", controllers.ProductRestock(deps.ProductService, logg))
		})

		r.Post("/variants/{variantId}/restock", controllers.VariantRestock(deps.ProductService, logg))

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", controllers.TransactionRecord(deps.TransactionService, logg))
			r.Patch("/{transactionId}", controllers.TransactionUpdate(deps.TransactionService, logg))
			r.Delete("/{transactionId}", controllers.TransactionDelete(deps.TransactionService, logg))
		})

		r.Post("/checkout", controllers.CartCheckout(deps.CartService, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

			r.Post("/users", controllers.CreateSeller(deps.AuthService, logg))
			r.Get("/users", controllers.ListUsers(deps.AuthService, logg))

			r.Post("/projects", controllers.ProjectCreate(deps.ProjectService, logg))
			r.Patch("/projects/{projectId}", controllers.ProjectUpdate(deps.ProjectService, logg))
			r.Delete("/projects/{projectId}", controllers.ProjectDelete(deps.ProjectService, logg))
			r.Delete("/projects/{projectId}/transactions", controllers.TransactionsClear(deps.TransactionService, logg))

			r.Post("/projects/{projectId}/assignments", controllers.AssignmentCreate(deps.AccessService, logg))
			r.Delete("/projects/{projectId}/assignments/{userId}", controllers.AssignmentDelete(deps.AccessService, logg))

			r.Post("/categories", controllers.CategoryCreate(deps.CategoryService, logg))
			r.Delete("/categories/{categoryId}", controllers.CategoryDelete(deps.CategoryService, logg))

			r.Post("/products", controllers.ProductCreate(deps.ProductService, logg))
			r.Patch("/products/{productId}", controllers.ProductUpdate(deps.ProductService, logg))
			r.Delete("/products/{productId}", controllers.ProductDelete(deps.ProductService, logg))
			r.Post("/products/{productId}/variants", controllers.VariantsCreate(deps.ProductService, logg))
			r.Delete("/variants/{variantId}", controllers.VariantDelete(deps.ProductService, logg))
		})
	})

	return r
}
