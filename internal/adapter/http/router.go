package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/cambio/internal/adapter/http/handler"
	"github.com/iho/cambio/internal/adapter/http/middleware"
	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/infrastructure/auth"
	"github.com/iho/cambio/internal/infrastructure/metrics"
	"github.com/iho/cambio/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler      *handler.AuthHandler
	CurrencyHandler  *handler.CurrencyHandler
	CustomerHandler  *handler.CustomerHandler
	LimitHandler     *handler.LimitHandler
	OperationHandler *handler.OperationHandler
	LedgerHandler    *handler.LedgerHandler
	AuditHandler     *handler.AuditHandler
	HealthHandler    *handler.HealthHandler

	// JWTManager verifies bearer tokens. With AuthEnabled false every
	// request runs as domain.SystemUser.
	JWTManager  *auth.JWTManager
	AuthEnabled bool

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestMeta)
	r.Use(middleware.NewAccessLog(cfg.Logger).Wrap)
	r.Use(middleware.Recover(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", cfg.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			if cfg.AuthEnabled {
				r.Use(middleware.Authenticate(cfg.JWTManager))
			} else {
				r.Use(middleware.SystemActor)
			}

			// Keys are scoped by actor, so this runs after authentication.
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
			}

			admin := middleware.RequireRole(domain.RoleAdmin)
			operator := middleware.RequireRole(domain.RoleOperator)
			viewer := middleware.RequireRole(domain.RoleViewer)

			r.Get("/auth/me", cfg.AuthHandler.Me)
			r.Route("/users", func(r chi.Router) {
				r.Use(admin)
				r.Get("/", cfg.AuthHandler.ListUsers)
				r.Post("/", cfg.AuthHandler.CreateUser)
				r.Put("/{id}", cfg.AuthHandler.UpdateUser)
				r.Delete("/{id}", cfg.AuthHandler.DeleteUser)
			})

			r.Route("/currencies", func(r chi.Router) {
				r.With(viewer).Get("/", cfg.CurrencyHandler.List)
				r.With(viewer).Get("/rates", cfg.CurrencyHandler.Rates)
				r.With(viewer).Get("/{code}", cfg.CurrencyHandler.Get)
				r.With(admin).Post("/", cfg.CurrencyHandler.Create)
				r.With(admin).Put("/{code}/rate", cfg.CurrencyHandler.UpdateRate)
			})

			r.With(viewer).Get("/quotes", cfg.CurrencyHandler.Quote)

			r.Route("/customers", func(r chi.Router) {
				r.With(viewer).Get("/", cfg.CustomerHandler.List)
				r.With(viewer).Get("/{id}", cfg.CustomerHandler.Get)
				r.With(admin).Post("/", cfg.CustomerHandler.Create)
				r.With(admin).Put("/{id}", cfg.CustomerHandler.Update)
				r.With(admin).Delete("/{id}", cfg.CustomerHandler.Delete)
			})

			r.Route("/limits", func(r chi.Router) {
				r.With(admin).Post("/", cfg.LimitHandler.Create)
				r.With(viewer).Get("/{customerID}", cfg.LimitHandler.Get)
				r.With(admin).Put("/{customerID}", cfg.LimitHandler.SetBalance)
			})

			r.Route("/operations", func(r chi.Router) {
				r.With(viewer).Get("/", cfg.OperationHandler.Search)
				r.With(viewer).Get("/{id}", cfg.OperationHandler.Get)
				r.With(viewer).Get("/{id}/ticket", cfg.OperationHandler.Ticket)
				r.With(viewer).Get("/{id}/events", cfg.OperationHandler.Events)
				r.With(operator).Post("/", cfg.OperationHandler.Create)
				r.With(operator).Put("/{id}", cfg.OperationHandler.Update)
				r.With(operator).Delete("/{id}", cfg.OperationHandler.Delete)
			})

			r.With(viewer).Get("/dashboard/stats", cfg.LedgerHandler.DashboardStats)
			r.With(viewer).Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
			r.With(admin).Get("/audit", cfg.AuditHandler.List)
		})
	})

	return r
}
