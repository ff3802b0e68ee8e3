package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/cambio/internal/adapter/http"
	"github.com/iho/cambio/internal/adapter/http/handler"
	"github.com/iho/cambio/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/cambio/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cambio/internal/adapter/repository/redis"
	"github.com/iho/cambio/internal/infrastructure/auth"
	"github.com/iho/cambio/internal/infrastructure/config"
	"github.com/iho/cambio/internal/infrastructure/eventpublisher"
	"github.com/iho/cambio/internal/infrastructure/logger"
	"github.com/iho/cambio/internal/infrastructure/metrics"
	"github.com/iho/cambio/internal/infrastructure/postgres"
	"github.com/iho/cambio/internal/infrastructure/redis"
	"github.com/iho/cambio/internal/usecase"
)

const (
	limiterCleanupInterval = time.Minute
	limiterIdleTimeout     = 3 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Caller: cfg.LogCaller})

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return err
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
		ConnLifetime:   cfg.DatabaseConnLifetime,
		ConnectRetries: cfg.DatabaseConnectRetries,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := connectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	} else {
		log.Warn().Msg("redis not configured, stats cache and idempotency keys disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	app, err := buildApp(ctx, cfg, pool, redisClient, m, log.Logger)
	if err != nil {
		return err
	}
	app.routerConfig.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	if app.relay != nil {
		go func() {
			if err := app.relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("outbox relay stopped")
			}
		}()
	}

	go cleanupLimiters(ctx, app.routerConfig.RateLimiter)

	server := &http.Server{
		Addr:         serverAddr(cfg),
		Handler:      httpAdapter.NewRouter(app.routerConfig),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Bool("auth", cfg.AuthEnabled).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

type application struct {
	routerConfig httpAdapter.RouterConfig
	relay        *eventpublisher.Relay
}

// buildApp wires repositories, use cases and handlers. redisClient may be nil.
func buildApp(
	ctx context.Context,
	cfg *config.Config,
	pool *pgxpool.Pool,
	redisClient *goredis.Client,
	m *metrics.Metrics,
	lg zerolog.Logger,
) (*application, error) {
	txManager := postgresRepo.NewTxManager(pool)
	currencyRepo := postgresRepo.NewCurrencyRepository(pool)
	customerRepo := postgresRepo.NewCustomerRepository(pool)
	limitRepo := postgresRepo.NewLimitRepository(pool)
	operationRepo := postgresRepo.NewOperationRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	statsRepo := postgresRepo.NewStatsRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(postgresRepo.RetryPolicy{
		MaxRetries: cfg.DatabaseRetryMax,
		MaxElapsed: cfg.DatabaseRetryMaxElapsed,
	}, m, lg)

	var outboxRepo usecase.OutboxRepository = postgresRepo.DiscardOutbox{}
	if cfg.OutboxEnabled {
		outboxRepo = postgresRepo.NewOutboxRepository(pool)
	}

	var (
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
		redisPinger      handler.Pinger
	)
	if redisClient != nil {
		cache = redisRepo.NewCache(redisClient, redisRepo.WithNamespace(cfg.CacheNamespace))
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		redisPinger = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	authz := usecase.NewUserAuthorizer(userRepo)

	currencyUC := usecase.NewCurrencyUseCase(currencyRepo, auditRepo, authz, idGen, cfg.BaseCurrency, m, lg)
	customerUC := usecase.NewCustomerUseCase(customerRepo, operationRepo, auditRepo, authz, idGen, m, lg)
	limitUC := usecase.NewLimitUseCase(txManager, limitRepo, customerRepo, outboxRepo, auditRepo, authz, idGen, m)
	operationUC := usecase.NewOperationUseCase(
		txManager, operationRepo, customerRepo, currencyUC, limitUC,
		outboxRepo, auditRepo, authz, retrier, idGen, m, lg,
	)
	reconciliationUC := usecase.NewReconciliationUseCase(ledgerRepo)
	dashboardUC := usecase.NewDashboardUseCase(statsRepo, cache, cfg.StatsCacheTTL, m, lg)
	userUC := usecase.NewUserUseCase(userRepo, idGen)
	auditUC := usecase.NewAuditUseCase(auditRepo, authz)

	if cfg.SeedCurrencies {
		created, err := currencyUC.SeedDefaults(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to seed currencies: %w", err)
		}
		if created > 0 {
			lg.Info().Int("count", created).Msg("seeded default currencies")
		}
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := userUC.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
		}
		if created {
			lg.Info().Str("email", cfg.AdminEmail).Msg("created bootstrap admin")
		}
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	var relay *eventpublisher.Relay
	if cfg.OutboxEnabled {
		sink, err := newOutboxSink(cfg, redisClient, lg)
		if err != nil {
			return nil, err
		}
		relay = eventpublisher.NewRelay(eventpublisher.Config{
			Outbox:    outboxRepo,
			Sink:      sink,
			Metrics:   m,
			Logger:    lg,
			BatchSize: cfg.OutboxBatchSize,
			Interval:  cfg.OutboxInterval,
			Retention: cfg.OutboxRetention,
		})
	}

	return &application{
		routerConfig: httpAdapter.RouterConfig{
			AuthHandler:      handler.NewAuthHandler(userUC, jwtManager, m),
			CurrencyHandler:  handler.NewCurrencyHandler(currencyUC),
			CustomerHandler:  handler.NewCustomerHandler(customerUC),
			LimitHandler:     handler.NewLimitHandler(limitUC),
			OperationHandler: handler.NewOperationHandler(operationUC),
			LedgerHandler:    handler.NewLedgerHandler(reconciliationUC, dashboardUC),
			AuditHandler:     handler.NewAuditHandler(auditUC),
			HealthHandler:    handler.NewHealthHandler(pool, redisPinger),
			JWTManager:       jwtManager,
			AuthEnabled:      cfg.AuthEnabled,
			IdempotencyStore: idempotencyStore,
			IdempotencyTTL:   cfg.IdempotencyTTL,
			RateLimiter:      middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m),
			Metrics:          m,
			Logger:           lg,
		},
		relay: relay,
	}, nil
}

func newOutboxSink(cfg *config.Config, redisClient *goredis.Client, lg zerolog.Logger) (eventpublisher.Sink, error) {
	if cfg.OutboxSink != "redis" {
		return eventpublisher.NewLogSink(lg), nil
	}
	if redisClient == nil {
		return nil, config.ErrSinkNeedsRedis
	}
	return eventpublisher.NewStreamSink(redisClient, cfg.OutboxStream, cfg.OutboxStreamMaxLen), nil
}

// connectRedis returns a nil client when url is empty.
func connectRedis(ctx context.Context, url string) (*goredis.Client, error) {
	client, err := redis.NewClient(ctx, url)
	if errors.Is(err, redis.ErrNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter) {
	if rl == nil {
		return
	}

	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Sweep(limiterIdleTimeout); n > 0 {
				log.Debug().Int("removed", n).Int("tracked", rl.Clients()).Msg("swept idle rate limit buckets")
			}
		}
	}
}

func serverAddr(cfg *config.Config) string {
	return fmt.Sprintf(":%s", cfg.HTTPPort)
}
