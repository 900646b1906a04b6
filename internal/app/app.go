package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zezman/directory/internal/auth"
	"github.com/zezman/directory/internal/config"
	"github.com/zezman/directory/internal/event"
	handler "github.com/zezman/directory/internal/handler/http"
	"github.com/zezman/directory/internal/repository/postgres"
	"github.com/zezman/directory/internal/service"
	"github.com/zezman/directory/migrations"
	"github.com/zezman/directory/pkg/database"
	"github.com/zezman/directory/pkg/health"
	pkgkafka "github.com/zezman/directory/pkg/kafka"
	"github.com/zezman/directory/pkg/middleware"
	"github.com/zezman/directory/pkg/tracing"
)

// App wires together all dependencies and runs the directory service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	rateLimiter    *middleware.RateLimiter
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, handler.ServiceName); err != nil {
		logger.Warn("register pool metrics", slog.String("error", err.Error()))
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Initialize Kafka producer. Unreachable brokers degrade readiness but
	// do not block startup; events are best effort.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	if err := producer.Ping(ctx); err != nil {
		logger.Warn("kafka brokers unreachable, events will be dropped until they recover",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty; every bearer token will be rejected")
	}

	// Build the dependency graph.
	businessRepo := postgres.NewBusinessRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	favoriteRepo := postgres.NewFavoriteRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	serviceRepo := postgres.NewServiceRepository(pool)
	statsRepo := postgres.NewStatsRepository(pool)

	events := event.NewProducer(producer, logger)
	counts := service.NewCountSynchronizer(businessRepo, categoryRepo, serviceRepo, logger)
	rating := service.NewRatingAggregator(businessRepo, reviewRepo, events, logger)

	businessService := service.NewBusinessService(businessRepo, counts, events, logger, service.BusinessOptions{
		MaxPerUser: cfg.MaxBusinessesPerUser,
		Location:   cfg.Location(),
	})
	searchService := service.NewSearchService(businessRepo, logger, cfg.Location())
	reviewService := service.NewReviewService(reviewRepo, businessRepo, rating, counts, events, logger, service.ReviewOptions{
		AutoApprove: cfg.ReviewAutoApprove,
	})
	favoriteService := service.NewFavoriteService(favoriteRepo, businessRepo, counts, events, logger)
	catalogService := service.NewCatalogService(categoryRepo, serviceRepo, logger)
	moderationGate := service.NewModerationGate(businessRepo, reviewRepo, rating, counts, events, logger)
	adminService := service.NewAdminService(service.AdminDeps{
		Stats:      statsRepo,
		Businesses: businessRepo,
		Reviews:    reviewRepo,
		Categories: categoryRepo,
		Services:   serviceRepo,
		Rating:     rating,
		Counts:     counts,
	}, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	// HTTP router.
	router := handler.NewRouter(handler.RouterDeps{
		Businesses:     businessService,
		Search:         searchService,
		Reviews:        reviewService,
		Favorites:      favoriteService,
		Catalog:        catalogService,
		Moderation:     moderationGate,
		Admin:          adminService,
		Health:         healthHandler,
		TokenValidator: auth.NewValidator(cfg.JWTSecret).TokenValidator(),
		RateLimiter:    rateLimiter,
		CORS:           corsCfg,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		producer:       producer,
		rateLimiter:    rateLimiter,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	a.rateLimiter.Close()

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Close Kafka producer.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 4. Close PostgreSQL pool.
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
