// Package app wires together all dependencies and runs the wholesale platform.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/config"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/event"
	handler "github.com/erinb-maker-radio/banwell-wholesale/internal/handler/http"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/notifier"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/provider"
	providermock "github.com/erinb-maker-radio/banwell-wholesale/internal/provider/mock"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/provider/square"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/repository/postgres"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/service"
	"github.com/erinb-maker-radio/banwell-wholesale/migrations"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/database"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/health"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/httpclient"
	pkgkafka "github.com/erinb-maker-radio/banwell-wholesale/pkg/kafka"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/tracing"
)

// App wires together all dependencies and runs the wholesale platform.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "wholesale",
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
	pool, err := database.NewPostgresPool(ctx, &pgCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "wholesale")

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

	// Redis backs webhook event deduplication.
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("host", cfg.RedisHost))

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Repositories.
	customerRepo := postgres.NewCustomerRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	commRepo := postgres.NewCommunicationRepository(pool)
	sequenceRepo := postgres.NewSequenceRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	curatedRepo := postgres.NewCuratedProductRepository(pool)

	// Payment provider behind a circuit breaker; the mock provider serves
	// development environments without Square credentials.
	var paymentProvider provider.PaymentProvider
	if cfg.SquareAccessToken != "" {
		baseClient := httpclient.New(httpclient.Config{
			Timeout:         10 * time.Second,
			MaxRetries:      3,
			RetryWaitMin:    500 * time.Millisecond,
			RetryWaitMax:    5 * time.Second,
			MaxConnsPerHost: 100,
		})
		cbCfg := httpclient.CircuitBreakerConfig{
			Name:         "square",
			MaxRequests:  cfg.CBMaxRequests,
			Interval:     time.Duration(cfg.CBInterval) * time.Second,
			Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
			FailureRatio: cfg.CBFailureRatio,
			MinRequests:  cfg.CBMinRequests,
		}
		cbClient := httpclient.NewCircuitBreakerClient(baseClient, cbCfg, logger)
		paymentProvider = square.New(square.Config{
			BaseURL:     cfg.SquareBaseURL,
			AccessToken: cfg.SquareAccessToken,
			LocationID:  cfg.SquareLocationID,
		}, cbClient)
		logger.Info("square payment provider initialized")
	} else {
		paymentProvider = providermock.New()
		logger.Warn("no Square access token configured, using mock payment provider")
	}

	// Notification senders.
	senders := map[string]notifier.Sender{
		notifier.ChannelEmail: notifier.NewEmailSender(notifier.EmailConfig{
			APIKey:    cfg.SendgridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, nil),
	}
	if cfg.PushGatewayURL != "" {
		senders[notifier.ChannelPush] = notifier.NewPushSender(notifier.PushConfig{
			BaseURL: cfg.PushGatewayURL,
			Token:   cfg.PushGatewayToken,
			Source:  "Banwell Wholesale",
		}, nil)
	}
	dispatcher := notifier.NewDispatcher(logger, senders)

	eventProducer := event.NewProducer(producer, logger)

	checkoutCfg := service.CheckoutConfig{
		BaseURL:    cfg.BaseURL,
		AdminEmail: cfg.AdminEmail,
	}

	svcs := handler.Services{
		Checkout: service.NewCheckoutService(checkoutCfg, orderRepo, productRepo,
			customerRepo, sequenceRepo, paymentProvider, dispatcher, eventProducer, logger),
		Orders: service.NewOrderService(orderRepo, customerRepo, dispatcher, eventProducer, logger),
		Customers: service.NewCustomerService(checkoutCfg, customerRepo, commRepo,
			paymentProvider, dispatcher, logger),
		Products: service.NewProductService(productRepo, categoryRepo, logger),
		Invoices: service.NewInvoiceService(checkoutCfg, invoiceRepo, customerRepo, dispatcher, logger),
		Reconcile: service.NewReconciliationService(orderRepo, customerRepo,
			service.NewRedisDedupStore(redisClient), dispatcher, eventProducer, logger),
		Reports:  service.NewReportService(reportRepo, orderRepo, logger),
		Curation: service.NewCurationService(curatedRepo, customerRepo, productRepo, logger),
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(svcs, handler.RouterConfig{
		APIKeys:                cfg.APIKeys(),
		WebhookSignatureKey:    cfg.SquareWebhookSignatureKey,
		WebhookNotificationURL: cfg.SquareWebhookURL,
		PprofCIDRs:             cfg.PprofAllowedCIDRs,
		CORSAllowedOrigins:     cfg.CORSAllowedOrigins,
		Environment:            cfg.Environment,
	}, healthHandler, logger)

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
		redisClient:    redisClient,
		producer:       producer,
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
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
// 4. Redis client and PostgreSQL pool
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

	// 4. Close Redis client and PostgreSQL pool.
	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
