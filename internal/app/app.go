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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/auth"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/config"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/engine"
	esengine "github.com/JamesLuiz/abuja-connect-shop-sub000/internal/engine/elasticsearch"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/engine/memory"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/event"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/feed"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/fixtures"
	handler "github.com/JamesLuiz/abuja-connect-shop-sub000/internal/handler/http"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/repository/postgres"
	redisrepo "github.com/JamesLuiz/abuja-connect-shop-sub000/internal/repository/redis"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/service"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/database"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/health"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/httpclient"
	pkgkafka "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/kafka"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/middleware"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/tracing"
)

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	health   *health.Handler
	service  *service.CatalogService

	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	consumers      []*pkgkafka.Consumer
	httpServer     *http.Server
	stopTracing    tracing.Shutdown
	stopBackground context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
// Optional backends are only dialed when enabled in cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		health:   health.NewHandler(),
	}
	defer func() {
		if err != nil {
			a.closeResources(context.Background())
		}
	}()

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.stopTracing, err = tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	eng, err := a.initEngine(ctx)
	if err != nil {
		return nil, err
	}

	deps := service.Deps{
		Engine:  eng,
		Metrics: service.NewMetrics(a.registry),
		Logger:  logger,
	}

	if cfg.PostgresEnabled {
		if err := a.initPostgres(ctx); err != nil {
			return nil, err
		}
		deps.Repo = postgres.NewListingRepository(a.pool)
	}

	var idempotency pkgkafka.IdempotencyStore = pkgkafka.NewMemoryIdempotencyStore(cfg.IdempotencyTTL)
	if cfg.RedisEnabled {
		if err := a.initRedis(ctx); err != nil {
			return nil, err
		}
		deps.Filters = redisrepo.NewFilterStateStore(a.redis, cfg.FilterStateTTL)
		idempotency = redisrepo.NewIdempotencyStore(a.redis, cfg.IdempotencyTTL)
	}

	if cfg.FeedURL != "" {
		breaker := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			cfg.CircuitBreaker(),
			httpclient.NewBreakerMetrics(a.registry),
			logger,
		)
		deps.Feed = feed.NewClient(breaker, cfg.FeedURL, cfg.FeedPageSize, logger)
		logger.Info("upstream feed configured", slog.String("url", cfg.FeedURL))
	}

	var kafkaMetrics *pkgkafka.Metrics
	if cfg.KafkaEnabled {
		kafkaMetrics = pkgkafka.NewMetrics(a.registry)
		a.producer = pkgkafka.NewProducer(pkgkafka.ProducerConfig{Brokers: cfg.KafkaBrokers}, kafkaMetrics, logger)
		deps.Publisher = event.NewProducer(a.producer, cfg.ElasticsearchIndex, logger)
		a.health.RegisterOptional("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	// Background reindex runs outlive requests but not the app.
	var background context.Context
	background, a.stopBackground = context.WithCancel(context.Background())
	deps.BaseContext = background

	a.service = service.NewCatalogService(deps)

	if err := a.warmUp(ctx); err != nil {
		return nil, err
	}

	if cfg.KafkaEnabled {
		a.initConsumers(idempotency, kafkaMetrics)
	}

	var tokens middleware.TokenValidator
	if cfg.JWTSecret != "" {
		manager, err := auth.NewManager(cfg.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("init auth: %w", err)
		}
		tokens = manager.Validator()
	} else {
		logger.Warn("JWT_SECRET not set, catalog write endpoints are disabled")
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	var limiter *middleware.RateLimiter
	if rl, ok := cfg.RateLimit(); ok {
		limiter = middleware.NewRateLimiter(rl, logger)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Service:     a.service,
		Health:      a.health,
		Metrics:     middleware.NewHTTPMetrics(handler.ServiceName, a.registry),
		Gatherer:    a.registry,
		Tokens:      tokens,
		RateLimiter: limiter,
		CORS:        cors,
		PprofCIDRs:  cfg.PprofAllowedCIDRs,
		Logger:      logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return a, nil
}

func (a *App) initEngine(ctx context.Context) (engine.CatalogEngine, error) {
	if a.cfg.Engine != engine.Elasticsearch {
		a.logger.Info("in-memory catalog engine initialized")
		return memory.New(), nil
	}

	es, err := esengine.New(ctx, a.cfg.ElasticsearchURL, a.cfg.ElasticsearchIndex, a.logger)
	if err != nil {
		return nil, fmt.Errorf("init elasticsearch engine: %w", err)
	}
	a.health.Register("elasticsearch", es.Ping)
	a.logger.Info("elasticsearch catalog engine initialized",
		slog.String("url", a.cfg.ElasticsearchURL),
		slog.String("index", a.cfg.ElasticsearchIndex),
	)
	return es, nil
}

func (a *App) initPostgres(ctx context.Context) error {
	pool, err := database.NewPostgresPool(ctx, a.cfg.Postgres(), a.logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	a.pool = pool

	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), a.logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	database.SetSlowQueryLogging(time.Duration(a.cfg.LogSlowQueryMs)*time.Millisecond, a.logger)
	a.registry.MustRegister(database.NewPoolStatsCollector(pool, config.ServiceName))
	a.health.Register("postgres", pool.Ping)
	return nil
}

func (a *App) initRedis(ctx context.Context) error {
	client, err := database.NewRedisClient(ctx, a.cfg.Redis(), a.logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	a.redis = client
	a.health.Register("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	return nil
}

func (a *App) initConsumers(store pkgkafka.IdempotencyStore, metrics *pkgkafka.Metrics) {
	a.dlq = pkgkafka.NewDLQProducer(a.cfg.KafkaBrokers, a.logger)
	consumer := event.NewConsumer(a.service, a.logger)
	handle := pkgkafka.IdempotentHandler(store, consumer.Handle, a.logger)

	topics := event.ConsumedTopics()
	for _, topic := range topics {
		c := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers:  a.cfg.KafkaBrokers,
			GroupID:  a.cfg.KafkaGroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6, // 10 MB
		}, handle, a.dlq, metrics, a.logger)
		a.consumers = append(a.consumers, c)
	}
	a.logger.Info("kafka consumers initialized",
		slog.Any("brokers", a.cfg.KafkaBrokers),
		slog.Int("topic_count", len(topics)),
	)
}

// warmUp fills the engine at startup: from the repository or feed when one
// is configured, falling back to the bundled fixtures when that yields
// nothing and seeding is enabled.
func (a *App) warmUp(ctx context.Context) error {
	if a.cfg.PostgresEnabled || a.cfg.FeedURL != "" {
		summary, err := a.service.Reindex(ctx)
		switch {
		case err != nil && !a.cfg.SeedFixtures:
			return fmt.Errorf("initial reindex: %w", err)
		case err != nil:
			a.logger.Warn("initial reindex failed, seeding fixtures", slog.String("error", err.Error()))
		case summary.Indexed > 0:
			return nil
		}
	}
	if !a.cfg.SeedFixtures {
		return nil
	}

	listings, err := fixtures.Listings()
	if err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}
	if _, err := a.service.Seed(ctx, listings); err != nil {
		return fmt.Errorf("seed fixtures: %w", err)
	}
	return nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and Kafka consumers, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer %s: %w", c.Topic(), err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		a.logger.Error("component failed", slog.String("error", runErr.Error()))
	}

	// Consumers stop on ctx before their readers are closed.
	cancel()
	return errors.Join(runErr, a.Shutdown())
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	errs = append(errs, a.closeResources(ctx))

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources releases everything NewApp acquired, in reverse order.
// Fields left nil by a partial NewApp are skipped.
func (a *App) closeResources(ctx context.Context) error {
	var errs []error
	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.stopBackground != nil {
		a.stopBackground()
	}
	if a.service != nil {
		a.service.Wait()
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close dlq producer: %w", err))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.stopTracing != nil {
		if err := a.stopTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}
	return errors.Join(errs...)
}
