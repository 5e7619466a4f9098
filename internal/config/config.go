package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/engine"
	pkgconfig "github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/config"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/database"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/httpclient"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/middleware"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/tracing"
)

// ServiceName identifies the catalog in logs, traces and events.
const ServiceName = "catalog-service"

// minSecretLength guards against toy JWT secrets.
const minSecretLength = 16

// Config holds all configuration for the catalog service.
type Config struct {
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ServiceVersion  string        `env:"SERVICE_VERSION" envDefault:"0.1.0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// HTTP server
	HTTPPort           int      `env:"CATALOG_HTTP_PORT" envDefault:"8012"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	PprofAllowedCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`

	// Per-client rate limit on catalog routes. RPS 0 disables it.
	RateLimitRPS      float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst    int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
	TrustProxyHeaders bool    `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// Catalog engine selection (memory or elasticsearch)
	Engine             string `env:"CATALOG_ENGINE" envDefault:"memory"`
	ElasticsearchURL   string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200"`
	ElasticsearchIndex string `env:"ELASTICSEARCH_INDEX" envDefault:"abuja_catalog_listings"`
	SeedFixtures       bool   `env:"SEED_FIXTURES" envDefault:"true"`

	// PostgreSQL listing repository
	PostgresEnabled   bool          `env:"POSTGRES_ENABLED" envDefault:"false"`
	PostgresHost      string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort      int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser      string        `env:"POSTGRES_USER" envDefault:"ecommerce"`
	PostgresPassword  string        `env:"POSTGRES_PASSWORD" envDefault:"ecommerce_secret"`
	PostgresDB        string        `env:"CATALOG_DB_NAME" envDefault:"catalog_db"`
	PostgresSSLMode   string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	LogSlowQueryMs    int           `env:"LOG_SLOW_QUERY_MS" envDefault:"200"`

	// Redis session filter store and idempotency keys
	RedisEnabled   bool          `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost      string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort      int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	FilterStateTTL time.Duration `env:"FILTER_STATE_TTL" envDefault:"168h"`

	// Kafka
	KafkaEnabled   bool          `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers   []string      `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaGroupID   string        `env:"KAFKA_GROUP_ID" envDefault:"catalog-service"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Upstream marketplace feed used for reindex without a repository
	FeedURL        string        `env:"CATALOG_FEED_URL"`
	FeedPageSize   int           `env:"CATALOG_FEED_PAGE_SIZE" envDefault:"100"`
	CBMaxRequests  uint32        `env:"CB_MAX_REQUESTS" envDefault:"3"`
	CBInterval     time.Duration `env:"CB_INTERVAL" envDefault:"60s"`
	CBTimeout      time.Duration `env:"CB_TIMEOUT" envDefault:"30s"`
	CBFailureRatio float64       `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32        `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Auth for write endpoints. Empty disables them.
	JWTSecret string `env:"JWT_SECRET"`

	// OpenTelemetry
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	var errs []error
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTPPort))
	}
	if !slices.Contains([]string{engine.Memory, engine.Elasticsearch}, c.Engine) {
		errs = append(errs, fmt.Errorf("CATALOG_ENGINE must be %q or %q, got %q", engine.Memory, engine.Elasticsearch, c.Engine))
	}
	if c.Engine == engine.Elasticsearch && c.ElasticsearchURL == "" {
		errs = append(errs, errors.New("ELASTICSEARCH_URL is required for the elasticsearch engine"))
	}
	if c.OTelSampleRate < 0 || c.OTelSampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be within [0,1], got %v", c.OTelSampleRate))
	}
	if c.FilterStateTTL <= 0 {
		errs = append(errs, errors.New("FILTER_STATE_TTL must be positive"))
	}
	if c.IdempotencyTTL <= 0 {
		errs = append(errs, errors.New("IDEMPOTENCY_TTL must be positive"))
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set"))
	}
	if c.FeedURL != "" {
		if u, err := url.Parse(c.FeedURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("CATALOG_FEED_URL is not an absolute URL: %q", c.FeedURL))
		}
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		errs = append(errs, fmt.Errorf("CB_FAILURE_RATIO must be within (0,1], got %v", c.CBFailureRatio))
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength))
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative"))
	}
	if c.DBMinConns > c.DBMaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns))
	}
	return errors.Join(errs...)
}

// Postgres returns the repository pool settings.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPassword,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSLMode,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: c.DBMaxConnLifetime,
		MaxConnIdleTime: c.DBMaxConnIdleTime,
	}
}

// Redis returns the session store connection settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:         c.RedisHost,
		Port:         c.RedisPort,
		Password:     c.RedisPassword,
		DB:           c.RedisDB,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Tracing returns the OpenTelemetry settings.
func (c *Config) Tracing() tracing.Config {
	t := tracing.DefaultConfig(ServiceName)
	t.ServiceVersion = c.ServiceVersion
	t.Environment = c.Environment
	t.OTLPEndpoint = c.OTelEndpoint
	t.SampleRate = c.OTelSampleRate
	t.Enabled = c.OTelEnabled
	return t
}

// RateLimit returns the catalog route limiter settings; ok is false when
// limiting is disabled.
func (c *Config) RateLimit() (cfg middleware.RateLimitConfig, ok bool) {
	if c.RateLimitRPS == 0 {
		return middleware.RateLimitConfig{}, false
	}
	return middleware.RateLimitConfig{
		RPS:        c.RateLimitRPS,
		Burst:      c.RateLimitBurst,
		TrustProxy: c.TrustProxyHeaders,
	}, true
}

// CircuitBreaker returns the feed client breaker settings.
func (c *Config) CircuitBreaker() httpclient.CircuitBreakerConfig {
	return httpclient.CircuitBreakerConfig{
		Name:         "catalog-feed",
		MaxRequests:  c.CBMaxRequests,
		Interval:     c.CBInterval,
		Timeout:      c.CBTimeout,
		FailureRatio: c.CBFailureRatio,
		MinRequests:  c.CBMinRequests,
	}
}
