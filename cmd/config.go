package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/domain/services"
)

type Config struct {
	HTTPPort string

	DBDriver   postgres.Driver
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBPath     string

	RendererURL        string
	RendererTimeout    time.Duration
	MarketplaceURL     string
	MarketplaceTimeout time.Duration

	DedupCacheDir string
	DocumentsDir  string

	WorkerCount         int
	SingleItemWorkers   int
	WorkerPollInterval  time.Duration
	HeartbeatSchedule   string
	HeartbeatStaleAfter time.Duration
	RetentionDays       int
	RetentionSchedule   string

	DefaultUnitPriceCents int64
	OrderIDPattern        string
	FailFastLimit         int

	KafkaHost             string
	KafkaBatchEventsTopic string

	RatesConfig  string
	TemplatesDir string
}

// LoadConfig reads every key through getenv, falling back to defaults for
// unset keys.
func LoadConfig(getenv func(string) string) (Config, error) {
	r := envReader{getenv: getenv}

	cfg := Config{
		HTTPPort: r.str("HTTP_PORT", "8080"),

		DBDriver:   postgres.Driver(r.str("DB_DRIVER", string(postgres.DriverPostgres))),
		DBHost:     r.str("DB_HOST", "localhost"),
		DBPort:     r.str("DB_PORT", "5432"),
		DBUser:     r.str("DB_USER", "postgres"),
		DBPassword: r.str("DB_PASSWORD", ""),
		DBName:     r.str("DB_NAME", "fulfillment"),
		DBSslMode:  r.str("DB_SSLMODE", "disable"),
		DBPath:     r.str("DB_PATH", "data/fulfillment.db"),

		RendererURL:        r.str("RENDERER_URL", "http://api.labelary.com/v1/printers/8dpmm/labels/4x6/"),
		RendererTimeout:    r.duration("RENDERER_TIMEOUT", 30*time.Second),
		MarketplaceURL:     r.str("MARKETPLACE_URL", "https://sellercentral.amazon.com"),
		MarketplaceTimeout: r.duration("MARKETPLACE_TIMEOUT", 30*time.Second),

		DedupCacheDir: r.str("DEDUP_CACHE_DIR", "data/dedup"),
		DocumentsDir:  r.str("DOCUMENTS_DIR", "data/documents"),

		WorkerCount:         r.integer("WORKER_COUNT", 4),
		SingleItemWorkers:   r.integer("SINGLE_ITEM_WORKERS", 1),
		WorkerPollInterval:  r.duration("WORKER_POLL_INTERVAL", 2*time.Second),
		HeartbeatSchedule:   r.str("HEARTBEAT_SCHEDULE", "@every 30s"),
		HeartbeatStaleAfter: r.duration("HEARTBEAT_STALE_AFTER", 2*time.Minute),
		RetentionDays:       r.integer("RETENTION_DAYS", 30),
		RetentionSchedule:   r.str("RETENTION_SCHEDULE", "0 30 3 * * *"),

		DefaultUnitPriceCents: int64(r.integer("DEFAULT_UNIT_PRICE_CENTS", 300)),
		OrderIDPattern:        r.str("ORDER_ID_PATTERN", services.DefaultOrderIDPattern),
		FailFastLimit:         r.integer("FAIL_FAST_LIMIT", services.DefaultFailFastLimit),

		KafkaHost:             r.str("KAFKA_HOST", ""),
		KafkaBatchEventsTopic: r.str("KAFKA_BATCH_EVENTS_TOPIC", "batch.events"),

		RatesConfig:  r.str("RATES_CONFIG", ""),
		TemplatesDir: r.str("TEMPLATES_DIR", ""),
	}

	if r.err != nil {
		return Config{}, r.err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var err error
	switch c.DBDriver {
	case postgres.DriverPostgres, postgres.DriverSQLite:
	default:
		err = errors.Join(err, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver))
	}
	if c.WorkerCount < 1 {
		err = errors.Join(err, fmt.Errorf("WORKER_COUNT must be at least 1, got %d", c.WorkerCount))
	}
	if c.SingleItemWorkers < 0 {
		err = errors.Join(err, fmt.Errorf("SINGLE_ITEM_WORKERS must not be negative, got %d", c.SingleItemWorkers))
	}
	if c.RetentionDays < 1 {
		err = errors.Join(err, fmt.Errorf("RETENTION_DAYS must be at least 1, got %d", c.RetentionDays))
	}
	if c.DefaultUnitPriceCents <= 0 {
		err = errors.Join(err, fmt.Errorf("DEFAULT_UNIT_PRICE_CENTS must be positive, got %d", c.DefaultUnitPriceCents))
	}
	if c.FailFastLimit < 1 {
		err = errors.Join(err, fmt.Errorf("FAIL_FAST_LIMIT must be at least 1, got %d", c.FailFastLimit))
	}
	return err
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == postgres.DriverSQLite {
		return c.DBPath
	}
	return fmt.Sprintf("host=%v port=%v user=%v password=%v dbname=%v sslmode=%v",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// RetentionPeriod converts RetentionDays.
func (c Config) RetentionPeriod() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Instance names this process in worker ids.
func (c Config) Instance() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "fulfillment"
	}
	return host
}

type envReader struct {
	getenv func(string) string
	err    error
}

func (r *envReader) str(key, fallback string) string {
	if v := r.getenv(key); v != "" {
		return v
	}
	return fallback
}

func (r *envReader) integer(key string, fallback int) int {
	v := r.getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.err = errors.Join(r.err, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	v := r.getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.err = errors.Join(r.err, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
