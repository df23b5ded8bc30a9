package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"fiscalid/pkg/platform/middleware/metadata"
)

const envPrefix = "FISCALID_"

// Config is the full service configuration, loaded from FISCALID_* variables.
type Config struct {
	Server    Server
	Log       Log
	Registry  Registry
	Store     Store
	Redis     RedisConfig
	Kafka     Kafka
	RateLimit RateLimit
	Telemetry Telemetry
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	Environment     string        `env:"ENV" envDefault:"development"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	// TrustedProxies lists the CIDRs or addresses allowed to set
	// X-Forwarded-For, normally the storefront app proxy's egress range.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

func (s Server) IsDevelopment() bool {
	return strings.EqualFold(s.Environment, "development")
}

func (s Server) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	return metadata.ParseTrustedProxies(s.TrustedProxies)
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Registry configures the DGI taxpayer lookup. An empty APIKey leaves the
// validator unconfigured; lookups then fail with a configuration error.
type Registry struct {
	BaseURL          string        `env:"REGISTRY_BASE_URL" envDefault:"https://apim.aludra.cloud/mdl18"`
	APIKey           string        `env:"REGISTRY_API_KEY"`
	CompanyCode      string        `env:"REGISTRY_COMPANY_CODE" envDefault:"EMMESA"`
	Timeout          time.Duration `env:"REGISTRY_TIMEOUT" envDefault:"8s"`
	CacheTTL         time.Duration `env:"REGISTRY_CACHE_TTL" envDefault:"5m"`
	FailureThreshold int           `env:"REGISTRY_BREAKER_FAILURES" envDefault:"5"`
	SuccessThreshold int           `env:"REGISTRY_BREAKER_SUCCESSES" envDefault:"2"`
	BreakerCooldown  time.Duration `env:"REGISTRY_BREAKER_COOLDOWN" envDefault:"30s"`
}

// Store selects the record store backend.
type Store struct {
	Driver       string `env:"STORE_DRIVER" envDefault:"memory"`
	DSN          string `env:"STORE_DSN"`
	MaxOpenConns int    `env:"STORE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int    `env:"STORE_MAX_IDLE_CONNS" envDefault:"5"`
}

// RedisConfig holds the registry cache connection. Empty URL disables Redis.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Kafka configures audit event publishing. No brokers means audit events go to the log.
type Kafka struct {
	Brokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"fiscalid.audit"`
	Partitions int32    `env:"KAFKA_AUDIT_PARTITIONS" envDefault:"3"`
	AuditQueue int      `env:"AUDIT_BUFFER" envDefault:"256"`
}

// RateLimit sets per-IP budgets. Buckets live in Redis when it is configured.
type RateLimit struct {
	Disabled bool          `env:"RATE_LIMIT_DISABLED" envDefault:"false"`
	Lookups  int           `env:"RATE_LIMIT_LOOKUPS" envDefault:"30"`
	Writes   int           `env:"RATE_LIMIT_WRITES" envDefault:"20"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

type Telemetry struct {
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	ServiceName  string `env:"SERVICE_NAME" envDefault:"fiscalid"`
}

// FromEnv builds the configuration from the process environment so main stays lean.
func FromEnv() (Config, error) {
	return parse(env.Options{Prefix: envPrefix})
}

// FromMap is FromEnv over an explicit variable set, for tests.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: envPrefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("config: %sSTORE_DSN is required for the postgres driver", envPrefix)
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if _, err := c.Server.TrustedProxyPrefixes(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Registry.Timeout <= 0 {
		return fmt.Errorf("config: registry timeout must be positive")
	}
	if !c.RateLimit.Disabled && c.RateLimit.Window <= 0 {
		return fmt.Errorf("config: rate limit window must be positive")
	}
	return nil
}
