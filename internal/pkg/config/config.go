package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend  BackendConfig
	Session  SessionConfig
	Checkout CheckoutConfig
	Journal  JournalConfig

	Mongo MongoConfig
	Redis RedisConfig
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:8000"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=15s"`
}

type SessionConfig struct {
	CookieName string        `env:"SESSION_COOKIE, default=cf_session"`
	TTL        time.Duration `env:"SESSION_TTL,    default=24h"`
	Secure     bool          `env:"SESSION_SECURE, default=false"`
	// Store selects the session and checkout flow backend: redis or memory.
	Store string `env:"SESSION_STORE, default=redis"`
}

type CheckoutConfig struct {
	KeyID       string        `env:"RAZORPAY_KEY_ID"`
	ScriptURL   string        `env:"CHECKOUT_SCRIPT_URL,  default=https://checkout.razorpay.com/v1/checkout.js"`
	Merchant    string        `env:"CHECKOUT_MERCHANT,    default=Cascade Forum"`
	Description string        `env:"CHECKOUT_DESCRIPTION, default=Event Registration Payment"`
	ThemeColor  string        `env:"CHECKOUT_THEME,       default=#7B2CBF"`
	FlowTTL     time.Duration `env:"CHECKOUT_FLOW_TTL,    default=1h"`
}

type JournalConfig struct {
	// Enabled turns on the MongoDB checkout journal.
	Enabled bool `env:"JOURNAL_ENABLED, default=true"`
	Workers int  `env:"JOURNAL_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=cascade_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadContext(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadContext reads configuration through the given lookuper.
func LoadContext(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if cfg.Session.Store != "redis" && cfg.Session.Store != "memory" {
		return nil, fmt.Errorf("SESSION_STORE must be redis or memory, got %q", cfg.Session.Store)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
