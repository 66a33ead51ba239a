package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port       string        `env:"PORT,        default=8080"`
	Env        string        `env:"ENV,         default=development"`
	JWTSecret  string        `env:"JWT_SECRET,  required"`
	LogLevel   string        `env:"LOG_LEVEL,   default=info"`
	SessionTTL time.Duration `env:"SESSION_TTL, default=720h"`
	// SealKey encrypts persisted sessions. Empty stores them in plain JSON.
	SealKey     string `env:"SEAL_KEY"`
	CatalogPath string `env:"CATALOG_PATH"`

	SessionsDriver  string `env:"SESSIONS_DRIVER,  default=redis"`
	LedgerDriver    string `env:"LEDGER_DRIVER,    default=mongo"`
	DispatchWorkers int    `env:"DISPATCH_WORKERS, default=8"`

	Upstream UpstreamConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type UpstreamConfig struct {
	AuthURL   string        `env:"UPSTREAM_AUTH_URL,   required"`
	UsersURL  string        `env:"UPSTREAM_USERS_URL,  required"`
	ChatsURL  string        `env:"UPSTREAM_CHATS_URL,  required"`
	UploadURL string        `env:"UPSTREAM_UPLOAD_URL, required"`
	Timeout   time.Duration `env:"UPSTREAM_TIMEOUT,    default=10s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=speaky"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// NeedsMongo reports whether any configured driver uses MongoDB.
func (c *Config) NeedsMongo() bool {
	return c.SessionsDriver == DriverMongo || c.LedgerDriver == DriverMongo
}

// NeedsRedis reports whether any configured driver uses Redis. The submit
// guard follows the sessions driver.
func (c *Config) NeedsRedis() bool {
	return c.SessionsDriver == DriverRedis
}

func (c *Config) validate() error {
	switch c.SessionsDriver {
	case DriverRedis, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("SESSIONS_DRIVER: unknown driver %q", c.SessionsDriver)
	}
	switch c.LedgerDriver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("LEDGER_DRIVER: unknown driver %q", c.LedgerDriver)
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
