package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/personal-library/internal/apperr"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port         string `env:"PORT"          envDefault:"5000"`
	StoreBackend string `env:"STORE_BACKEND" envDefault:"mongo"`

	MongoURI    string `env:"MONGODB_URI"  envDefault:"mongodb://localhost:27017"`
	MongoDB     string `env:"MONGO_DB"     envDefault:"book-management"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"JWT_TTL"     envDefault:"168h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	AuthRateLimit  int           `env:"AUTH_RATE_LIMIT"  envDefault:"20"`
	AuthRateWindow time.Duration `env:"AUTH_RATE_WINDOW" envDefault:"1m"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET"  envDefault:"book-covers"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses the environment and validates the result. A missing signing
// secret is reported as a configuration error; the process cannot serve
// authenticated traffic without one.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that env tags cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return apperr.Configuration("JWT_SECRET is not defined")
	}
	switch c.StoreBackend {
	case BackendMongo, BackendMemory:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return apperr.Configuration("POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return apperr.Configuration(fmt.Sprintf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return apperr.Configuration(fmt.Sprintf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.TokenTTL <= 0 {
		return apperr.Configuration("JWT_TTL must be positive")
	}
	return nil
}

// RateLimitEnabled reports whether auth endpoints are throttled through Redis.
func (c *Config) RateLimitEnabled() bool {
	return c.RedisAddr != "" && c.AuthRateLimit > 0
}

// CoversEnabled reports whether book cover storage is configured.
func (c *Config) CoversEnabled() bool {
	return c.MinioEndpoint != ""
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
