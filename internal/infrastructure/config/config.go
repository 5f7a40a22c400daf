package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
	Store      StoreConfig
	Generation GenerationConfig
	Limits     LimitsConfig
	Seed       SeedConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Host        string   `envconfig:"HOST" default:"0.0.0.0"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`
	Gzip        bool     `envconfig:"GZIP" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// StoreConfig selects and configures the blueprint repository.
type StoreConfig struct {
	Backend        string `envconfig:"STORE_BACKEND" default:"memory"`
	SQLitePath     string `envconfig:"SQLITE_PATH" default:"sitecraft.db"`
	PostgresURL    string `envconfig:"POSTGRES_URL"`
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`
	RedisNamespace string `envconfig:"REDIS_NAMESPACE" default:"sitecraft"`
	SQLLogLevel    string `envconfig:"SQL_LOG_LEVEL" default:"silent"`
}

// GenerationConfig selects and configures the generation backend.
type GenerationConfig struct {
	Backend      string        `envconfig:"GENERATION_BACKEND" default:"disabled"`
	GeminiAPIKey string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	URL          string        `envconfig:"GENERATION_URL"`
	APIKey       string        `envconfig:"GENERATION_API_KEY"`
	Timeout      time.Duration `envconfig:"GENERATION_TIMEOUT" default:"60s"`
	MaxRetries   int           `envconfig:"GENERATION_MAX_RETRIES" default:"2"`
	RateLimit    float64       `envconfig:"GENERATION_RATE_LIMIT" default:"0"`
}

// LimitsConfig bounds editing-time input and rendering.
type LimitsConfig struct {
	MaxDepth       int `envconfig:"BLUEPRINT_MAX_DEPTH" default:"256"`
	MaxBytes       int `envconfig:"BLUEPRINT_MAX_BYTES" default:"524288"`
	RenderMaxDepth int `envconfig:"RENDER_MAX_DEPTH" default:"0"`
}

// SeedConfig controls the demo account and its starter blueprints.
type SeedConfig struct {
	Dir          string `envconfig:"SEED_DIR"`
	DemoUser     bool   `envconfig:"DEMO_USER" default:"true"`
	DemoEmail    string `envconfig:"DEMO_EMAIL" default:"user@example.com"`
	DemoPassword string `envconfig:"DEMO_PASSWORD" default:"password"`
	DemoName     string `envconfig:"DEMO_NAME" default:"Demo User"`
}

// Store backends
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Generation backends
const (
	GenerationDisabled = "disabled"
	GenerationGemini   = "gemini"
	GenerationRemote   = "remote"
)

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks backend selections and their required settings.
func (c *Config) Validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Generation.Backend = strings.ToLower(strings.TrimSpace(c.Generation.Backend))

	switch c.Store.Backend {
	case StoreMemory, StoreSQLite, StoreRedis:
	case StorePostgres:
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required for store backend %q", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.Generation.Backend {
	case GenerationDisabled, GenerationGemini:
	case GenerationRemote:
		if c.Generation.URL == "" {
			return fmt.Errorf("GENERATION_URL is required for generation backend %q", c.Generation.Backend)
		}
	default:
		return fmt.Errorf("unknown generation backend %q", c.Generation.Backend)
	}

	if c.Generation.Timeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
			Gzip: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Store: StoreConfig{
			Backend:        StoreMemory,
			SQLitePath:     "sitecraft.db",
			RedisAddr:      "localhost:6379",
			RedisNamespace: "sitecraft",
			SQLLogLevel:    "silent",
		},
		Generation: GenerationConfig{
			Backend:     GenerationDisabled,
			GeminiModel: "gemini-2.5-flash",
			Timeout:     60 * time.Second,
			MaxRetries:  2,
		},
		Limits: LimitsConfig{
			MaxDepth: 256,
			MaxBytes: 512 * 1024,
		},
		Seed: SeedConfig{
			DemoUser:     true,
			DemoEmail:    "user@example.com",
			DemoPassword: "password",
			DemoName:     "Demo User",
		},
	}
}
