package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Backends
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, GenerationDisabled, cfg.Generation.Backend)
	assert.Equal(t, 60*time.Second, cfg.Generation.Timeout)

	// Demo account
	assert.True(t, cfg.Seed.DemoUser)
	assert.Equal(t, "user@example.com", cfg.Seed.DemoEmail)

	require.NoError(t, cfg.Validate())
}

func TestLoadDefaultsMatchDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Server.Port, cfg.Server.Port)
	assert.Equal(t, def.Store, cfg.Store)
	assert.Equal(t, def.Generation, cfg.Generation)
	assert.Equal(t, def.Limits, cfg.Limits)
	assert.Equal(t, def.Seed, cfg.Seed)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                "9000",
		"HOST":                "127.0.0.1",
		"CORS_ORIGINS":        "http://a.test,http://b.test",
		"LOG_LEVEL":           "debug",
		"LOG_DEV":             "true",
		"RATE_LIMIT_RPS":      "500",
		"RATE_LIMIT_BURST":    "1000",
		"RATE_LIMIT_ENABLED":  "false",
		"STORE_BACKEND":       "Redis",
		"REDIS_ADDR":          "cache:6379",
		"GENERATION_BACKEND":  "remote",
		"GENERATION_URL":      "http://gen.test/generate",
		"GENERATION_TIMEOUT":  "15s",
		"BLUEPRINT_MAX_DEPTH": "64",
		"SEED_DIR":            "/srv/seeds",
		"DEMO_USER":           "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Store.RedisAddr)
	assert.Equal(t, GenerationRemote, cfg.Generation.Backend)
	assert.Equal(t, 15*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, 64, cfg.Limits.MaxDepth)
	assert.Equal(t, "/srv/seeds", cfg.Seed.Dir)
	assert.False(t, cfg.Seed.DemoUser)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"unknown store", func(c *Config) { c.Store.Backend = "mongo" }, "unknown store backend"},
		{"postgres without url", func(c *Config) { c.Store.Backend = StorePostgres }, "POSTGRES_URL"},
		{"postgres with url", func(c *Config) {
			c.Store.Backend = StorePostgres
			c.Store.PostgresURL = "postgres://localhost/sitecraft"
		}, ""},
		{"unknown generation", func(c *Config) { c.Generation.Backend = "gpt" }, "unknown generation backend"},
		{"remote without url", func(c *Config) { c.Generation.Backend = GenerationRemote }, "GENERATION_URL"},
		{"non-positive timeout", func(c *Config) { c.Generation.Timeout = 0 }, "GENERATION_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadOrDefaultFallsBackOnInvalidEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "nope")

	_, err := Load()
	require.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
}
