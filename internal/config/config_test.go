package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "8080", cfg.Console.Port)
	assert.Equal(t, "momo_products.json", cfg.Console.MomoFile)
	assert.Equal(t, "pchome_products.json", cfg.Console.PchomeFile)
	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)
	assert.Equal(t, "stream:product_pairs", cfg.Relay.Stream)
	assert.Equal(t, 5*time.Second, cfg.Relay.PollInterval)
	assert.True(t, cfg.Server.SeedOnStart)
	assert.Equal(t, "zh-TW", cfg.Browser.Locale)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONSOLE_PORT", "9090")
	t.Setenv("BACKEND_URL", "http://api:5000")
	t.Setenv("BACKEND_TIMEOUT", "5s")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("SEED_PCHOME_ON_START", "false")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://a,http://b")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Console.Port)
	assert.Equal(t, "http://api:5000", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.False(t, cfg.Server.SeedOnStart)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.Server.AllowedOrigins)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("RELAY_POLL_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 5*time.Second, cfg.Relay.PollInterval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad server port", func(c *Config) { c.Server.Port = "70000" }},
		{"bad console port", func(c *Config) { c.Console.Port = "abc" }},
		{"missing backend", func(c *Config) { c.Backend.BaseURL = "" }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"zero relay batch", func(c *Config) { c.Relay.BatchSize = 0 }},
		{"inverted rate limit", func(c *Config) { c.Scraper.RateLimitMin = 10 * time.Second }},
		{"zero pchome rps", func(c *Config) { c.Scraper.PchomeRPS = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
