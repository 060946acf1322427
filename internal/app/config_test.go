package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig([]string{"-addr=127.0.0.1:9000"})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "https://panel.tapsilat.dev/api/v1", cfg.Provider.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, WebhookBackendFile, cfg.Webhooks.Backend)
	assert.Equal(t, []int{1, 2, 3, 6, 12}, cfg.Checkout.Installments)
	assert.Equal(t, "tr", cfg.Checkout.Locale)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadConfig_PlatformDefaults(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://db/checkout")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("TAPSILAT_API_KEY", "secret")
	t.Setenv("TAPSILAT_BASE_URL", "https://sandbox.example.com/api/v1")

	cfg, err := loadConfig([]string{"-public-url=https://shop.example.com"})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Addr)
	assert.Equal(t, "postgres://db/checkout", cfg.DatabaseURL)
	assert.Equal(t, "redis://cache:6379/0", cfg.Redis.URL)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "secret", cfg.Provider.APIKey)
	assert.Equal(t, "https://sandbox.example.com/api/v1", cfg.Provider.BaseURL)
}

func TestLoadConfig_PrefixedWins(t *testing.T) {
	t.Setenv("CHECKOUT_DATABASE_URL", "postgres://primary/checkout")
	t.Setenv("DATABASE_URL", "postgres://platform/checkout")

	cfg, err := loadConfig([]string{"-addr=127.0.0.1:9000"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://primary/checkout", cfg.DatabaseURL)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Webhooks:  WebhooksConfig{Backend: WebhookBackendFile, Dir: "webhooks"},
			Checkout:  CheckoutConfig{Installments: []int{1, 3}},
			RateLimit: RateLimitConfig{Max: 10, Window: time.Minute},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"postgres without database", func(c *Config) { c.Webhooks.Backend = WebhookBackendPostgres }, false},
		{"postgres with database", func(c *Config) {
			c.Webhooks.Backend = WebhookBackendPostgres
			c.DatabaseURL = "postgres://db"
		}, true},
		{"unknown backend", func(c *Config) { c.Webhooks.Backend = "s3" }, false},
		{"empty dir", func(c *Config) { c.Webhooks.Dir = "" }, false},
		{"zero installment", func(c *Config) { c.Checkout.Installments = []int{0} }, false},
		{"no rate limit", func(c *Config) { c.RateLimit.Max = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestCheckoutConfig_Assembler(t *testing.T) {
	c := CheckoutConfig{Locale: "en", Currency: "USD", Installments: []int{1, 2}, LastNamePlaceholder: "-"}
	got := c.Assembler()
	assert.Equal(t, "en", got.Locale)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, []int{1, 2}, got.Installments)
	assert.Equal(t, "-", got.LastNamePlaceholder)
}
