package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/tapsilat-checkout/internal/domain/checkout"
)

const defaultAddr = "0.0.0.0:8080"

// Webhook store backends.
const (
	WebhookBackendFile     = "file"
	WebhookBackendPostgres = "postgres"
)

// Config holds the complete application configuration, loadable from
// environment variables (CHECKOUT_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (CHECKOUT_DATABASE_URL or DATABASE_URL), optional" flag:"database-url"`
	PublicURL   string `usage:"Public base URL used for payment redirects (e.g. https://shop.example.com)" flag:"public-url"`
	Provider    ProviderConfig
	Checkout    CheckoutConfig
	Webhooks    WebhooksConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// ProviderConfig configures the Tapsilat API client.
type ProviderConfig struct {
	BaseURL string        `default:"https://panel.tapsilat.dev/api/v1" usage:"Tapsilat API base URL (TAPSILAT_BASE_URL)" flag:"provider-base-url"`
	APIKey  string        `usage:"Tapsilat API bearer token (TAPSILAT_API_KEY)" flag:"provider-api-key"`
	Timeout time.Duration `default:"30s" usage:"Provider request timeout" flag:"provider-timeout"`
}

// CheckoutConfig holds the deployment specific order defaults.
type CheckoutConfig struct {
	Locale              string   `default:"tr" usage:"Order locale when the client sends none"`
	Currency            string   `default:"TRY" usage:"Order currency when the client sends none"`
	Country             string   `default:"Turkey" usage:"Country forced on every address"`
	Installments        []int    `default:"1,2,3,6,12" usage:"Allowed installment counts"`
	LastNamePlaceholder string   `default:"" usage:"Buyer last name for single word contact names" flag:"last-name-placeholder"`
	IdentityPlaceholder string   `default:"11111111111" usage:"Buyer identity number placeholder" flag:"identity-placeholder"`
	ApplicationName     string   `default:"Tapsilat Go Checkout" usage:"application_name metadata tag" flag:"application-name"`
	Category            string   `default:"General" usage:"Basket item category"`
	PaymentOptions      []string `default:"card,bank_transfer" usage:"Payment options when the client sends none" flag:"payment-options"`
}

// Assembler returns the order assembler configuration.
func (c CheckoutConfig) Assembler() checkout.Config {
	return checkout.Config{
		Locale:              c.Locale,
		Currency:            c.Currency,
		Country:             c.Country,
		Installments:        c.Installments,
		LastNamePlaceholder: c.LastNamePlaceholder,
		IdentityPlaceholder: c.IdentityPlaceholder,
		ApplicationName:     c.ApplicationName,
		Category:            c.Category,
		PaymentOptions:      c.PaymentOptions,
	}
}

// WebhooksConfig selects where provider callbacks are stored.
type WebhooksConfig struct {
	Backend         string        `default:"file" usage:"Webhook store backend: file or postgres" flag:"webhooks-backend"`
	Dir             string        `default:"webhooks" usage:"Directory of the file webhook store" flag:"webhooks-dir"`
	StreamBuffer    int           `default:"16" usage:"Per listener buffer of the webhook event stream" flag:"webhooks-stream-buffer"`
	StreamHeartbeat time.Duration `default:"15s" usage:"Heartbeat interval of the webhook event stream" flag:"webhooks-stream-heartbeat"`
}

// RedisConfig configures the optional Redis used for idempotency keys.
type RedisConfig struct {
	URL            string        `usage:"Redis URL (CHECKOUT_REDIS_URL or REDIS_URL), takes precedence over addr" flag:"redis-url"`
	Addr           string        `usage:"Redis address; idempotency is disabled when neither url nor addr is set" flag:"redis-addr"`
	Password       string        `usage:"Redis password" flag:"redis-password"`
	DB             int           `default:"0" usage:"Redis database" flag:"redis-db"`
	IdempotencyTTL time.Duration `default:"24h" usage:"Lifetime of stored idempotent responses" flag:"idempotency-ttl"`
}

// Enabled reports whether a Redis connection is configured.
func (c RedisConfig) Enabled() bool {
	return c.URL != "" || c.Addr != ""
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:], "config.yaml", "/etc/checkout/config.yaml")
}

func loadConfig(args []string, files ...string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CHECKOUT",
		Args:      args,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that cannot be fixed by defaults.
func (c *Config) Validate() error {
	switch c.Webhooks.Backend {
	case WebhookBackendFile:
		if c.Webhooks.Dir == "" {
			return errors.New("webhooks dir is required for the file backend")
		}
	case WebhookBackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required for the postgres webhook backend: set CHECKOUT_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown webhooks backend %q", c.Webhooks.Backend)
	}
	for _, n := range c.Checkout.Installments {
		if n < 1 {
			return errors.Errorf("invalid installment count %d", n)
		}
	}
	if c.RateLimit.Max < 1 || c.RateLimit.Window <= 0 {
		return errors.New("rate limit max and window must be positive")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's CHECKOUT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	fallback(&c.DatabaseURL, "DATABASE_URL")
	fallback(&c.Redis.URL, "REDIS_URL")
	fallback(&c.Provider.APIKey, "TAPSILAT_API_KEY")
	if v := os.Getenv("TAPSILAT_BASE_URL"); v != "" && os.Getenv("CHECKOUT_PROVIDER_BASE_URL") == "" {
		c.Provider.BaseURL = v
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

func fallback(dst *string, env string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
