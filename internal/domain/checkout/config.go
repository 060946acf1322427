package checkout

import (
	"slices"
)

// Default configuration values.
const (
	DefaultLocale              = "tr"
	DefaultCurrency            = "TRY"
	DefaultCountry             = "Turkey"
	DefaultIdentityPlaceholder = "11111111111"
	DefaultApplicationName     = "Tapsilat Go Checkout"
	DefaultCategory            = "General"
	DefaultItemType            = "PHYSICAL"
)

// DefaultInstallments is the installment allow-list used when none is
// configured.
var DefaultInstallments = []int{1, 2, 3, 6, 12}

// DefaultPaymentOptions are offered when the client sends none.
var DefaultPaymentOptions = []string{"card", "bank_transfer"}

// Config holds the values that differ between deployments of the checkout.
type Config struct {
	// Locale is used when the submission carries none.
	Locale string
	// Currency is used when the submission carries none.
	Currency string
	// Country overwrites the country of every address.
	Country string
	// Installments is the allow-list of installment counts.
	Installments []int
	// LastNamePlaceholder is the buyer last name used for single-token
	// contact names. Empty by default.
	LastNamePlaceholder string
	// IdentityPlaceholder replaces a missing buyer identity number.
	IdentityPlaceholder string
	// ApplicationName is sent as the application_name metadata tag.
	ApplicationName string
	// Category is the basket item category.
	Category string
	// PaymentOptions are offered when the client sends none.
	PaymentOptions []string
}

// DefaultConfig returns the configuration with every default applied.
func DefaultConfig() Config {
	var cfg Config
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	if c.Country == "" {
		c.Country = DefaultCountry
	}
	if len(c.Installments) == 0 {
		c.Installments = slices.Clone(DefaultInstallments)
	}
	if c.IdentityPlaceholder == "" {
		c.IdentityPlaceholder = DefaultIdentityPlaceholder
	}
	if c.ApplicationName == "" {
		c.ApplicationName = DefaultApplicationName
	}
	if c.Category == "" {
		c.Category = DefaultCategory
	}
	if len(c.PaymentOptions) == 0 {
		c.PaymentOptions = slices.Clone(DefaultPaymentOptions)
	}
}
