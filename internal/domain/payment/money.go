package payment

import "github.com/shopspring/decimal"

// Money is an amount that encodes as a JSON number with exactly two
// decimal places.
type Money struct {
	decimal.Decimal
}

// MoneyOf wraps d.
func MoneyOf(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// NullMoney returns nil for an absent amount.
func NullMoney(d decimal.NullDecimal) *Money {
	if !d.Valid {
		return nil
	}
	m := MoneyOf(d.Decimal)
	return &m
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}
