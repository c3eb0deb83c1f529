package types

import "github.com/shopspring/decimal"

// Money is a decimal amount that always serializes with two places, as a
// JSON string ("25.00"). Decoding accepts anything decimal.Decimal accepts.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}
