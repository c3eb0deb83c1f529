package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pricing-profiles-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pricing-profiles-backend/pkg/errors"
)

// ErrInvalidPrice is returned by ParsePrice for non-numeric or negative input.
var ErrInvalidPrice = errors.New("invalid price")

// Rule is the (mode, direction, magnitude) triple applied to base prices.
type Rule struct {
	Mode      enums.AdjustmentMode      `json:"mode"`
	Direction enums.AdjustmentDirection `json:"direction"`
	Magnitude decimal.Decimal           `json:"magnitude"`
}

// DefaultRule is a fixed increase of zero, which leaves prices unchanged.
func DefaultRule() Rule {
	return Rule{
		Mode:      enums.AdjustmentModeFixed,
		Direction: enums.AdjustmentDirectionIncrease,
		Magnitude: decimal.Zero,
	}
}

// NewRule parses raw mode and direction values into a validated Rule.
func NewRule(mode, direction string, magnitude decimal.Decimal) (Rule, error) {
	m, err := enums.ParseAdjustmentMode(mode)
	if err != nil {
		return Rule{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid adjustment mode")
	}
	d, err := enums.ParseAdjustmentDirection(direction)
	if err != nil {
		return Rule{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid adjustment direction")
	}
	rule := Rule{Mode: m, Direction: d, Magnitude: magnitude}
	if err := rule.Validate(); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// magnitudeScale matches the stored adjustment_magnitude column.
const magnitudeScale = 2

// Validate checks the enums and that the magnitude is a non-negative amount
// with at most two decimal places, so the stored rule is the one that priced
// the entries.
func (r Rule) Validate() error {
	if !r.Mode.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid adjustment mode")
	}
	if !r.Direction.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid adjustment direction")
	}
	if r.Magnitude.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "adjustment magnitude must be >= 0")
	}
	if !r.Magnitude.Equal(r.Magnitude.Round(magnitudeScale)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "adjustment magnitude must have at most two decimal places")
	}
	return nil
}

// ParsePrice parses a raw base price. Anything that is not a finite,
// non-negative decimal yields ErrInvalidPrice.
func ParsePrice(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, ErrInvalidPrice
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, ErrInvalidPrice
	}
	if value.IsNegative() {
		return decimal.Zero, ErrInvalidPrice
	}
	return value, nil
}
