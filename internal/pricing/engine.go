package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pricing-profiles-backend/pkg/enums"
)

// DegradedPrice is shown in place of an adjusted price when the base price
// cannot be parsed.
const DegradedPrice = "0.00"

var hundred = decimal.NewFromInt(100)

// ComputeAdjustedPrice applies rule to base. The result is clamped at zero and
// rounded half-up to two decimal places.
func ComputeAdjustedPrice(base decimal.Decimal, rule Rule) decimal.Decimal {
	delta := rule.Magnitude
	if rule.Mode == enums.AdjustmentModePercentage {
		delta = base.Mul(rule.Magnitude).Div(hundred)
	}

	result := base.Add(delta)
	if rule.Direction == enums.AdjustmentDirectionDecrease {
		result = base.Sub(delta)
	}
	if result.IsNegative() {
		result = decimal.Zero
	}
	return result.Round(2)
}

// AdjustRaw is the display-layer entry point: a base price that does not parse
// degrades to "0.00" instead of failing.
func AdjustRaw(raw string, rule Rule) string {
	base, err := ParsePrice(raw)
	if err != nil {
		return DegradedPrice
	}
	return ComputeAdjustedPrice(base, rule).StringFixed(2)
}

// ComputeTotal sums unit price × quantity over items, preferring the adjusted
// price when one was computed. Rounding happens once, on the final sum.
func ComputeTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}
