package profiles

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pricing-profiles-backend/internal/pricing"
	pkgerrors "github.com/angelmondragon/pricing-profiles-backend/pkg/errors"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/types"
)

// Entry is one sku and its saved price.
type Entry struct {
	SKU           string          `json:"sku"`
	AdjustedPrice decimal.Decimal `json:"adjustedPrice"`
}

// MarshalJSON writes the price with two places.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SKU           string      `json:"sku"`
		AdjustedPrice types.Money `json:"adjustedPrice"`
	}{SKU: e.SKU, AdjustedPrice: types.NewMoney(e.AdjustedPrice)})
}

// BuildSnapshot turns a working selection into profile entries. Included items
// carry the adjusted price for rule; the rest keep their base price. Each sku
// appears once, at the position of its first occurrence, holding the value of
// its last occurrence.
func BuildSnapshot(items []pricing.LineItem, rule pricing.Rule) []Entry {
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		price := item.BasePrice().Round(2)
		if item.Included {
			price = pricing.ComputeAdjustedPrice(item.BasePrice(), rule)
		}
		entries = append(entries, Entry{SKU: item.SKU(), AdjustedPrice: price})
	}
	return dedupe(entries)
}

// NormalizeEntries trims skus, rounds prices to cents and collapses duplicate
// skus with last write wins. Empty skus and negative prices are rejected.
func NormalizeEntries(entries []Entry) ([]Entry, error) {
	out := make([]Entry, 0, len(entries))
	var problems []string
	for i, entry := range entries {
		sku := strings.TrimSpace(entry.SKU)
		if sku == "" {
			problems = append(problems, fmt.Sprintf("products[%d].sku is required", i))
			continue
		}
		if entry.AdjustedPrice.IsNegative() {
			problems = append(problems, fmt.Sprintf("products[%d].adjustedPrice must be >= 0", i))
			continue
		}
		out = append(out, Entry{SKU: sku, AdjustedPrice: entry.AdjustedPrice.Round(2)})
	}
	if len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid profile entries").
			WithDetails(map[string]any{"problems": problems})
	}
	return dedupe(out), nil
}

func dedupe(entries []Entry) []Entry {
	index := make(map[string]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if i, ok := index[entry.SKU]; ok {
			out[i].AdjustedPrice = entry.AdjustedPrice
			continue
		}
		index[entry.SKU] = len(out)
		out = append(out, entry)
	}
	return out
}
