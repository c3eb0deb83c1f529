package worksheet

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/pricing-profiles-backend/internal/catalog"
	"github.com/angelmondragon/pricing-profiles-backend/internal/pricing"
	"github.com/angelmondragon/pricing-profiles-backend/internal/profiles"
	"github.com/angelmondragon/pricing-profiles-backend/internal/selection"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/types"
)

// ItemInput selects one catalog product explicitly.
type ItemInput struct {
	SKU      string
	Quantity int
	Included bool
}

// Input describes a worksheet: a rule plus the products to price. Products
// come from Filters (every match, quantity 1) and from Items.
type Input struct {
	Rule           pricing.Rule
	Filters        *catalog.Filters
	IncludeMatches bool
	Items          []ItemInput
}

// SaveInput is a worksheet that is reconciled into a profile.
type SaveInput struct {
	Input
	ProfileID   *uuid.UUID
	ProfileName string
}

// Line is one priced row of a worksheet.
type Line struct {
	SKU           string       `json:"sku"`
	Title         string       `json:"title"`
	Category      string       `json:"category"`
	Segment       string       `json:"segment"`
	Brand         string       `json:"brand"`
	Quantity      int          `json:"quantity"`
	Included      bool         `json:"included"`
	BasePrice     types.Money  `json:"basePrice"`
	AdjustedPrice *types.Money `json:"adjustedPrice"`
	LineTotal     types.Money  `json:"lineTotal"`
}

// Preview is the priced worksheet.
type Preview struct {
	Status selection.Status `json:"status"`
	Rule   pricing.Rule     `json:"rule"`
	Items  []Line           `json:"items"`
	Total  types.Money      `json:"total"`
}

// SaveResult reports the profile written by Save.
type SaveResult struct {
	Preview
	ProfileID uuid.UUID        `json:"profileId"`
	Entries   []profiles.Entry `json:"entries"`
}

func newLines(items []pricing.LineItem) []Line {
	out := make([]Line, 0, len(items))
	for _, item := range items {
		var adjusted *types.Money
		if item.AdjustedPrice.Valid {
			m := types.NewMoney(item.AdjustedPrice.Decimal)
			adjusted = &m
		}
		out = append(out, Line{
			SKU:           item.SKU(),
			Title:         item.Product.Title,
			Category:      item.Product.Category,
			Segment:       item.Product.Segment,
			Brand:         item.Product.Brand,
			Quantity:      item.Quantity,
			Included:      item.Included,
			BasePrice:     types.NewMoney(item.BasePrice()),
			AdjustedPrice: adjusted,
			LineTotal:     types.NewMoney(item.LineTotal().Round(2)),
		})
	}
	return out
}

func newPreview(state selection.State) Preview {
	return Preview{
		Status: state.Status(),
		Rule:   state.Rule(),
		Items:  newLines(state.Items()),
		Total:  types.NewMoney(state.Total()),
	}
}
