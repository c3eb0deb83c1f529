package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pricing-profiles-backend/internal/catalog"
)

// LineItem is a product under consideration in a working selection.
type LineItem struct {
	Product       catalog.Product     `json:"product"`
	Quantity      int                 `json:"quantity"`
	Included      bool                `json:"included"`
	AdjustedPrice decimal.NullDecimal `json:"adjusted_price"`
}

// NewLineItem wraps product with the given quantity. Items start excluded and
// without an adjusted price.
func NewLineItem(product catalog.Product, quantity int) LineItem {
	if quantity < 1 {
		quantity = 1
	}
	return LineItem{Product: product, Quantity: quantity}
}

// SKU returns the join key of the item.
func (i LineItem) SKU() string {
	return i.Product.SKU
}

// BasePrice returns the catalog price.
func (i LineItem) BasePrice() decimal.Decimal {
	return i.Product.Price
}

// Apply returns a copy carrying the adjusted price for rule when the item is
// included, and no adjusted price otherwise.
func (i LineItem) Apply(rule Rule) LineItem {
	if !i.Included {
		i.AdjustedPrice = decimal.NullDecimal{}
		return i
	}
	i.AdjustedPrice = decimal.NewNullDecimal(ComputeAdjustedPrice(i.BasePrice(), rule))
	return i
}

// LineTotal is the unit price times quantity, unrounded.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.unitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i LineItem) unitPrice() decimal.Decimal {
	if i.AdjustedPrice.Valid {
		return i.AdjustedPrice.Decimal
	}
	return i.BasePrice()
}
