package catalog

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pricing-profiles-backend/pkg/db/models"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/types"
)

// Product is the read-only catalog fact handed to the rest of the system.
type Product struct {
	ID       uint            `json:"id"`
	Title    string          `json:"title"`
	SKU      string          `json:"sku"`
	Category string          `json:"category"`
	Segment  string          `json:"segment"`
	Brand    string          `json:"brand"`
	Price    decimal.Decimal `json:"price"`
}

// MarshalJSON writes the price with two places.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		Price types.Money `json:"price"`
	}{product: product(p), Price: types.NewMoney(p.Price)})
}

// NewProduct builds a Product from the persisted model. The price is normalised
// to cents since SQLite hands numeric columns back as floats.
func NewProduct(m *models.Product) Product {
	return Product{
		ID:       m.ID,
		Title:    m.Title,
		SKU:      m.SKU,
		Category: m.Category,
		Segment:  m.Segment,
		Brand:    m.Brand,
		Price:    m.Price.Round(2),
	}
}

// Filters narrows a catalog query. Empty fields are ignored.
type Filters struct {
	Category string `json:"category,omitempty"`
	Segment  string `json:"segment,omitempty"`
	Brand    string `json:"brand,omitempty"`
	Search   string `json:"search,omitempty"`
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f.Category == "" && f.Segment == "" && f.Brand == "" && f.Search == ""
}
