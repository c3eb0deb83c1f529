package enums

// BeverageCategory is a top-level catalog grouping.
type BeverageCategory string

const (
	BeverageCategoryWine     BeverageCategory = "wine"
	BeverageCategoryBeer     BeverageCategory = "beer"
	BeverageCategoryLiquor   BeverageCategory = "liquor"
	BeverageCategoryCider    BeverageCategory = "cider"
	BeverageCategoryPremixed BeverageCategory = "premixed"
	BeverageCategoryOther    BeverageCategory = "other"
)

var validBeverageCategories = []BeverageCategory{
	BeverageCategoryWine,
	BeverageCategoryBeer,
	BeverageCategoryLiquor,
	BeverageCategoryCider,
	BeverageCategoryPremixed,
	BeverageCategoryOther,
}

var beverageCategoryLabels = map[BeverageCategory]string{
	BeverageCategoryWine:     "Wine",
	BeverageCategoryBeer:     "Beer",
	BeverageCategoryLiquor:   "Liquor & Spirits",
	BeverageCategoryCider:    "Cider",
	BeverageCategoryPremixed: "Premixed & Ready-to-Drink",
	BeverageCategoryOther:    "Other",
}

var beverageSegments = map[BeverageCategory][]string{
	BeverageCategoryWine:     {"Red", "White", "Rosé", "Orange", "Sparkling", "Port/Dessert"},
	BeverageCategoryBeer:     {"Lager", "Ale", "Stout", "IPA", "Wheat Beer"},
	BeverageCategoryLiquor:   {"Whiskey", "Vodka", "Rum", "Gin"},
	BeverageCategoryCider:    {"Dry Cider", "Sweet Cider"},
	BeverageCategoryPremixed: {"RTD Cocktails", "Hard Seltzers"},
	BeverageCategoryOther:    {"Miscellaneous"},
}

var beverageBrands = []string{"High Garden", "Koyama Wines", "Lacourte-Godbillon"}

// BeverageCategories returns the categories in display order.
func BeverageCategories() []BeverageCategory {
	out := make([]BeverageCategory, len(validBeverageCategories))
	copy(out, validBeverageCategories)
	return out
}

// BeverageBrands returns the brands carried by the catalog.
func BeverageBrands() []string {
	out := make([]string, len(beverageBrands))
	copy(out, beverageBrands)
	return out
}

// String implements fmt.Stringer.
func (c BeverageCategory) String() string {
	return string(c)
}

// Label returns the human readable category name.
func (c BeverageCategory) Label() string {
	return beverageCategoryLabels[c]
}

// Segments returns the segments offered under the category.
func (c BeverageCategory) Segments() []string {
	segments := beverageSegments[c]
	out := make([]string, len(segments))
	copy(out, segments)
	return out
}
