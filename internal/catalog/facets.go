package catalog

import "github.com/angelmondragon/pricing-profiles-backend/pkg/enums"

// CategoryFacet is one category option with the segments offered under it.
type CategoryFacet struct {
	Value    string   `json:"value"`
	Label    string   `json:"label"`
	Segments []string `json:"segments"`
}

// Facets is the dropdown data for catalog filtering.
type Facets struct {
	Categories []CategoryFacet `json:"categories"`
	Brands     []string        `json:"brands"`
}

// LoadFacets returns the static category, segment and brand lists.
func LoadFacets() Facets {
	categories := enums.BeverageCategories()
	out := Facets{
		Categories: make([]CategoryFacet, 0, len(categories)),
		Brands:     enums.BeverageBrands(),
	}
	for _, c := range categories {
		out.Categories = append(out.Categories, CategoryFacet{
			Value:    c.String(),
			Label:    c.Label(),
			Segments: c.Segments(),
		})
	}
	return out
}
