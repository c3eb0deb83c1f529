package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/pricing-profiles-backend/api/responses"
	"github.com/angelmondragon/pricing-profiles-backend/api/validators"
	"github.com/angelmondragon/pricing-profiles-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/pricing-profiles-backend/pkg/errors"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/logger"
)

const maxFilterLen = 100

// ProductLister is the catalog read used by ListProducts.
type ProductLister interface {
	List(ctx context.Context, filters catalog.Filters) ([]catalog.Product, error)
}

// ListProducts returns catalog products matching the category, segment,
// brand and search query parameters. No parameters returns the whole catalog.
func ListProducts(repo ProductLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		filters := catalog.Filters{
			Category: validators.ParseQueryString(r, "category", maxFilterLen),
			Segment:  validators.ParseQueryString(r, "segment", maxFilterLen),
			Brand:    validators.ParseQueryString(r, "brand", maxFilterLen),
			Search:   validators.ParseQueryString(r, "search", maxFilterLen),
		}

		products, err := repo.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products"))
			return
		}
		if products == nil {
			products = []catalog.Product{}
		}
		responses.WriteSuccess(w, products)
	}
}

// CatalogFacets returns the category, segment and brand options.
func CatalogFacets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, catalog.LoadFacets())
	}
}
