package catalog

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/pricing-profiles-backend/pkg/db/models"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/enums"
)

const (
	minPriceCents  = 1000
	priceSpanCents = 10000
	skuDigitSpace  = 10000
	maxSKUAttempts = 50
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SeedOptions tunes catalog generation. A nil Rand uses a randomly seeded source.
type SeedOptions struct {
	Rand *rand.Rand
}

// Seeder regenerates the catalog.
type Seeder struct {
	tx   txRunner
	repo *Repository
}

// NewSeeder builds a seeder that writes through repo inside tx.
func NewSeeder(tx txRunner, repo *Repository) (*Seeder, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &Seeder{tx: tx, repo: repo}, nil
}

// Seed replaces the products table with one product per category, segment and
// brand combination. It returns the number of rows written.
func (s *Seeder) Seed(ctx context.Context, opts SeedOptions) (int, error) {
	rows, err := GenerateProducts(opts.Rand)
	if err != nil {
		return 0, err
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceAll(ctx, rows)
	}); err != nil {
		return 0, fmt.Errorf("replace catalog: %w", err)
	}
	return len(rows), nil
}

// GenerateProducts builds the catalog rows. Titles read "<Segment> <Category>",
// skus are a two letter category prefix plus up to four random digits, and
// prices are uniform in [10.00, 110.00).
func GenerateProducts(r *rand.Rand) ([]models.Product, error) {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	var rows []models.Product
	used := make(map[string]struct{})
	for _, category := range enums.BeverageCategories() {
		for _, segment := range category.Segments() {
			for _, brand := range enums.BeverageBrands() {
				sku, err := uniqueSKU(r, category, used)
				if err != nil {
					return nil, err
				}
				rows = append(rows, models.Product{
					Title:    fmt.Sprintf("%s %s", segment, capitalize(category.String())),
					SKU:      sku,
					Category: category.String(),
					Segment:  segment,
					Brand:    brand,
					Price:    decimal.New(int64(minPriceCents+r.IntN(priceSpanCents)), -2),
				})
			}
		}
	}
	if err := validateProducts(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func uniqueSKU(r *rand.Rand, category enums.BeverageCategory, used map[string]struct{}) (string, error) {
	prefix := strings.ToUpper(category.String()[:2])
	for i := 0; i < maxSKUAttempts; i++ {
		sku := fmt.Sprintf("%s%d", prefix, r.IntN(skuDigitSpace))
		if _, taken := used[sku]; taken {
			continue
		}
		used[sku] = struct{}{}
		return sku, nil
	}
	return "", fmt.Errorf("could not allocate a unique sku for %s", category)
}

func validateProducts(rows []models.Product) error {
	var err error
	for i, row := range rows {
		if row.Title == "" || row.SKU == "" {
			err = multierr.Append(err, fmt.Errorf("product %d: title and sku are required", i))
		}
		if row.Price.IsNegative() {
			err = multierr.Append(err, fmt.Errorf("product %s: negative price %s", row.SKU, row.Price))
		}
	}
	return err
}

func capitalize(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
