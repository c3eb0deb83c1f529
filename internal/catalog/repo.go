package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/pricing-profiles-backend/pkg/db/models"
)

// Repository reads and replaces the products table.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns products matching filters ordered by id. Category, segment and
// brand match exactly ignoring case; search is a substring match on title or sku.
func (r *Repository) List(ctx context.Context, filters Filters) ([]Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if v := strings.TrimSpace(filters.Category); v != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(v))
	}
	if v := strings.TrimSpace(filters.Segment); v != "" {
		query = query.Where("LOWER(segment) = ?", strings.ToLower(v))
	}
	if v := strings.TrimSpace(filters.Brand); v != "" {
		query = query.Where("LOWER(brand) = ?", strings.ToLower(v))
	}
	if v := strings.TrimSpace(filters.Search); v != "" {
		pattern := "%" + escapeLike(strings.ToLower(v)) + "%"
		query = query.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(sku) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var rows []models.Product
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// FindBySKUs loads the products whose sku is in skus, ordered by id.
func (r *Repository) FindBySKUs(ctx context.Context, skus []string) ([]Product, error) {
	if len(skus) == 0 {
		return []Product{}, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Where("sku IN ?", skus).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// Count returns the number of catalog rows.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ReplaceAll deletes every product and inserts rows in batches.
func (r *Repository) ReplaceAll(ctx context.Context, rows []models.Product) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(&rows, 100).Error
}

func toProducts(rows []models.Product) []Product {
	out := make([]Product, 0, len(rows))
	for i := range rows {
		out = append(out, NewProduct(&rows[i]))
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
