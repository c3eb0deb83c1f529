package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pricing-profiles-backend/pkg/config"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/db"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/db/models"
)

func openTestDB(t *testing.T) *db.Client {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "catalog.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.AutoMigrate(context.Background()))
	return client
}

func mustCreateProducts(t *testing.T, client *db.Client, rows ...models.Product) {
	t.Helper()
	require.NoError(t, client.DB().Create(&rows).Error)
}

func product(title, sku, category, segment, brand, price string) models.Product {
	return models.Product{
		Title:    title,
		SKU:      sku,
		Category: category,
		Segment:  segment,
		Brand:    brand,
		Price:    decimal.RequireFromString(price),
	}
}
