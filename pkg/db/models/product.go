package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a beverage listing in the fixed catalog.
type Product struct {
	ID        uint            `gorm:"column:id;primaryKey;autoIncrement"`
	Title     string          `gorm:"column:title;not null"`
	SKU       string          `gorm:"column:sku;not null;index"`
	Category  string          `gorm:"column:category;not null;index"`
	Segment   string          `gorm:"column:segment;not null"`
	Brand     string          `gorm:"column:brand;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;check:price >= 0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
