package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProfileEntry is one (sku, adjusted price) row of a pricing profile.
type ProfileEntry struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProfileID     uuid.UUID       `gorm:"column:profile_id;type:uuid;not null;index:idx_profile_entries_profile_position,priority:1"`
	SKU           string          `gorm:"column:sku;not null"`
	AdjustedPrice decimal.Decimal `gorm:"column:adjusted_price;type:numeric(12,2);not null;check:adjusted_price >= 0"`
	Position      int             `gorm:"column:position;not null;index:idx_profile_entries_profile_position,priority:2"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (e *ProfileEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
