package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pricing-profiles-backend/pkg/enums"
)

// PricingProfile is a named price list. The adjustment columns record the rule
// last used to build the profile and are null for hand-entered profiles.
type PricingProfile struct {
	ID                  uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey"`
	Name                string                     `gorm:"column:name;not null;uniqueIndex"`
	AdjustmentMode      *enums.AdjustmentMode      `gorm:"column:adjustment_mode"`
	AdjustmentDirection *enums.AdjustmentDirection `gorm:"column:adjustment_direction"`
	AdjustmentMagnitude decimal.NullDecimal        `gorm:"column:adjustment_magnitude;type:numeric(12,2)"`
	Entries             []ProfileEntry             `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key so SQLite and Postgres behave alike.
func (p *PricingProfile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
