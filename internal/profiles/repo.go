package profiles

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pricing-profiles-backend/pkg/db/models"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/pagination"
)

// Repository persists pricing profiles and their entries.
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

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PricingProfile, error) {
	var profile models.PricingProfile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *Repository) FindByName(ctx context.Context, name string) (*models.PricingProfile, error) {
	var profile models.PricingProfile
	if err := r.db.WithContext(ctx).First(&profile, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListEntries returns the entries of a profile in saved order.
func (r *Repository) ListEntries(ctx context.Context, profileID uuid.UUID) ([]models.ProfileEntry, error) {
	var entries []models.ProfileEntry
	if err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("position ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// List returns every profile ordered by name.
func (r *Repository) List(ctx context.Context, after *pagination.Cursor, limit int) ([]models.PricingProfile, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if after != nil {
		query = query.Where("name > ?", after.Name)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var profiles []models.PricingProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

type entryCount struct {
	ProfileID uuid.UUID
	Count     int64
}

// CountEntries returns the number of entries for each of the given profiles.
func (r *Repository) CountEntries(ctx context.Context, profileIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	if len(profileIDs) == 0 {
		return map[uuid.UUID]int64{}, nil
	}
	var rows []entryCount
	if err := r.db.WithContext(ctx).
		Model(&models.ProfileEntry{}).
		Where("profile_id IN ?", profileIDs).
		Select("profile_id, COUNT(*) AS count").
		Group("profile_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.ProfileID] = row.Count
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, profile *models.PricingProfile) error {
	return r.db.WithContext(ctx).Omit("Entries").Create(profile).Error
}

// UpdateHeader writes the name and rule columns and bumps updated_at. Rule
// columns left unset on profile are written as NULL.
func (r *Repository) UpdateHeader(ctx context.Context, profile *models.PricingProfile) error {
	header := map[string]any{
		"name":                 profile.Name,
		"adjustment_mode":      nil,
		"adjustment_direction": nil,
		"adjustment_magnitude": profile.AdjustmentMagnitude,
		"updated_at":           time.Now().UTC(),
	}
	if profile.AdjustmentMode != nil {
		header["adjustment_mode"] = *profile.AdjustmentMode
	}
	if profile.AdjustmentDirection != nil {
		header["adjustment_direction"] = *profile.AdjustmentDirection
	}
	return r.db.WithContext(ctx).
		Model(&models.PricingProfile{}).
		Where("id = ?", profile.ID).
		Updates(header).Error
}

// ReplaceEntries deletes every entry of the profile and inserts entries.
// Callers run it inside a transaction.
func (r *Repository) ReplaceEntries(ctx context.Context, profileID uuid.UUID, entries []models.ProfileEntry) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("profile_id = ?", profileID).Delete(&models.ProfileEntry{}).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return tx.CreateInBatches(&entries, 200).Error
}
