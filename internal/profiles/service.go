package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/pricing-profiles-backend/internal/pricing"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/db"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pricing-profiles-backend/pkg/errors"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/logger"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/metrics"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/pagination"
)

// Service reads profiles and saves them with full-replace semantics.
type Service interface {
	SaveProfile(ctx context.Context, profileID *uuid.UUID, name string, entries []Entry, rule *pricing.Rule) (uuid.UUID, error)
	ReplaceProfile(ctx context.Context, ref string, entries []Entry, rule *pricing.Rule) (uuid.UUID, error)
	GetProfile(ctx context.Context, ref string) (*Profile, error)
	ListProfiles(ctx context.Context, params pagination.Params) (*SummaryPage, error)
}

// Profile is a saved price list.
type Profile struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Rule      *pricing.Rule `json:"rule,omitempty"`
	Entries   []Entry       `json:"entries"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Summary is one row of the profile listing.
type Summary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	EntryCount int64     `json:"entryCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SummaryPage is one page of the profile listing. NextCursor is empty on the
// last page.
type SummaryPage struct {
	Items      []Summary `json:"items"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    *Repository
	tx      txRunner
	locker  SaveLocker
	metrics *metrics.OperationMetrics
	logg    *logger.Logger
}

// NewService constructs a profile service. A nil locker falls back to an
// in-process lock and nil metrics record nothing.
func NewService(repo *Repository, tx txRunner, locker SaveLocker, m *metrics.OperationMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if locker == nil {
		locker = NewLocalSaveLocker()
	}
	return &service{repo: repo, tx: tx, locker: locker, metrics: m, logg: logg}, nil
}

// SaveProfile replaces the entries of a profile in one transaction. Without a
// profileID the profile is found or created by name; with one it must exist
// and a non-empty name renames it.
func (s *service) SaveProfile(ctx context.Context, profileID *uuid.UUID, name string, entries []Entry, rule *pricing.Rule) (id uuid.UUID, err error) {
	start := time.Now()
	defer func() { s.metrics.Track(metrics.OperationProfileSave, start, err) }()
	ctx = s.logg.WithOperation(ctx, metrics.OperationProfileSave)

	name = strings.TrimSpace(name)
	if profileID == nil && name == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "profileName is required")
	}
	if rule != nil {
		if err := rule.Validate(); err != nil {
			return uuid.Nil, err
		}
	}
	normalized, err := NormalizeEntries(entries)
	if err != nil {
		return uuid.Nil, err
	}

	lockKey := "name:" + name
	if profileID != nil {
		lockKey = "id:" + profileID.String()
	}
	release, ok, err := s.locker.TryLock(ctx, lockKey)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire profile save lock")
	}
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeConflict, "a save for this profile is already in progress")
	}
	defer func() {
		if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", relErr.Error()), "failed to release profile save lock")
		}
	}()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		profile, err := s.resolveForSave(ctx, repo, profileID, name, rule)
		if err != nil {
			return err
		}
		id = profile.ID
		return repo.ReplaceEntries(ctx, profile.ID, toModels(profile.ID, normalized))
	})
	if err != nil {
		return uuid.Nil, mapStoreError(err, "save profile")
	}

	logCtx := s.logg.WithProfile(ctx, id.String())
	s.logg.Info(s.logg.WithField(logCtx, "entries", len(normalized)), "profile saved")
	return id, nil
}

func (s *service) resolveForSave(ctx context.Context, repo *Repository, profileID *uuid.UUID, name string, rule *pricing.Rule) (*models.PricingProfile, error) {
	if profileID == nil {
		profile, err := repo.FindByName(ctx, name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = &models.PricingProfile{Name: name}
			applyRule(profile, rule)
			if err := repo.Create(ctx, profile); err != nil {
				return nil, err
			}
			return profile, nil
		}
		if err != nil {
			return nil, err
		}
		applyRule(profile, rule)
		return profile, repo.UpdateHeader(ctx, profile)
	}

	profile, err := repo.FindByID(ctx, *profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, err
	}
	if name != "" && name != profile.Name {
		other, err := repo.FindByName(ctx, name)
		if err == nil && other.ID != profile.ID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "profile name already in use")
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		profile.Name = name
	}
	applyRule(profile, rule)
	return profile, repo.UpdateHeader(ctx, profile)
}

// ReplaceProfile is the single full-replace call for an existing profile
// addressed by id or name.
func (s *service) ReplaceProfile(ctx context.Context, ref string, entries []Entry, rule *pricing.Rule) (uuid.UUID, error) {
	profile, err := s.resolveRef(ctx, ref)
	if err != nil {
		return uuid.Nil, err
	}
	return s.SaveProfile(ctx, &profile.ID, "", entries, rule)
}

func (s *service) GetProfile(ctx context.Context, ref string) (*Profile, error) {
	profile, err := s.resolveRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListEntries(ctx, profile.ID)
	if err != nil {
		return nil, mapStoreError(err, "load profile entries")
	}
	out := &Profile{
		ID:        profile.ID,
		Name:      profile.Name,
		Rule:      ruleFromModel(profile),
		Entries:   make([]Entry, 0, len(rows)),
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
	for _, row := range rows {
		out.Entries = append(out.Entries, Entry{SKU: row.SKU, AdjustedPrice: row.AdjustedPrice.Round(2)})
	}
	return out, nil
}

func (s *service) ListProfiles(ctx context.Context, params pagination.Params) (*SummaryPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, mapStoreError(err, "list profiles")
	}
	rows, hasMore := pagination.Trim(rows, params.Limit)

	ids := make([]uuid.UUID, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ID)
	}
	counts, err := s.repo.CountEntries(ctx, ids)
	if err != nil {
		return nil, mapStoreError(err, "count profile entries")
	}

	page := &SummaryPage{Items: make([]Summary, 0, len(rows))}
	for _, p := range rows {
		page.Items = append(page.Items, Summary{
			ID:         p.ID,
			Name:       p.Name,
			EntryCount: counts[p.ID],
			CreatedAt:  p.CreatedAt,
			UpdatedAt:  p.UpdatedAt,
		})
	}
	if hasMore {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{Name: last.Name, ID: last.ID})
	}
	return page, nil
}

// resolveRef looks a profile up by id when ref parses as a uuid, then by name.
func (s *service) resolveRef(ctx context.Context, ref string) (*models.PricingProfile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile reference is required")
	}
	if id, err := uuid.Parse(ref); err == nil {
		profile, err := s.repo.FindByID(ctx, id)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, mapStoreError(err, "load profile")
		}
	}
	profile, err := s.repo.FindByName(ctx, ref)
	if err != nil {
		return nil, mapStoreError(err, "load profile")
	}
	return profile, nil
}

// applyRule records the rule that priced the new entries. A save without a
// rule clears it, since the old rule no longer describes the prices.
func applyRule(profile *models.PricingProfile, rule *pricing.Rule) {
	if rule == nil {
		profile.AdjustmentMode = nil
		profile.AdjustmentDirection = nil
		profile.AdjustmentMagnitude = decimal.NullDecimal{}
		return
	}
	mode := rule.Mode
	direction := rule.Direction
	profile.AdjustmentMode = &mode
	profile.AdjustmentDirection = &direction
	profile.AdjustmentMagnitude.Decimal = rule.Magnitude
	profile.AdjustmentMagnitude.Valid = true
}

func ruleFromModel(profile *models.PricingProfile) *pricing.Rule {
	if profile.AdjustmentMode == nil || profile.AdjustmentDirection == nil || !profile.AdjustmentMagnitude.Valid {
		return nil
	}
	return &pricing.Rule{
		Mode:      *profile.AdjustmentMode,
		Direction: *profile.AdjustmentDirection,
		Magnitude: profile.AdjustmentMagnitude.Decimal.Round(2),
	}
}

func toModels(profileID uuid.UUID, entries []Entry) []models.ProfileEntry {
	out := make([]models.ProfileEntry, 0, len(entries))
	for i, entry := range entries {
		out = append(out, models.ProfileEntry{
			ProfileID:     profileID,
			SKU:           entry.SKU,
			AdjustedPrice: entry.AdjustedPrice,
			Position:      i,
		})
	}
	return out
}

// mapStoreError keeps typed errors, turns missing rows into NOT_FOUND and
// unique violations into CONFLICT; everything else is a dependency failure.
func mapStoreError(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "profile name already in use")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
