package worksheet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pricing-profiles-backend/internal/catalog"
	"github.com/angelmondragon/pricing-profiles-backend/internal/pricing"
	"github.com/angelmondragon/pricing-profiles-backend/internal/profiles"
	"github.com/angelmondragon/pricing-profiles-backend/internal/selection"
	pkgerrors "github.com/angelmondragon/pricing-profiles-backend/pkg/errors"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/logger"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/metrics"
)

// Service prices selections and saves them as profiles.
type Service interface {
	Preview(ctx context.Context, in Input) (*Preview, error)
	Save(ctx context.Context, in SaveInput) (*SaveResult, error)
}

type catalogReader interface {
	List(ctx context.Context, filters catalog.Filters) ([]catalog.Product, error)
	FindBySKUs(ctx context.Context, skus []string) ([]catalog.Product, error)
}

type profileSaver interface {
	SaveProfile(ctx context.Context, profileID *uuid.UUID, name string, entries []profiles.Entry, rule *pricing.Rule) (uuid.UUID, error)
}

type service struct {
	catalog  catalogReader
	profiles profileSaver
	metrics  *metrics.OperationMetrics
	logg     *logger.Logger
}

// NewService wires the worksheet flow.
func NewService(catalog catalogReader, profiles profileSaver, m *metrics.OperationMetrics, logg *logger.Logger) (Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile saver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{catalog: catalog, profiles: profiles, metrics: m, logg: logg}, nil
}

func (s *service) Preview(ctx context.Context, in Input) (out *Preview, err error) {
	start := time.Now()
	defer func() { s.metrics.Track(metrics.OperationWorksheetPreview, start, err) }()
	ctx = s.logg.WithOperation(ctx, metrics.OperationWorksheetPreview)

	state, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	preview := newPreview(state)
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
		"items": len(preview.Items),
		"total": preview.Total.StringFixed(2),
	}), "worksheet priced")
	return &preview, nil
}

// Save prices the worksheet, snapshots it and replaces the target profile.
// On failure the selection moves to the error state with its items intact.
func (s *service) Save(ctx context.Context, in SaveInput) (out *SaveResult, err error) {
	start := time.Now()
	defer func() { s.metrics.Track(metrics.OperationWorksheetSave, start, err) }()
	ctx = s.logg.WithOperation(ctx, metrics.OperationWorksheetSave)

	state, err := s.build(ctx, in.Input)
	if err != nil {
		return nil, err
	}
	if state, err = state.BeginSave(); err != nil {
		return nil, mapSelectionError(err)
	}

	rule := state.Rule()
	entries := profiles.BuildSnapshot(state.Items(), rule)
	id, saveErr := s.profiles.SaveProfile(ctx, in.ProfileID, in.ProfileName, entries, &rule)
	if saveErr != nil {
		failed, _ := state.FailSave(saveErr)
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"status": string(failed.Status()),
			"items":  failed.Len(),
		}), "worksheet save failed")
		return nil, saveErr
	}
	if state, err = state.CompleteSave(); err != nil {
		return nil, mapSelectionError(err)
	}

	s.logg.Info(s.logg.WithProfile(ctx, id.String()), "worksheet saved")
	return &SaveResult{
		Preview:   newPreview(state),
		ProfileID: id,
		Entries:   entries,
	}, nil
}

// build drives a fresh selection through search, review and pricing.
func (s *service) build(ctx context.Context, in Input) (selection.State, error) {
	state, err := selection.New().WithRule(in.Rule)
	if err != nil {
		return state, err
	}
	if in.Filters == nil && len(in.Items) == 0 {
		return state, pkgerrors.New(pkgerrors.CodeValidation, "filters or items are required")
	}

	if in.Filters != nil {
		if state, err = s.search(ctx, state, *in.Filters); err != nil {
			return state, err
		}
		if in.IncludeMatches {
			if state, err = state.IncludeAll(); err != nil {
				return state, mapSelectionError(err)
			}
		}
	}

	if len(in.Items) > 0 {
		if state, err = s.addItems(ctx, state, in.Items); err != nil {
			return state, err
		}
	}

	if state, err = state.ApplyRule(); err != nil {
		return state, mapSelectionError(err)
	}
	return state, nil
}

func (s *service) search(ctx context.Context, state selection.State, filters catalog.Filters) (selection.State, error) {
	state, err := state.BeginSearch(filters)
	if err != nil {
		return state, mapSelectionError(err)
	}
	products, err := s.catalog.List(ctx, filters)
	if err != nil {
		state, _ = state.FailSearch(err)
		return state, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query catalog")
	}
	state, err = state.ReceiveResults(products, 1)
	if err != nil {
		return state, mapSelectionError(err)
	}
	return state, nil
}

func (s *service) addItems(ctx context.Context, state selection.State, items []ItemInput) (selection.State, error) {
	skus := make([]string, 0, len(items))
	for i, item := range items {
		sku := strings.TrimSpace(item.SKU)
		if sku == "" {
			return state, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].sku is required", i))
		}
		if item.Quantity < 1 {
			return state, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].quantity must be at least 1", i))
		}
		skus = append(skus, sku)
	}

	state, err := state.BeginSearch(catalog.Filters{})
	if err != nil {
		return state, mapSelectionError(err)
	}
	found, err := s.catalog.FindBySKUs(ctx, skus)
	if err != nil {
		state, _ = state.FailSearch(err)
		return state, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog products")
	}

	bySKU := make(map[string]catalog.Product, len(found))
	for _, p := range found {
		bySKU[p.SKU] = p
	}
	ordered := make([]catalog.Product, 0, len(skus))
	var missing []string
	for _, sku := range skus {
		p, ok := bySKU[sku]
		if !ok {
			missing = append(missing, sku)
			continue
		}
		ordered = append(ordered, p)
	}
	if len(missing) > 0 {
		state, _ = state.FailSearch(errors.New("unknown skus"))
		return state, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"skus": missing})
	}

	if state, err = state.ReceiveResults(ordered, 1); err != nil {
		return state, mapSelectionError(err)
	}
	for i, item := range items {
		sku := skus[i]
		if state, err = state.SetQuantity(sku, item.Quantity); err != nil {
			return state, mapSelectionError(err)
		}
		if state, err = state.SetIncluded(sku, item.Included); err != nil {
			return state, mapSelectionError(err)
		}
	}
	return state, nil
}

func mapSelectionError(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	switch {
	case errors.Is(err, selection.ErrBusy):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "operation already in progress")
	case errors.Is(err, selection.ErrInvalidTransition):
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "selection cannot do that now")
	case errors.Is(err, selection.ErrUnknownSKU),
		errors.Is(err, selection.ErrInvalidQuantity),
		errors.Is(err, selection.ErrEmptySelection):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "selection failed")
	}
}
