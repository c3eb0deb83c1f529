package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pricing-profiles-backend/api/responses"
	"github.com/angelmondragon/pricing-profiles-backend/api/validators"
	"github.com/angelmondragon/pricing-profiles-backend/internal/pricing"
	"github.com/angelmondragon/pricing-profiles-backend/internal/profiles"
	pkgerrors "github.com/angelmondragon/pricing-profiles-backend/pkg/errors"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/logger"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/pagination"
)

const profileSavedMessage = "Profile updated successfully"

type profileEntryRequest struct {
	SKU           string          `json:"sku" validate:"required,max=64"`
	AdjustedPrice decimal.Decimal `json:"adjustedPrice"`
}

type ruleRequest struct {
	Mode      string          `json:"mode" validate:"required"`
	Direction string          `json:"direction" validate:"required"`
	Magnitude decimal.Decimal `json:"magnitude"`
}

func (r *ruleRequest) toRule() (*pricing.Rule, error) {
	if r == nil {
		return nil, nil
	}
	rule, err := pricing.NewRule(r.Mode, r.Direction, r.Magnitude)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

type createProfileRequest struct {
	ProfileName string                `json:"profileName" validate:"required,max=255"`
	Products    []profileEntryRequest `json:"products" validate:"dive"`
	Rule        *ruleRequest          `json:"rule,omitempty"`
}

type replaceProfileRequest struct {
	Products []profileEntryRequest `json:"products" validate:"dive"`
	Rule     *ruleRequest          `json:"rule,omitempty"`
}

type profileSavedResponse struct {
	Message   string `json:"message"`
	ProfileID string `json:"profileId"`
}

func toEntries(products []profileEntryRequest) []profiles.Entry {
	entries := make([]profiles.Entry, 0, len(products))
	for _, p := range products {
		entries = append(entries, profiles.Entry{SKU: p.SKU, AdjustedPrice: p.AdjustedPrice})
	}
	return entries
}

// ListProfiles returns a page of saved profiles in name order with their entry
// counts.
func ListProfiles(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListProfiles(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: validators.ParseQueryString(r, "cursor", 512),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GetProfile returns one profile addressed by id or name.
func GetProfile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		ref := strings.TrimSpace(chi.URLParam(r, "ref"))
		if ref == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "profile reference required"))
			return
		}

		profile, err := svc.GetProfile(logg.WithProfile(r.Context(), ref), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// CreateProfile creates the named profile or replaces all of its entries.
func CreateProfile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		var payload createProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := payload.Rule.toRule()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithProfile(r.Context(), payload.ProfileName)
		id, err := svc.SaveProfile(ctx, nil, payload.ProfileName, toEntries(payload.Products), rule)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profileSavedResponse{Message: profileSavedMessage, ProfileID: id.String()})
	}
}

// ReplaceProfile replaces every entry of an existing profile.
func ReplaceProfile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		ref := strings.TrimSpace(chi.URLParam(r, "ref"))
		if ref == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "profile reference required"))
			return
		}

		var payload replaceProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := payload.Rule.toRule()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithProfile(r.Context(), ref)
		id, err := svc.ReplaceProfile(ctx, ref, toEntries(payload.Products), rule)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profileSavedResponse{Message: profileSavedMessage, ProfileID: id.String()})
	}
}
