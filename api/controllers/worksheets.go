package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/pricing-profiles-backend/api/responses"
	"github.com/angelmondragon/pricing-profiles-backend/api/validators"
	"github.com/angelmondragon/pricing-profiles-backend/internal/catalog"
	"github.com/angelmondragon/pricing-profiles-backend/internal/pricing"
	"github.com/angelmondragon/pricing-profiles-backend/internal/worksheet"
	pkgerrors "github.com/angelmondragon/pricing-profiles-backend/pkg/errors"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/logger"
)

type worksheetFilters struct {
	Category string `json:"category" validate:"max=100"`
	Segment  string `json:"segment" validate:"max=100"`
	Brand    string `json:"brand" validate:"max=100"`
	Search   string `json:"search" validate:"max=100"`
}

type worksheetItem struct {
	SKU      string `json:"sku" validate:"required,max=64"`
	Quantity int    `json:"quantity" validate:"min=1"`
	Included bool   `json:"included"`
}

type worksheetRequest struct {
	Rule           *ruleRequest      `json:"rule"`
	Filters        *worksheetFilters `json:"filters,omitempty"`
	IncludeMatches bool              `json:"includeMatches"`
	Items          []worksheetItem   `json:"items" validate:"dive"`
}

type worksheetSaveRequest struct {
	worksheetRequest
	ProfileID   string `json:"profileId" validate:"omitempty,uuid"`
	ProfileName string `json:"profileName" validate:"max=255"`
}

func (req worksheetRequest) toInput() (worksheet.Input, error) {
	rule := pricing.DefaultRule()
	if req.Rule != nil {
		parsed, err := req.Rule.toRule()
		if err != nil {
			return worksheet.Input{}, err
		}
		rule = *parsed
	}

	in := worksheet.Input{Rule: rule, IncludeMatches: req.IncludeMatches}
	if req.Filters != nil {
		in.Filters = &catalog.Filters{
			Category: validators.SanitizeString(req.Filters.Category, maxFilterLen),
			Segment:  validators.SanitizeString(req.Filters.Segment, maxFilterLen),
			Brand:    validators.SanitizeString(req.Filters.Brand, maxFilterLen),
			Search:   validators.SanitizeString(req.Filters.Search, maxFilterLen),
		}
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, worksheet.ItemInput{
			SKU:      item.SKU,
			Quantity: item.Quantity,
			Included: item.Included,
		})
	}
	return in, nil
}

// PreviewWorksheet prices a selection without saving it.
func PreviewWorksheet(svc worksheet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "worksheet service unavailable"))
			return
		}

		var payload worksheetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		in, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preview, err := svc.Preview(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

// SaveWorksheet prices a selection and reconciles it into a profile.
func SaveWorksheet(svc worksheet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "worksheet service unavailable"))
			return
		}

		var payload worksheetSaveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		in, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		save := worksheet.SaveInput{Input: in, ProfileName: payload.ProfileName}
		if payload.ProfileID != "" {
			id, err := uuid.Parse(payload.ProfileID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid profile id"))
				return
			}
			save.ProfileID = &id
		}

		ctx := logg.WithProfile(r.Context(), payload.ProfileName)
		result, err := svc.Save(ctx, save)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
