package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pricing-profiles-backend/internal/pricing"
	"github.com/angelmondragon/pricing-profiles-backend/internal/profiles"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pricing-profiles-backend/pkg/errors"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/pagination"
)

type stubProfileService struct {
	id         uuid.UUID
	err        error
	profile    *profiles.Profile
	summaries  []profiles.Summary
	nextCursor string
	listParams pagination.Params

	savedName    string
	savedRef     string
	savedEntries []profiles.Entry
	savedRule    *pricing.Rule
}

func (s *stubProfileService) SaveProfile(ctx context.Context, profileID *uuid.UUID, name string, entries []profiles.Entry, rule *pricing.Rule) (uuid.UUID, error) {
	s.savedName = name
	s.savedEntries = entries
	s.savedRule = rule
	return s.id, s.err
}

func (s *stubProfileService) ReplaceProfile(ctx context.Context, ref string, entries []profiles.Entry, rule *pricing.Rule) (uuid.UUID, error) {
	s.savedRef = ref
	s.savedEntries = entries
	s.savedRule = rule
	return s.id, s.err
}

func (s *stubProfileService) GetProfile(ctx context.Context, ref string) (*profiles.Profile, error) {
	s.savedRef = ref
	return s.profile, s.err
}

func (s *stubProfileService) ListProfiles(ctx context.Context, params pagination.Params) (*profiles.SummaryPage, error) {
	s.listParams = params
	if s.err != nil {
		return nil, s.err
	}
	return &profiles.SummaryPage{Items: s.summaries, NextCursor: s.nextCursor}, nil
}

func TestCreateProfile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		stub := &stubProfileService{id: uuid.New()}
		body := `{"profileName":"P1","products":[{"sku":"A","adjustedPrice":10},{"sku":"B","adjustedPrice":"25.00"}]}`
		req := httptest.NewRequest(http.MethodPost, "/api/profiles", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CreateProfile(stub, testLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var out profileSavedResponse
		if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if out.Message != profileSavedMessage || out.ProfileID != stub.id.String() {
			t.Fatalf("unexpected response %+v", out)
		}
		if stub.savedName != "P1" || len(stub.savedEntries) != 2 {
			t.Fatalf("unexpected save call name=%q entries=%v", stub.savedName, stub.savedEntries)
		}
		if !stub.savedEntries[1].AdjustedPrice.Equal(decimal.NewFromInt(25)) {
			t.Fatalf("expected string price to decode, got %s", stub.savedEntries[1].AdjustedPrice)
		}
		if stub.savedRule != nil {
			t.Fatalf("expected no rule when omitted")
		}
	})

	t.Run("with rule", func(t *testing.T) {
		stub := &stubProfileService{id: uuid.New()}
		body := `{"profileName":"P1","products":[],"rule":{"mode":"dynamic","direction":"decrease","magnitude":10}}`
		req := httptest.NewRequest(http.MethodPost, "/api/profiles", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CreateProfile(stub, testLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.savedRule == nil || stub.savedRule.Mode != enums.AdjustmentModePercentage {
			t.Fatalf("expected percentage rule, got %+v", stub.savedRule)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/profiles", strings.NewReader(`{"products":[]}`))
		rec := httptest.NewRecorder()
		CreateProfile(&stubProfileService{}, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing sku", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/profiles", strings.NewReader(`{"profileName":"P1","products":[{"adjustedPrice":1}]}`))
		rec := httptest.NewRecorder()
		CreateProfile(&stubProfileService{}, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("invalid rule", func(t *testing.T) {
		body := `{"profileName":"P1","products":[],"rule":{"mode":"flat","direction":"increase","magnitude":1}}`
		req := httptest.NewRequest(http.MethodPost, "/api/profiles", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CreateProfile(&stubProfileService{}, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("store conflict", func(t *testing.T) {
		stub := &stubProfileService{err: pkgerrors.New(pkgerrors.CodeConflict, "a save for this profile is already in progress")}
		req := httptest.NewRequest(http.MethodPost, "/api/profiles", strings.NewReader(`{"profileName":"P1","products":[]}`))
		rec := httptest.NewRecorder()
		CreateProfile(stub, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Error == nil || env.Error.Code != string(pkgerrors.CodeConflict) {
			t.Fatalf("unexpected error envelope %s", rec.Body.String())
		}
	})
}

func TestReplaceProfile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		stub := &stubProfileService{id: uuid.New()}
		req := httptest.NewRequest(http.MethodPut, "/api/profiles/P1", strings.NewReader(`{"products":[{"sku":"B","adjustedPrice":25}]}`))
		rec := httptest.NewRecorder()
		ReplaceProfile(stub, testLogger()).ServeHTTP(rec, withRef(req, "P1"))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.savedRef != "P1" || len(stub.savedEntries) != 1 || stub.savedEntries[0].SKU != "B" {
			t.Fatalf("unexpected replace call ref=%q entries=%v", stub.savedRef, stub.savedEntries)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		stub := &stubProfileService{err: pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")}
		req := httptest.NewRequest(http.MethodPut, "/api/profiles/nope", strings.NewReader(`{"products":[]}`))
		rec := httptest.NewRecorder()
		ReplaceProfile(stub, testLogger()).ServeHTTP(rec, withRef(req, "nope"))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/profiles/P1", strings.NewReader(`{"products":[],"profileName":"P2"}`))
		rec := httptest.NewRecorder()
		ReplaceProfile(&stubProfileService{}, testLogger()).ServeHTTP(rec, withRef(req, "P1"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestGetProfile(t *testing.T) {
	id := uuid.New()
	stub := &stubProfileService{profile: &profiles.Profile{
		ID:   id,
		Name: "P1",
		Entries: []profiles.Entry{
			{SKU: "A", AdjustedPrice: decimal.RequireFromString("10.00")},
		},
	}}
	req := httptest.NewRequest(http.MethodGet, "/api/profiles/P1", nil)
	rec := httptest.NewRecorder()
	GetProfile(stub, testLogger()).ServeHTTP(rec, withRef(req, "P1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		ID      string `json:"id"`
		Entries []struct {
			SKU           string `json:"sku"`
			AdjustedPrice string `json:"adjustedPrice"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if out.ID != id.String() || len(out.Entries) != 1 || out.Entries[0].AdjustedPrice != "10.00" {
		t.Fatalf("unexpected profile payload %s", rec.Body.String())
	}
}

func TestListProfiles(t *testing.T) {
	stub := &stubProfileService{summaries: []profiles.Summary{{ID: uuid.New(), Name: "P1", EntryCount: 2}}, nextCursor: "abc"}
	rec := httptest.NewRecorder()
	ListProfiles(stub, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles?limit=1&cursor=xyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.listParams.Limit != 1 || stub.listParams.Cursor != "xyz" {
		t.Fatalf("unexpected params %+v", stub.listParams)
	}
	var out profiles.SummaryPage
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].EntryCount != 2 || out.NextCursor != "abc" {
		t.Fatalf("unexpected page %+v", out)
	}
}

func TestListProfilesRejectsBadLimit(t *testing.T) {
	stub := &stubProfileService{}
	rec := httptest.NewRecorder()
	ListProfiles(stub, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles?limit=500", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
