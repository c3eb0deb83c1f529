package selection

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pricing-profiles-backend/internal/catalog"
	"github.com/angelmondragon/pricing-profiles-backend/internal/pricing"
	"github.com/angelmondragon/pricing-profiles-backend/pkg/enums"
)

func testProduct(sku, price string) catalog.Product {
	return catalog.Product{SKU: sku, Title: sku, Price: decimal.RequireFromString(price)}
}

func sameRule(a, b pricing.Rule) bool {
	return a.Mode == b.Mode && a.Direction == b.Direction && a.Magnitude.Equal(b.Magnitude)
}

// mustState fails the test when a transition errors: mustState(t)(s.BeginSave()).
func mustState(t *testing.T) func(State, error) State {
	t.Helper()
	return func(s State, err error) State {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected transition error: %v", err)
		}
		return s
	}
}

func reviewing(t *testing.T, products ...catalog.Product) State {
	t.Helper()
	s := mustState(t)(New().BeginSearch(catalog.Filters{Category: "wine"}))
	return mustState(t)(s.ReceiveResults(products, 1))
}

func TestNewStartsIdleWithDefaultRule(t *testing.T) {
	s := New()
	if s.Status() != StatusIdle {
		t.Fatalf("expected idle, got %s", s.Status())
	}
	if !sameRule(s.Rule(), pricing.DefaultRule()) {
		t.Fatalf("expected default rule, got %+v", s.Rule())
	}
	if s.Len() != 0 || !s.Total().IsZero() {
		t.Fatalf("expected empty selection")
	}
}

func TestHappyPathTransitions(t *testing.T) {
	s := reviewing(t, testProduct("A", "10"), testProduct("B", "20"))
	if s.Status() != StatusReviewing {
		t.Fatalf("expected reviewing, got %s", s.Status())
	}
	if s.Filters().Category != "wine" {
		t.Fatalf("expected filters to be kept, got %+v", s.Filters())
	}

	s = mustState(t)(s.BeginSave())
	if s.Status() != StatusSaving {
		t.Fatalf("expected saving, got %s", s.Status())
	}
	s = mustState(t)(s.CompleteSave())
	if s.Status() != StatusIdle {
		t.Fatalf("expected idle, got %s", s.Status())
	}
	if s.Len() != 2 {
		t.Fatalf("expected saved items to remain, got %d", s.Len())
	}
}

func TestBeginSearchRejectsReentry(t *testing.T) {
	s := mustState(t)(New().BeginSearch(catalog.Filters{}))
	if _, err := s.BeginSearch(catalog.Filters{}); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while searching, got %v", err)
	}

	saving := mustState(t)(reviewing(t, testProduct("A", "1")).BeginSave())
	if _, err := saving.BeginSearch(catalog.Filters{}); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while saving, got %v", err)
	}
	if _, err := saving.BeginSave(); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy on double save, got %v", err)
	}
}

func TestTransitionsDoNotMutatePriorState(t *testing.T) {
	before := reviewing(t, testProduct("A", "10"), testProduct("B", "20"))
	snapshot := before.Items()

	after := mustState(t)(before.SetQuantity("A", 5))
	after = mustState(t)(after.SetIncluded("B", true))
	after = mustState(t)(after.ApplyRule())
	after = mustState(t)(after.Remove("A"))

	items := before.Items()
	if len(items) != len(snapshot) {
		t.Fatalf("prior state lost items: %d vs %d", len(items), len(snapshot))
	}
	if items[0].Quantity != 1 || items[1].Included || items[1].AdjustedPrice.Valid {
		t.Fatalf("prior state was mutated: %+v", items)
	}
	if after.Len() != 1 || after.Items()[0].SKU() != "B" {
		t.Fatalf("unexpected new state items %+v", after.Items())
	}

	exported := after.Items()
	exported[0].Quantity = 99
	if after.Items()[0].Quantity == 99 {
		t.Fatalf("Items must return a copy")
	}
}

func TestReceiveResultsDedupesAtAddTime(t *testing.T) {
	s := reviewing(t, testProduct("A", "10"), testProduct("B", "20"))
	s = mustState(t)(s.BeginSearch(catalog.Filters{}))
	s = mustState(t)(s.ReceiveResults([]catalog.Product{testProduct("B", "21"), testProduct("C", "30")}, 3))

	items := s.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 distinct items, got %d", len(items))
	}
	want := []string{"A", "B", "C"}
	for i, sku := range want {
		if items[i].SKU() != sku {
			t.Fatalf("expected position %d to be %s, got %s", i, sku, items[i].SKU())
		}
	}
	if items[1].Quantity != 3 || items[1].BasePrice().String() != "21" {
		t.Fatalf("expected duplicate add to replace quantity and product, got %+v", items[1])
	}
}

func TestReceiveResultsRequiresSearching(t *testing.T) {
	if _, err := New().ReceiveResults(nil, 1); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	s := mustState(t)(New().BeginSearch(catalog.Filters{}))
	if _, err := s.ReceiveResults([]catalog.Product{testProduct("A", "1")}, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestFailSearchMovesToErrorAndAllowsRetry(t *testing.T) {
	boom := errors.New("catalog down")
	s := mustState(t)(New().BeginSearch(catalog.Filters{}))
	s = mustState(t)(s.FailSearch(boom))
	if s.Status() != StatusError || !errors.Is(s.Err(), boom) {
		t.Fatalf("expected error state carrying cause, got %s %v", s.Status(), s.Err())
	}
	s = mustState(t)(s.BeginSearch(catalog.Filters{}))
	if s.Status() != StatusSearching || s.Err() != nil {
		t.Fatalf("expected retry to clear error, got %s %v", s.Status(), s.Err())
	}
}

func TestFailSaveKeepsItems(t *testing.T) {
	s := reviewing(t, testProduct("A", "10"))
	s = mustState(t)(s.IncludeAll())
	s = mustState(t)(s.ApplyRule())
	before := s.Items()

	s = mustState(t)(s.BeginSave())
	s = mustState(t)(s.FailSave(errors.New("db down")))
	if s.Status() != StatusError {
		t.Fatalf("expected error, got %s", s.Status())
	}
	after := s.Items()
	if len(after) != 1 || after[0].Quantity != before[0].Quantity || !after[0].AdjustedPrice.Decimal.Equal(before[0].AdjustedPrice.Decimal) {
		t.Fatalf("items changed on failed save: %+v vs %+v", after, before)
	}

	s = mustState(t)(s.BeginSave())
	if s.Status() != StatusSaving {
		t.Fatalf("expected manual retry to reach saving, got %s", s.Status())
	}
}

func TestBeginSaveRules(t *testing.T) {
	if _, err := New().BeginSave(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from idle, got %v", err)
	}
	empty := mustState(t)(New().BeginSearch(catalog.Filters{}))
	empty = mustState(t)(empty.ReceiveResults(nil, 1))
	if _, err := empty.BeginSave(); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
	if _, err := New().CompleteSave(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := New().FailSave(errors.New("x")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestApplyRuleAndRepricing(t *testing.T) {
	rule := pricing.Rule{
		Mode:      enums.AdjustmentModeFixed,
		Direction: enums.AdjustmentDirectionIncrease,
		Magnitude: decimal.NewFromInt(5),
	}
	s := reviewing(t, testProduct("A", "10"), testProduct("B", "20"))
	s = mustState(t)(s.WithRule(rule))
	s = mustState(t)(s.SetIncluded("B", true))
	if s.Items()[1].AdjustedPrice.Valid {
		t.Fatalf("adjusted price should be absent before ApplyRule")
	}

	s = mustState(t)(s.ApplyRule())
	items := s.Items()
	if items[0].AdjustedPrice.Valid {
		t.Fatalf("excluded item must not carry an adjusted price")
	}
	if items[1].AdjustedPrice.Decimal.StringFixed(2) != "25.00" {
		t.Fatalf("expected 25.00, got %s", items[1].AdjustedPrice.Decimal)
	}

	s = mustState(t)(s.SetQuantity("B", 2))
	s = mustState(t)(s.SetQuantity("A", 3))
	// 25*2 + 10*3
	if s.Total().StringFixed(2) != "80.00" {
		t.Fatalf("expected total 80.00, got %s", s.Total().StringFixed(2))
	}

	rule.Magnitude = decimal.NewFromInt(1)
	s = mustState(t)(s.WithRule(rule))
	if s.Items()[1].AdjustedPrice.Decimal.StringFixed(2) != "21.00" {
		t.Fatalf("expected rule change to reprice, got %s", s.Items()[1].AdjustedPrice.Decimal)
	}

	s = mustState(t)(s.SetIncluded("B", false))
	if s.Items()[1].AdjustedPrice.Valid {
		t.Fatalf("unchecking should clear the adjusted price")
	}
}

func TestEditErrors(t *testing.T) {
	s := reviewing(t, testProduct("A", "10"))
	if _, err := s.SetQuantity("A", 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := s.SetIncluded("Z", true); !errors.Is(err, ErrUnknownSKU) {
		t.Fatalf("expected ErrUnknownSKU, got %v", err)
	}
	if _, err := s.Remove("Z"); !errors.Is(err, ErrUnknownSKU) {
		t.Fatalf("expected ErrUnknownSKU, got %v", err)
	}
	if _, err := s.WithRule(pricing.Rule{Mode: "bogus"}); err == nil {
		t.Fatalf("expected invalid rule to be rejected")
	}
	saving := mustState(t)(s.BeginSave())
	if _, err := saving.SetQuantity("A", 2); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while saving, got %v", err)
	}
}

func TestClearReturnsToIdle(t *testing.T) {
	rule := pricing.Rule{Mode: enums.AdjustmentModePercentage, Direction: enums.AdjustmentDirectionDecrease, Magnitude: decimal.NewFromInt(10)}
	s := reviewing(t, testProduct("A", "10"))
	s = mustState(t)(s.WithRule(rule))
	s = mustState(t)(s.Clear())
	if s.Status() != StatusIdle || s.Len() != 0 {
		t.Fatalf("expected empty idle state, got %s with %d items", s.Status(), s.Len())
	}
	if !sameRule(s.Rule(), rule) {
		t.Fatalf("expected rule to survive clear")
	}
	searching := mustState(t)(New().BeginSearch(catalog.Filters{}))
	if _, err := searching.Clear(); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}
