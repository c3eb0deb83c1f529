package selection

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pricing-profiles-backend/internal/catalog"
	"github.com/angelmondragon/pricing-profiles-backend/internal/pricing"
)

// Status is the phase of a working selection.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusSearching Status = "searching"
	StatusReviewing Status = "reviewing"
	StatusSaving    Status = "saving"
	StatusError     Status = "error"
)

var (
	// ErrBusy rejects a trigger while a search or save is outstanding.
	ErrBusy              = errors.New("selection: operation already in flight")
	ErrInvalidTransition = errors.New("selection: invalid transition")
	ErrUnknownSKU        = errors.New("selection: sku not in selection")
	ErrInvalidQuantity   = errors.New("selection: quantity must be at least 1")
	ErrEmptySelection    = errors.New("selection: nothing selected")
)

// State is an immutable working selection. Every transition returns a new
// State and leaves the receiver untouched.
type State struct {
	status  Status
	items   []pricing.LineItem
	rule    pricing.Rule
	filters catalog.Filters
	applied bool
	err     error
}

// New returns an empty Idle selection with the default rule.
func New() State {
	return State{status: StatusIdle, rule: pricing.DefaultRule()}
}

func (s State) Status() Status { return s.status }

func (s State) Rule() pricing.Rule { return s.rule }

func (s State) Filters() catalog.Filters { return s.filters }

// Err is the failure that moved the selection into StatusError.
func (s State) Err() error { return s.err }

// Items returns a copy of the line items in insertion order.
func (s State) Items() []pricing.LineItem {
	return cloneItems(s.items)
}

// Len returns the number of line items.
func (s State) Len() int { return len(s.items) }

// Total is the grand total of the current line items.
func (s State) Total() decimal.Decimal {
	return pricing.ComputeTotal(s.items)
}

// BeginSearch starts a catalog query. It is rejected while a search or save
// is already outstanding.
func (s State) BeginSearch(filters catalog.Filters) (State, error) {
	if s.busy() {
		return s, ErrBusy
	}
	next := s.clone()
	next.status = StatusSearching
	next.filters = filters
	next.err = nil
	return next, nil
}

// ReceiveResults adds products as line items with the given quantity. A sku
// already present keeps its position and takes the new quantity.
func (s State) ReceiveResults(products []catalog.Product, quantity int) (State, error) {
	if s.status != StatusSearching {
		return s, transitionError(s.status, StatusReviewing)
	}
	if quantity < 1 {
		return s, ErrInvalidQuantity
	}
	next := s.clone()
	for _, product := range products {
		if idx := next.indexOf(product.SKU); idx >= 0 {
			next.items[idx].Product = product
			next.items[idx].Quantity = quantity
			continue
		}
		next.items = append(next.items, pricing.NewLineItem(product, quantity))
	}
	next.status = StatusReviewing
	return next.reprice(), nil
}

// FailSearch records a failed catalog query.
func (s State) FailSearch(err error) (State, error) {
	if s.status != StatusSearching {
		return s, transitionError(s.status, StatusError)
	}
	next := s.clone()
	next.status = StatusError
	next.err = err
	return next, nil
}

// SetQuantity changes the quantity of sku.
func (s State) SetQuantity(sku string, quantity int) (State, error) {
	if quantity < 1 {
		return s, ErrInvalidQuantity
	}
	return s.update(sku, func(item *pricing.LineItem) {
		item.Quantity = quantity
	})
}

// SetIncluded marks sku for adjustment or excludes it.
func (s State) SetIncluded(sku string, included bool) (State, error) {
	return s.update(sku, func(item *pricing.LineItem) {
		item.Included = included
	})
}

// IncludeAll marks every line item for adjustment.
func (s State) IncludeAll() (State, error) {
	if err := s.editable(); err != nil {
		return s, err
	}
	next := s.clone()
	for i := range next.items {
		next.items[i].Included = true
	}
	return next.reprice(), nil
}

// Remove drops sku from the selection.
func (s State) Remove(sku string) (State, error) {
	if err := s.editable(); err != nil {
		return s, err
	}
	idx := s.indexOf(sku)
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrUnknownSKU, sku)
	}
	next := s.clone()
	next.items = append(next.items[:idx], next.items[idx+1:]...)
	return next, nil
}

// Clear empties the selection and returns to Idle. The rule is kept.
func (s State) Clear() (State, error) {
	if s.busy() {
		return s, ErrBusy
	}
	return State{status: StatusIdle, rule: s.rule}, nil
}

// WithRule replaces the current rule. Prices already applied are recomputed.
func (s State) WithRule(rule pricing.Rule) (State, error) {
	if err := rule.Validate(); err != nil {
		return s, err
	}
	if s.busy() {
		return s, ErrBusy
	}
	next := s.clone()
	next.rule = rule
	return next.reprice(), nil
}

// ApplyRule computes adjusted prices for included items and clears them on the
// rest. Later edits keep the prices current.
func (s State) ApplyRule() (State, error) {
	if err := s.editable(); err != nil {
		return s, err
	}
	next := s.clone()
	next.applied = true
	return next.reprice(), nil
}

// BeginSave moves a reviewed or failed selection into Saving.
func (s State) BeginSave() (State, error) {
	if s.status == StatusSaving || s.status == StatusSearching {
		return s, ErrBusy
	}
	if s.status != StatusReviewing && s.status != StatusError {
		return s, transitionError(s.status, StatusSaving)
	}
	if len(s.items) == 0 {
		return s, ErrEmptySelection
	}
	next := s.clone()
	next.status = StatusSaving
	next.err = nil
	return next, nil
}

// CompleteSave returns to Idle keeping the saved items.
func (s State) CompleteSave() (State, error) {
	if s.status != StatusSaving {
		return s, transitionError(s.status, StatusIdle)
	}
	next := s.clone()
	next.status = StatusIdle
	return next, nil
}

// FailSave records a failed save. Items are left exactly as they were.
func (s State) FailSave(err error) (State, error) {
	if s.status != StatusSaving {
		return s, transitionError(s.status, StatusError)
	}
	next := s.clone()
	next.status = StatusError
	next.err = err
	return next, nil
}

func (s State) update(sku string, fn func(item *pricing.LineItem)) (State, error) {
	if err := s.editable(); err != nil {
		return s, err
	}
	idx := s.indexOf(sku)
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrUnknownSKU, sku)
	}
	next := s.clone()
	fn(&next.items[idx])
	return next.reprice(), nil
}

func (s State) busy() bool {
	return s.status == StatusSearching || s.status == StatusSaving
}

func (s State) editable() error {
	if s.busy() {
		return ErrBusy
	}
	return nil
}

func (s State) indexOf(sku string) int {
	for i, item := range s.items {
		if item.SKU() == sku {
			return i
		}
	}
	return -1
}

// reprice must only be called on a clone.
func (s State) reprice() State {
	if !s.applied {
		return s
	}
	for i := range s.items {
		s.items[i] = s.items[i].Apply(s.rule)
	}
	return s
}

func (s State) clone() State {
	s.items = cloneItems(s.items)
	return s
}

func cloneItems(items []pricing.LineItem) []pricing.LineItem {
	if items == nil {
		return nil
	}
	out := make([]pricing.LineItem, len(items))
	copy(out, items)
	return out
}

func transitionError(from, to Status) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
