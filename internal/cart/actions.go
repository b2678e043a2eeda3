package cart

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-engine/internal/money"
)

// Action is a single cart mutation. Apply evaluates an action against a
// state and returns the next state; the input state is never modified,
// and a failed action leaves no partial effect.
type Action interface {
	apply(State) (State, error)
}

// Apply runs one action against the given state.
func Apply(s State, a Action) (State, error) {
	if a == nil {
		return s, fmt.Errorf("nil action: %w", ErrInvalidInput)
	}
	return a.apply(s)
}

// AddUnit adds qty of a fixed-price product, merging into an existing
// unit line for the same product. Qty zero means one.
type AddUnit struct {
	ProductID string
	UnitPrice money.Money
	Qty       int
}

func (a AddUnit) apply(s State) (State, error) {
	qty := a.Qty
	if qty == 0 {
		qty = 1
	}
	if a.ProductID == "" {
		return s, fmt.Errorf("product id required: %w", ErrInvalidInput)
	}
	if a.UnitPrice < 0 {
		return s, fmt.Errorf("unit price must not be negative: %w", ErrInvalidInput)
	}
	if qty < 0 {
		return s, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	for _, l := range s.Lines {
		if u, ok := l.(UnitLine); ok && u.ProductID == a.ProductID {
			u.Qty += qty
			return s.replace(u.ID, u), nil
		}
	}
	next := s.clone()
	next.Lines = append(next.Lines, UnitLine{
		ID:        uuid.New(),
		ProductID: a.ProductID,
		UnitPrice: a.UnitPrice,
		Qty:       qty,
	})
	return next, nil
}

// AddWeighted records a weighed product. Without a target it always
// appends a new line, even when the product is already in the cart;
// with a target it re-weighs that line and recomputes its price.
type AddWeighted struct {
	ProductID    string
	PricePerUnit money.Money
	Weight       money.Milli
	Target       uuid.UUID
}

func (a AddWeighted) apply(s State) (State, error) {
	if a.Target == uuid.Nil && a.ProductID == "" {
		return s, fmt.Errorf("product id required: %w", ErrInvalidInput)
	}
	if a.PricePerUnit < 0 {
		return s, fmt.Errorf("price per unit must not be negative: %w", ErrInvalidInput)
	}
	if a.Weight <= 0 {
		return s, fmt.Errorf("weight must be positive: %w", ErrInvalidInput)
	}
	if a.Target != uuid.Nil {
		line, ok := s.Find(a.Target)
		if !ok {
			return s, fmt.Errorf("target line: %w", ErrNotFound)
		}
		w, ok := line.(WeightedLine)
		if !ok {
			return s, fmt.Errorf("target line is not weighted: %w", ErrInvalidInput)
		}
		w.Weight = a.Weight
		w.Price = money.WeightedPrice(w.PricePerUnit, a.Weight)
		return s.replace(w.ID, w), nil
	}
	next := s.clone()
	next.Lines = append(next.Lines, WeightedLine{
		ID:           uuid.New(),
		ProductID:    a.ProductID,
		PricePerUnit: a.PricePerUnit,
		Weight:       a.Weight,
		Price:        money.WeightedPrice(a.PricePerUnit, a.Weight),
	})
	return next, nil
}

// AddCustom adds qty of an item at an operator-entered price. Merges
// only when both the product and the exact price (in cents) match.
type AddCustom struct {
	ProductID string
	Price     money.Money
	Qty       int
}

func (a AddCustom) apply(s State) (State, error) {
	qty := a.Qty
	if qty == 0 {
		qty = 1
	}
	if a.ProductID == "" {
		return s, fmt.Errorf("product id required: %w", ErrInvalidInput)
	}
	if a.Price < 0 {
		return s, fmt.Errorf("price must not be negative: %w", ErrInvalidInput)
	}
	if qty < 0 {
		return s, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	for _, l := range s.Lines {
		if c, ok := l.(CustomPriceLine); ok && c.ProductID == a.ProductID && c.Price == a.Price {
			c.Qty += qty
			return s.replace(c.ID, c), nil
		}
	}
	next := s.clone()
	next.Lines = append(next.Lines, CustomPriceLine{
		ID:        uuid.New(),
		ProductID: a.ProductID,
		Price:     a.Price,
		Qty:       qty,
	})
	return next, nil
}

// SetQuantity updates a unit or custom-price line. A quantity of zero
// or less removes the line.
type SetQuantity struct {
	Line uuid.UUID
	Qty  int
}

func (a SetQuantity) apply(s State) (State, error) {
	line, ok := s.Find(a.Line)
	if !ok {
		return s, ErrNotFound
	}
	if a.Qty <= 0 {
		return s.without(a.Line), nil
	}
	switch l := line.(type) {
	case UnitLine:
		l.Qty = a.Qty
		return s.replace(l.ID, l), nil
	case CustomPriceLine:
		l.Qty = a.Qty
		return s.replace(l.ID, l), nil
	default:
		return s, fmt.Errorf("weighted lines have no quantity: %w", ErrInvalidInput)
	}
}

// SetWeight re-weighs a weighted line and recomputes its price. A
// weight of zero or less removes the line.
type SetWeight struct {
	Line   uuid.UUID
	Weight money.Milli
}

func (a SetWeight) apply(s State) (State, error) {
	line, ok := s.Find(a.Line)
	if !ok {
		return s, ErrNotFound
	}
	w, ok := line.(WeightedLine)
	if !ok {
		return s, fmt.Errorf("line is not weighted: %w", ErrInvalidInput)
	}
	if a.Weight <= 0 {
		return s.without(a.Line), nil
	}
	w.Weight = a.Weight
	w.Price = money.WeightedPrice(w.PricePerUnit, a.Weight)
	return s.replace(w.ID, w), nil
}

// Remove deletes a line unconditionally.
type Remove struct {
	Line uuid.UUID
}

func (a Remove) apply(s State) (State, error) {
	if _, ok := s.Find(a.Line); !ok {
		return s, ErrNotFound
	}
	return s.without(a.Line), nil
}

// Clear resets the order to empty.
type Clear struct{}

func (Clear) apply(State) (State, error) {
	return State{}, nil
}
