package cart

import (
	"errors"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-engine/internal/money"
)

// ErrNotFound indicates the referenced line does not exist in the order.
var ErrNotFound = errors.New("line not found")

// ErrInvalidInput is returned when a mutation carries an invalid payload.
var ErrInvalidInput = errors.New("invalid input")

// Line is one entry in the order. Exactly one concrete variant applies:
// UnitLine, WeightedLine or CustomPriceLine. Modeling the variants as
// separate types keeps weight and quantity-multiplier semantics from
// ever appearing on the same line.
type Line interface {
	LineID() uuid.UUID
	ItemID() string
	Total() money.Money
}

// UnitLine is a fixed-price product counted by integer quantity.
type UnitLine struct {
	ID        uuid.UUID
	ProductID string
	UnitPrice money.Money
	Qty       int
}

// LineID returns the line identity.
func (l UnitLine) LineID() uuid.UUID { return l.ID }

// ItemID returns the referenced catalog item.
func (l UnitLine) ItemID() string { return l.ProductID }

// Total returns unit price times quantity.
func (l UnitLine) Total() money.Money { return l.UnitPrice * money.Money(l.Qty) }

// WeightedLine is a product priced by measured weight times a per-unit
// rate. Price is derived and recomputed on every weight change; it is
// never settable on its own.
type WeightedLine struct {
	ID           uuid.UUID
	ProductID    string
	PricePerUnit money.Money
	Weight       money.Milli
	Price        money.Money
}

// LineID returns the line identity.
func (l WeightedLine) LineID() uuid.UUID { return l.ID }

// ItemID returns the referenced catalog item.
func (l WeightedLine) ItemID() string { return l.ProductID }

// Total returns the derived weighted price.
func (l WeightedLine) Total() money.Money { return l.Price }

// CustomPriceLine is a service-style item sold at an operator-entered
// price. The same item may appear as several lines at different prices.
type CustomPriceLine struct {
	ID        uuid.UUID
	ProductID string
	Price     money.Money
	Qty       int
}

// LineID returns the line identity.
func (l CustomPriceLine) LineID() uuid.UUID { return l.ID }

// ItemID returns the referenced catalog item.
func (l CustomPriceLine) ItemID() string { return l.ProductID }

// Total returns the negotiated price times quantity.
func (l CustomPriceLine) Total() money.Money { return l.Price * money.Money(l.Qty) }

// State is the ordered collection of line items for one checkout.
// Insertion order is preserved for display.
type State struct {
	Lines []Line
}

// Empty reports whether the order holds no lines.
func (s State) Empty() bool { return len(s.Lines) == 0 }

// Find returns the line with the given id.
func (s State) Find(id uuid.UUID) (Line, bool) {
	for _, l := range s.Lines {
		if l.LineID() == id {
			return l, true
		}
	}
	return nil, false
}

// UnitQty returns the quantity already in the cart for the product's
// unit line, used by stock admission checks.
func (s State) UnitQty(productID string) int {
	for _, l := range s.Lines {
		if u, ok := l.(UnitLine); ok && u.ProductID == productID {
			return u.Qty
		}
	}
	return 0
}

func (s State) clone() State {
	lines := make([]Line, len(s.Lines))
	copy(lines, s.Lines)
	return State{Lines: lines}
}

func (s State) without(id uuid.UUID) State {
	lines := make([]Line, 0, len(s.Lines))
	for _, l := range s.Lines {
		if l.LineID() != id {
			lines = append(lines, l)
		}
	}
	return State{Lines: lines}
}

func (s State) replace(id uuid.UUID, line Line) State {
	next := s.clone()
	for i, l := range next.Lines {
		if l.LineID() == id {
			next.Lines[i] = line
			break
		}
	}
	return next
}
