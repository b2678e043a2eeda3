package pricing

import (
	"github.com/noah-isme/pos-engine/internal/cart"
	"github.com/noah-isme/pos-engine/internal/money"
)

// Summary aggregates computed order totals. Tax is always zero in this
// engine; the field is kept so snapshots keep a stable shape.
type Summary struct {
	Subtotal money.Money
	Discount money.Money
	Tax      money.Money
	Total    money.Money
}

// Subtotal sums the line totals of all items. The sum is commutative,
// so the result does not depend on line order.
func Subtotal(lines []cart.Line) money.Money {
	var subtotal money.Money
	for _, l := range lines {
		subtotal += l.Total()
	}
	return subtotal
}

// Compute derives the order totals for the given lines and discount.
// The discount is clamped to [0, subtotal] so the invariant
// total = subtotal - discount with 0 <= discount <= subtotal holds for
// any input.
func Compute(lines []cart.Line, discount money.Money) Summary {
	subtotal := Subtotal(lines)
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return Summary{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      0,
		Total:    subtotal - discount,
	}
}
