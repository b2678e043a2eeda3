// Package payment computes settlement figures for a tender against an
// order total. It is pure: it never mutates the order and never
// triggers persistence.
package payment

import "github.com/noah-isme/pos-engine/internal/money"

// Method identifies how the customer pays.
type Method string

// Supported payment methods.
const (
	MethodCash   Method = "cash"
	MethodCard   Method = "card"
	MethodCredit Method = "credit"
)

// ValidMethod reports whether m is a known payment method.
func ValidMethod(m Method) bool {
	switch m {
	case MethodCash, MethodCard, MethodCredit:
		return true
	}
	return false
}

// Settlement is the outcome of settling a tender. Satisfied gates the
// commit path: an unsatisfied settlement must block the sale.
type Settlement struct {
	Total            money.Money
	Tendered         money.Money
	Partial          bool
	AmountDue        money.Money
	RemainingBalance money.Money
	ChangeDue        money.Money
	Satisfied        bool
}

// Settle computes what is due now, what remains, and the change owed.
// In partial mode the amount collected now is partialAmount clamped to
// [0, total]; the remainder stays on the sale as an open balance.
func Settle(total, tendered money.Money, partial bool, partialAmount money.Money) Settlement {
	s := Settlement{Total: total, Tendered: tendered, Partial: partial}
	if !partial {
		s.AmountDue = total
		s.RemainingBalance = 0
	} else {
		due := partialAmount
		if due < 0 {
			due = 0
		}
		if due > total {
			due = total
		}
		s.AmountDue = due
		s.RemainingBalance = total - due
	}
	if change := tendered - s.AmountDue; change > 0 {
		s.ChangeDue = change
	}
	s.Satisfied = tendered >= s.AmountDue
	return s
}
