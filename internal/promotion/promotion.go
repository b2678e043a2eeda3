package promotion

import "github.com/noah-isme/pos-engine/internal/money"

// DiscountType selects how a promotion's value is interpreted.
type DiscountType string

// Discount types.
const (
	TypePercentage DiscountType = "percentage"
	TypeFixed      DiscountType = "fixed"
)

// Scope selects which lines a promotion applies to.
type Scope string

// Scopes.
const (
	ScopeAll      Scope = "all"
	ScopeSpecific Scope = "specific"
)

// Kind distinguishes the promotion mechanics.
type Kind string

// Promotion kinds. Standard promotions discount an amount; the
// quantity kinds reward buying in groups.
const (
	KindStandard     Kind = "standard"
	KindBuyXDiscount Kind = "buy_x_discount"
	KindBuyXGetYFree Kind = "buy_x_get_y_free"
)

// Promotion is a candidate discount. Candidates reaching the evaluator
// are already filtered by activity window and active flag by their
// source. Percentages are carried in basis points so fractional
// percents stay exact in integer math; fixed values are minor units.
type Promotion struct {
	ID          string
	Name        string
	Kind        Kind
	Type        DiscountType
	PercentBps  int32
	Value       money.Money
	Scope       Scope
	ProductIDs  []string
	MinPurchase money.Money
	MaxDiscount money.Money
	UsageLimit  int32
	UsageCount  int32
	QtyRequired int32
	QtyReward   int32
}

func (p Promotion) appliesTo(productID string) bool {
	if p.Scope != ScopeSpecific {
		return true
	}
	for _, id := range p.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}
