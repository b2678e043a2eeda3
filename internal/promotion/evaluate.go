package promotion

import "github.com/noah-isme/pos-engine/internal/money"

// Line is a promotion-eligible order line. Custom-priced service lines
// never reach the evaluator. Weighted lines carry their computed total
// with a zero Qty, which keeps them out of the quantity-based kinds.
type Line struct {
	ProductID string
	Qty       int
	UnitPrice money.Money
	Total     money.Money
}

// Input gathers everything Evaluate depends on. The toggle and pin are
// explicit so evaluation stays a pure function of its arguments.
type Input struct {
	Lines      []Line
	Subtotal   money.Money
	Candidates []Promotion
	Enabled    bool
	PinnedID   string
}

// Selection is the evaluation outcome. At most one promotion is ever
// selected; discounts never stack. PinnedUnavailable flags a pin that
// no longer qualifies, which callers surface as a warning.
type Selection struct {
	Promotion         *Promotion
	Discount          money.Money
	Pinned            bool
	PinnedUnavailable bool
}

// Evaluate selects the discount for the order. With the toggle off the
// discount is forced to zero without touching the candidates. With a
// pin set, that candidate's discount is used, zero if it no longer
// qualifies. Otherwise the single candidate with the maximum discount
// wins, ties broken by candidate order (first max wins), which makes
// the selection deterministic and idempotent for identical inputs.
func Evaluate(in Input) Selection {
	if !in.Enabled {
		return Selection{}
	}
	if in.PinnedID != "" {
		for i := range in.Candidates {
			if in.Candidates[i].ID != in.PinnedID {
				continue
			}
			p := in.Candidates[i]
			d := Discount(p, in.Lines, in.Subtotal)
			if d <= 0 {
				return Selection{Pinned: true, PinnedUnavailable: true}
			}
			return Selection{Promotion: &p, Discount: d, Pinned: true}
		}
		return Selection{Pinned: true, PinnedUnavailable: true}
	}
	var (
		best  Promotion
		bestD money.Money
		found bool
	)
	for i := range in.Candidates {
		d := Discount(in.Candidates[i], in.Lines, in.Subtotal)
		if d > bestD {
			best = in.Candidates[i]
			bestD = d
			found = true
		}
	}
	if !found {
		return Selection{}
	}
	return Selection{Promotion: &best, Discount: bestD}
}

// Discount computes the discount one candidate would contribute, zero
// when it does not qualify.
func Discount(p Promotion, lines []Line, subtotal money.Money) money.Money {
	if p.MinPurchase > 0 && subtotal < p.MinPurchase {
		return 0
	}
	if p.UsageLimit > 0 && p.UsageCount >= p.UsageLimit {
		return 0
	}
	var discount money.Money
	switch p.Kind {
	case KindBuyXDiscount:
		discount = buyXDiscount(p, lines)
	case KindBuyXGetYFree:
		discount = buyXGetYFree(p, lines)
	default:
		discount = standardDiscount(p, lines, subtotal)
	}
	if p.MaxDiscount > 0 && discount > p.MaxDiscount {
		discount = p.MaxDiscount
	}
	if discount <= 0 {
		return 0
	}
	return discount
}

func standardDiscount(p Promotion, lines []Line, subtotal money.Money) money.Money {
	eligible := subtotal
	if p.Scope == ScopeSpecific {
		eligible = 0
		for _, l := range lines {
			if p.appliesTo(l.ProductID) {
				eligible += l.Total
			}
		}
		if eligible <= 0 {
			return 0
		}
	}
	if p.Type == TypePercentage {
		return eligible * money.Money(p.PercentBps) / 10000
	}
	return p.Value
}

// buyXDiscount discounts every complete group of QtyRequired units of
// a product by the percentage.
func buyXDiscount(p Promotion, lines []Line) money.Money {
	if p.QtyRequired <= 0 || p.PercentBps <= 0 {
		return 0
	}
	var total money.Money
	for _, g := range groupByProduct(p, lines) {
		groups := g.qty / int(p.QtyRequired)
		if groups <= 0 {
			continue
		}
		discounted := money.Money(groups * int(p.QtyRequired))
		total += g.unitPrice * discounted * money.Money(p.PercentBps) / 10000
	}
	return total
}

// buyXGetYFree grants QtyReward free units for every complete set of
// QtyRequired+QtyReward units of a product.
func buyXGetYFree(p Promotion, lines []Line) money.Money {
	if p.QtyRequired <= 0 || p.QtyReward <= 0 {
		return 0
	}
	setSize := int(p.QtyRequired + p.QtyReward)
	var total money.Money
	for _, g := range groupByProduct(p, lines) {
		sets := g.qty / setSize
		if sets <= 0 {
			continue
		}
		total += g.unitPrice * money.Money(sets*int(p.QtyReward))
	}
	return total
}

type productGroup struct {
	qty       int
	unitPrice money.Money
}

func groupByProduct(p Promotion, lines []Line) map[string]productGroup {
	groups := make(map[string]productGroup)
	for _, l := range lines {
		if l.Qty <= 0 || !p.appliesTo(l.ProductID) {
			continue
		}
		g := groups[l.ProductID]
		if g.qty == 0 {
			g.unitPrice = l.UnitPrice
		}
		g.qty += l.Qty
		groups[l.ProductID] = g
	}
	return groups
}
