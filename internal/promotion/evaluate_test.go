package promotion_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pos-engine/internal/money"
	"github.com/noah-isme/pos-engine/internal/promotion"
)

func lines() []promotion.Line {
	return []promotion.Line{
		{ProductID: "p1", Qty: 2, UnitPrice: 500, Total: 1000},
		{ProductID: "p2", Qty: 1, UnitPrice: 2000, Total: 2000},
		{ProductID: "apples", Qty: 0, UnitPrice: 0, Total: 450}, // weighted
	}
}

func TestToggleOffForcesZero(t *testing.T) {
	sel := promotion.Evaluate(promotion.Input{
		Lines:    lines(),
		Subtotal: 3450,
		Candidates: []promotion.Promotion{
			{ID: "a", Type: promotion.TypePercentage, PercentBps: 1000, Scope: promotion.ScopeAll},
		},
		Enabled: false,
	})
	require.Nil(t, sel.Promotion)
	require.Equal(t, money.Money(0), sel.Discount)
}

func TestScopeAllPercentage(t *testing.T) {
	p := promotion.Promotion{ID: "a", Type: promotion.TypePercentage, PercentBps: 1000, Scope: promotion.ScopeAll}
	require.Equal(t, money.Money(345), promotion.Discount(p, lines(), 3450))
}

func TestScopeSpecificPercentageUsesEligibleSubtotal(t *testing.T) {
	p := promotion.Promotion{
		ID:         "a",
		Type:       promotion.TypePercentage,
		PercentBps: 2000,
		Scope:      promotion.ScopeSpecific,
		ProductIDs: []string{"p1", "apples"},
	}
	// eligible = 10.00 + 4.50 = 14.50; 20% = 2.90
	require.Equal(t, money.Money(290), promotion.Discount(p, lines(), 3450))
}

func TestScopeSpecificNoEligibleLines(t *testing.T) {
	p := promotion.Promotion{ID: "a", Type: promotion.TypeFixed, Value: 500, Scope: promotion.ScopeSpecific, ProductIDs: []string{"absent"}}
	require.Equal(t, money.Money(0), promotion.Discount(p, lines(), 3450))
}

func TestMinPurchaseFloor(t *testing.T) {
	p := promotion.Promotion{ID: "a", Type: promotion.TypeFixed, Value: 500, Scope: promotion.ScopeAll, MinPurchase: 5000}
	require.Equal(t, money.Money(0), promotion.Discount(p, lines(), 3450))
	p.MinPurchase = 3450
	require.Equal(t, money.Money(500), promotion.Discount(p, lines(), 3450))
}

func TestUsageLimitExhausted(t *testing.T) {
	p := promotion.Promotion{ID: "a", Type: promotion.TypeFixed, Value: 500, Scope: promotion.ScopeAll, UsageLimit: 3, UsageCount: 3}
	require.Equal(t, money.Money(0), promotion.Discount(p, lines(), 3450))
}

func TestMaxDiscountCap(t *testing.T) {
	p := promotion.Promotion{ID: "a", Type: promotion.TypePercentage, PercentBps: 5000, Scope: promotion.ScopeAll, MaxDiscount: 400}
	require.Equal(t, money.Money(400), promotion.Discount(p, lines(), 3450))
}

func TestDiscountMonotonicInSubtotal(t *testing.T) {
	p := promotion.Promotion{ID: "a", Type: promotion.TypePercentage, PercentBps: 1000, Scope: promotion.ScopeAll}
	prev := money.Money(-1)
	for _, subtotal := range []money.Money{0, 100, 999, 1000, 5000, 100000} {
		d := promotion.Discount(p, nil, subtotal)
		if d < prev {
			t.Fatalf("discount decreased: %d < %d at subtotal %d", d, prev, subtotal)
		}
		prev = d
	}
}

func TestSelectsMaximumDiscount(t *testing.T) {
	in := promotion.Input{
		Lines:    lines(),
		Subtotal: 3450,
		Candidates: []promotion.Promotion{
			{ID: "small", Type: promotion.TypeFixed, Value: 200, Scope: promotion.ScopeAll},
			{ID: "big", Type: promotion.TypePercentage, PercentBps: 2000, Scope: promotion.ScopeAll}, // 6.90
		},
		Enabled: true,
	}
	sel := promotion.Evaluate(in)
	require.NotNil(t, sel.Promotion)
	require.Equal(t, "big", sel.Promotion.ID)
	require.Equal(t, money.Money(690), sel.Discount)

	// idempotent for identical inputs
	again := promotion.Evaluate(in)
	require.Equal(t, sel.Discount, again.Discount)
	require.Equal(t, sel.Promotion.ID, again.Promotion.ID)
}

func TestTieBrokenByCandidateOrder(t *testing.T) {
	in := promotion.Input{
		Subtotal: 1000,
		Candidates: []promotion.Promotion{
			{ID: "first", Type: promotion.TypeFixed, Value: 300, Scope: promotion.ScopeAll},
			{ID: "second", Type: promotion.TypeFixed, Value: 300, Scope: promotion.ScopeAll},
		},
		Enabled: true,
	}
	sel := promotion.Evaluate(in)
	require.Equal(t, "first", sel.Promotion.ID)
}

func TestPinnedPromotionWins(t *testing.T) {
	in := promotion.Input{
		Lines:    lines(),
		Subtotal: 3450,
		Candidates: []promotion.Promotion{
			{ID: "small", Type: promotion.TypeFixed, Value: 200, Scope: promotion.ScopeAll},
			{ID: "big", Type: promotion.TypeFixed, Value: 900, Scope: promotion.ScopeAll},
		},
		Enabled:  true,
		PinnedID: "small",
	}
	sel := promotion.Evaluate(in)
	require.True(t, sel.Pinned)
	require.Equal(t, "small", sel.Promotion.ID)
	require.Equal(t, money.Money(200), sel.Discount)
}

func TestPinnedPromotionNoLongerQualifies(t *testing.T) {
	in := promotion.Input{
		Subtotal: 100,
		Candidates: []promotion.Promotion{
			{ID: "gone", Type: promotion.TypeFixed, Value: 200, Scope: promotion.ScopeAll, MinPurchase: 5000},
		},
		Enabled:  true,
		PinnedID: "gone",
	}
	sel := promotion.Evaluate(in)
	require.True(t, sel.PinnedUnavailable)
	require.Nil(t, sel.Promotion)
	require.Equal(t, money.Money(0), sel.Discount)

	in.PinnedID = "never-existed"
	sel = promotion.Evaluate(in)
	require.True(t, sel.PinnedUnavailable)
}

func TestBuyXDiscount(t *testing.T) {
	// buy 3 of p1, every complete group of 3 gets 50% off each unit
	p := promotion.Promotion{
		ID:          "bulk",
		Kind:        promotion.KindBuyXDiscount,
		PercentBps:  5000,
		Scope:       promotion.ScopeSpecific,
		ProductIDs:  []string{"p1"},
		QtyRequired: 3,
	}
	ls := []promotion.Line{{ProductID: "p1", Qty: 7, UnitPrice: 400, Total: 2800}}
	// two complete groups of 3 = 6 units at 50% of 4.00 = 12.00
	require.Equal(t, money.Money(1200), promotion.Discount(p, ls, 2800))

	ls[0].Qty = 2
	require.Equal(t, money.Money(0), promotion.Discount(p, ls, 800))
}

func TestBuyXGetYFree(t *testing.T) {
	// buy 2 get 1 free
	p := promotion.Promotion{
		ID:          "b2g1",
		Kind:        promotion.KindBuyXGetYFree,
		Scope:       promotion.ScopeAll,
		QtyRequired: 2,
		QtyReward:   1,
	}
	ls := []promotion.Line{{ProductID: "p1", Qty: 7, UnitPrice: 300, Total: 2100}}
	// two complete sets of 3 = 2 free units = 6.00
	require.Equal(t, money.Money(600), promotion.Discount(p, ls, 2100))
}

func TestQuantityKindsIgnoreWeightedLines(t *testing.T) {
	p := promotion.Promotion{
		ID:          "bulk",
		Kind:        promotion.KindBuyXDiscount,
		PercentBps:  5000,
		Scope:       promotion.ScopeAll,
		QtyRequired: 1,
	}
	ls := []promotion.Line{{ProductID: "apples", Qty: 0, Total: 450}}
	require.Equal(t, money.Money(0), promotion.Discount(p, ls, 450))
}
