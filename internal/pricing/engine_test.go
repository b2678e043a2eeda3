package pricing_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pos-engine/internal/cart"
	"github.com/noah-isme/pos-engine/internal/pricing"
)

func sampleLines() []cart.Line {
	return []cart.Line{
		cart.UnitLine{ID: uuid.New(), ProductID: "p1", UnitPrice: 250, Qty: 2},
		cart.WeightedLine{ID: uuid.New(), ProductID: "apples", PricePerUnit: 300, Weight: 1500, Price: 450},
		cart.CustomPriceLine{ID: uuid.New(), ProductID: "svc", Price: 1000, Qty: 1},
	}
}

func TestSubtotalPerLineFormula(t *testing.T) {
	// 2*2.50 + 4.50 + 1*10.00 = 19.50
	require.Equal(t, int64(1950), pricing.Subtotal(sampleLines()))
}

func TestSubtotalOrderIndependent(t *testing.T) {
	lines := sampleLines()
	reversed := []cart.Line{lines[2], lines[1], lines[0]}
	require.Equal(t, pricing.Subtotal(lines), pricing.Subtotal(reversed))
}

func TestSubtotalEmpty(t *testing.T) {
	if got := pricing.Subtotal(nil); got != 0 {
		t.Fatalf("subtotal of empty cart = %d, want 0", got)
	}
}

func TestComputeClampsDiscount(t *testing.T) {
	summary := pricing.Compute(sampleLines(), 5000)
	require.Equal(t, summary.Subtotal, summary.Discount)
	require.Equal(t, int64(0), summary.Total)

	summary = pricing.Compute(sampleLines(), -100)
	require.Equal(t, int64(0), summary.Discount)
	require.Equal(t, summary.Subtotal, summary.Total)
}

func TestComputeTaxAlwaysZero(t *testing.T) {
	summary := pricing.Compute(sampleLines(), 200)
	require.Equal(t, int64(0), summary.Tax)
	require.Equal(t, summary.Subtotal-summary.Discount, summary.Total)
}
