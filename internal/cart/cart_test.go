package cart_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pos-engine/internal/cart"
)

func mustApply(t *testing.T, s cart.State, a cart.Action) cart.State {
	t.Helper()
	next, err := cart.Apply(s, a)
	require.NoError(t, err)
	return next
}

func TestAddUnitMergesByProduct(t *testing.T) {
	s := mustApply(t, cart.State{}, cart.AddUnit{ProductID: "p1", UnitPrice: 250})
	s = mustApply(t, s, cart.AddUnit{ProductID: "p1", UnitPrice: 250, Qty: 2})

	require.Len(t, s.Lines, 1)
	line, ok := s.Lines[0].(cart.UnitLine)
	require.True(t, ok)
	require.Equal(t, 3, line.Qty)
	require.Equal(t, int64(750), line.Total())
}

func TestAddUnitDoesNotMutateInput(t *testing.T) {
	s := mustApply(t, cart.State{}, cart.AddUnit{ProductID: "p1", UnitPrice: 100})
	before := s.Lines[0].(cart.UnitLine).Qty

	_, err := cart.Apply(s, cart.AddUnit{ProductID: "p1", UnitPrice: 100, Qty: 5})
	require.NoError(t, err)
	require.Equal(t, before, s.Lines[0].(cart.UnitLine).Qty)
}

func TestAddWeightedAlwaysAppends(t *testing.T) {
	s := mustApply(t, cart.State{}, cart.AddWeighted{ProductID: "apples", PricePerUnit: 300, Weight: 1000})
	s = mustApply(t, s, cart.AddWeighted{ProductID: "apples", PricePerUnit: 300, Weight: 500})

	require.Len(t, s.Lines, 2)
	require.Equal(t, int64(300), s.Lines[0].Total())
	require.Equal(t, int64(150), s.Lines[1].Total())
}

func TestAddWeightedWithTargetReweighs(t *testing.T) {
	s := mustApply(t, cart.State{}, cart.AddWeighted{ProductID: "apples", PricePerUnit: 300, Weight: 1000})
	id := s.Lines[0].LineID()

	s = mustApply(t, s, cart.AddWeighted{Target: id, PricePerUnit: 300, Weight: 2500})
	require.Len(t, s.Lines, 1)
	line := s.Lines[0].(cart.WeightedLine)
	require.Equal(t, int64(2500), line.Weight)
	require.Equal(t, int64(750), line.Price)
}

func TestAddWeightedTargetMissing(t *testing.T) {
	_, err := cart.Apply(cart.State{}, cart.AddWeighted{Target: uuid.New(), PricePerUnit: 300, Weight: 100})
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestAddCustomMergesOnExactPriceOnly(t *testing.T) {
	s := mustApply(t, cart.State{}, cart.AddCustom{ProductID: "svc", Price: 1500})
	s = mustApply(t, s, cart.AddCustom{ProductID: "svc", Price: 1500})
	s = mustApply(t, s, cart.AddCustom{ProductID: "svc", Price: 2000})

	require.Len(t, s.Lines, 2)
	first := s.Lines[0].(cart.CustomPriceLine)
	require.Equal(t, 2, first.Qty)
	second := s.Lines[1].(cart.CustomPriceLine)
	require.Equal(t, 1, second.Qty)
	require.Equal(t, int64(2000), second.Price)
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	s := mustApply(t, cart.State{}, cart.AddUnit{ProductID: "p1", UnitPrice: 100, Qty: 2})
	id := s.Lines[0].LineID()

	s = mustApply(t, s, cart.SetQuantity{Line: id, Qty: 0})
	require.True(t, s.Empty())
}

func TestSetQuantityOnWeightedLineRejected(t *testing.T) {
	s := mustApply(t, cart.State{}, cart.AddWeighted{ProductID: "apples", PricePerUnit: 300, Weight: 1000})
	_, err := cart.Apply(s, cart.SetQuantity{Line: s.Lines[0].LineID(), Qty: 2})
	require.ErrorIs(t, err, cart.ErrInvalidInput)
}

func TestSetWeightRecomputesPrice(t *testing.T) {
	s := mustApply(t, cart.State{}, cart.AddWeighted{ProductID: "apples", PricePerUnit: 420, Weight: 1000})
	id := s.Lines[0].LineID()

	s = mustApply(t, s, cart.SetWeight{Line: id, Weight: 1500})
	line := s.Lines[0].(cart.WeightedLine)
	require.Equal(t, int64(630), line.Price)

	s = mustApply(t, s, cart.SetWeight{Line: id, Weight: 0})
	require.True(t, s.Empty())
}

func TestRemoveUnknownLine(t *testing.T) {
	_, err := cart.Apply(cart.State{}, cart.Remove{Line: uuid.New()})
	if !errors.Is(err, cart.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestValidationLeavesStateUntouched(t *testing.T) {
	s := mustApply(t, cart.State{}, cart.AddUnit{ProductID: "p1", UnitPrice: 100})
	next, err := cart.Apply(s, cart.AddUnit{ProductID: "p2", UnitPrice: -5})
	require.ErrorIs(t, err, cart.ErrInvalidInput)
	require.Equal(t, s, next)

	next, err = cart.Apply(s, cart.AddWeighted{ProductID: "w", PricePerUnit: 100, Weight: 0})
	require.ErrorIs(t, err, cart.ErrInvalidInput)
	require.Equal(t, s, next)
}

func TestClear(t *testing.T) {
	s := mustApply(t, cart.State{}, cart.AddUnit{ProductID: "p1", UnitPrice: 100})
	s = mustApply(t, s, cart.Clear{})
	require.True(t, s.Empty())
}

func TestUnitQty(t *testing.T) {
	s := mustApply(t, cart.State{}, cart.AddUnit{ProductID: "p1", UnitPrice: 100, Qty: 3})
	require.Equal(t, 3, s.UnitQty("p1"))
	require.Equal(t, 0, s.UnitQty("p2"))
}
