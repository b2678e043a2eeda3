package change_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pos-engine/internal/change"
	"github.com/noah-isme/pos-engine/internal/money"
)

func TestBreakdownZero(t *testing.T) {
	require.Empty(t, change.Breakdown(0))
	require.Empty(t, change.Breakdown(-50))
}

func TestBreakdownSevenThirtyEight(t *testing.T) {
	entries := change.Breakdown(738)
	require.NotEmpty(t, entries)

	// largest first
	for i := 1; i < len(entries); i++ {
		require.Greater(t, entries[i-1].Denomination, entries[i].Denomination)
	}

	var sum money.Money
	for _, e := range entries {
		sum += e.Denomination * money.Money(e.Count)
	}
	require.Equal(t, money.Money(738), sum)

	require.Equal(t, money.Money(500), entries[0].Denomination)
	require.Equal(t, change.KindNote, entries[0].Kind)
}

func TestBreakdownSumsBackExactly(t *testing.T) {
	for _, amount := range []money.Money{1, 3, 99, 100, 101, 738, 4999, 123456} {
		var sum money.Money
		for _, e := range change.Breakdown(amount) {
			sum += e.Denomination * money.Money(e.Count)
		}
		if sum != amount {
			t.Fatalf("breakdown of %d sums to %d", amount, sum)
		}
	}
}

func TestBreakdownCounts(t *testing.T) {
	entries := change.Breakdown(110000)
	require.Equal(t, money.Money(50000), entries[0].Denomination)
	require.Equal(t, 2, entries[0].Count)
	require.Equal(t, money.Money(10000), entries[1].Denomination)
	require.Equal(t, 1, entries[1].Count)
}

func TestDenominationsDescending(t *testing.T) {
	table := change.Denominations()
	require.Len(t, table, 15)
	for i := 1; i < len(table); i++ {
		require.Greater(t, table[i-1].Value, table[i].Value)
	}
	require.Equal(t, money.Money(1), table[len(table)-1].Value)
}
