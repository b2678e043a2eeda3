// Package change decomposes a change amount into physical note and coin
// denominations. The greedy walk is exact and optimal for the canonical
// euro table below; it is not a general change-making algorithm for
// arbitrary denomination sets.
package change

import "github.com/noah-isme/pos-engine/internal/money"

// Kind distinguishes notes from coins.
type Kind string

// Denomination kinds.
const (
	KindNote Kind = "note"
	KindCoin Kind = "coin"
)

// Denomination is one physical unit of currency, valued in cents.
type Denomination struct {
	Value money.Money
	Kind  Kind
	Label string
}

// Entry is one row of a breakdown: how many of a denomination to hand
// out.
type Entry struct {
	Denomination money.Money `json:"denomination"`
	Kind         Kind        `json:"kind"`
	Label        string      `json:"label"`
	Count        int         `json:"count"`
}

// euroDenominations is the canonical table, descending, notes first.
var euroDenominations = []Denomination{
	{Value: 50000, Kind: KindNote, Label: "€500"},
	{Value: 20000, Kind: KindNote, Label: "€200"},
	{Value: 10000, Kind: KindNote, Label: "€100"},
	{Value: 5000, Kind: KindNote, Label: "€50"},
	{Value: 2000, Kind: KindNote, Label: "€20"},
	{Value: 1000, Kind: KindNote, Label: "€10"},
	{Value: 500, Kind: KindNote, Label: "€5"},
	{Value: 200, Kind: KindCoin, Label: "€2"},
	{Value: 100, Kind: KindCoin, Label: "€1"},
	{Value: 50, Kind: KindCoin, Label: "50c"},
	{Value: 20, Kind: KindCoin, Label: "20c"},
	{Value: 10, Kind: KindCoin, Label: "10c"},
	{Value: 5, Kind: KindCoin, Label: "5c"},
	{Value: 2, Kind: KindCoin, Label: "2c"},
	{Value: 1, Kind: KindCoin, Label: "1c"},
}

// Denominations returns the canonical table, largest first.
func Denominations() []Denomination {
	out := make([]Denomination, len(euroDenominations))
	copy(out, euroDenominations)
	return out
}

// Breakdown decomposes the amount greedily, largest denomination first.
// Amounts of zero or less yield an empty breakdown. Because amounts are
// integer cents and the table ends at one cent, the entries always sum
// back to the input exactly.
func Breakdown(amount money.Money) []Entry {
	if amount <= 0 {
		return nil
	}
	remaining := amount
	var entries []Entry
	for _, d := range euroDenominations {
		if remaining == 0 {
			break
		}
		count := remaining / d.Value
		if count <= 0 {
			continue
		}
		entries = append(entries, Entry{
			Denomination: d.Value,
			Kind:         d.Kind,
			Label:        d.Label,
			Count:        int(count),
		})
		remaining -= count * d.Value
	}
	return entries
}
