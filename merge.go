package apcaledger

import "fmt"

// fillKey identifies the fills of one order executed at one price.
type fillKey struct {
	order string
	price string // normalized decimal representation
}

func keyOf(t Trade) fillKey { return fillKey{t.OrderID, t.Price.String()} }

// MergePartialFills collapses the partial fills of an order into its
// terminal fill, the one that left no unfilled quantity.
//
// The terminal fill is looked up in the whole batch since the feed does not
// guarantee that it comes last. Its quantity becomes the sum of the merged
// fills; its cumulative and unfilled quantities are kept. Partial fills
// whose terminal fill is not in the batch are returned untouched. The order
// of the remaining activities is preserved.
func MergePartialFills(batch []Activity) ([]Activity, error) {
	// first terminal fill for each order and price.
	terminals := make(map[fillKey]int)
	for i, a := range batch {
		t, ok := a.(Trade)
		if !ok || t.IsPartial() {
			continue
		}
		if _, exists := terminals[keyOf(t)]; !exists {
			terminals[keyOf(t)] = i
		}
	}

	merged := make(map[int]Trade) // terminal fills with partials added in
	consumed := make([]bool, len(batch))
	for i, a := range batch {
		t, ok := a.(Trade)
		if !ok || !t.IsPartial() {
			continue
		}
		j, ok := terminals[keyOf(t)]
		if !ok {
			continue
		}
		terminal, ok := merged[j]
		if !ok {
			terminal = batch[j].(Trade)
		}
		// partial fills of one order share its symbol and side.
		terminal.Quantity = terminal.Quantity.Add(t.Quantity)
		if terminal.Quantity.GreaterThan(terminal.CumulativeQuantity) {
			return nil, fmt.Errorf("merging fill %s into %s of order %s: %s > %s: %w",
				t.ID, terminal.ID, t.OrderID, terminal.Quantity, terminal.CumulativeQuantity, ErrOverfill)
		}
		merged[j] = terminal
		consumed[i] = true
	}

	out := make([]Activity, 0, len(batch))
	for i, a := range batch {
		if consumed[i] {
			continue
		}
		if t, ok := merged[i]; ok {
			a = t
		}
		out = append(out, a)
	}
	return out, nil
}
