// Package forecast computes frequency-based roll forecasts.
package forecast

import (
	"sort"

	"github.com/sup9097/table-dice-app/internal/dice"
)

// Count is a distinct roll and how often it occurred.
type Count struct {
	Roll  dice.Roll
	Count int
}

// Counts tallies distinct rolls, most frequent first. Ties keep the order in
// which the rolls first appeared in history.
func Counts(history []dice.Roll) []Count {
	index := map[dice.Roll]int{}
	counts := make([]Count, 0)
	for _, r := range history {
		if i, ok := index[r]; ok {
			counts[i].Count++
			continue
		}
		index[r] = len(counts)
		counts = append(counts, Count{Roll: r, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// Top returns the n most frequent rolls of history. With no history it falls
// back to n random triples from gen.
func Top(history []dice.Roll, n int, gen *dice.Generator) []dice.Roll {
	if n <= 0 {
		return nil
	}
	if len(history) == 0 {
		return gen.Triples(n)
	}
	counts := Counts(history)
	if n > len(counts) {
		n = len(counts)
	}
	out := make([]dice.Roll, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, counts[i].Roll)
	}
	return out
}
