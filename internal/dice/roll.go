// Package dice defines the three-die Roll and the digit codec that produces it.
package dice

import (
	"errors"
	"fmt"
	"sort"
)

// Faces is the number of faces on a physical die.
const Faces = 6

// ErrMalformedInput is returned when a digit string cannot be split into rolls.
var ErrMalformedInput = errors.New("malformed roll input")

// Roll is one trial of three dice. Canonical rolls are sorted ascending.
type Roll [3]int

// Canonical returns the roll of the three values sorted ascending.
func Canonical(a, b, c int) Roll {
	r := Roll{a, b, c}
	sort.Ints(r[:])
	return r
}

// Sum returns the total of the three dice.
func (r Roll) Sum() int {
	return r[0] + r[1] + r[2]
}

// String renders the roll as a tuple, e.g. (1, 2, 3).
func (r Roll) String() string {
	return fmt.Sprintf("(%d, %d, %d)", r[0], r[1], r[2])
}

// ParseDigits splits s into consecutive 3-digit groups and returns one
// canonical Roll per group. Either every group parses or none is returned.
func ParseDigits(s string) ([]Roll, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedInput)
	}
	if len(s)%3 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 3", ErrMalformedInput, len(s))
	}
	rolls := make([]Roll, 0, len(s)/3)
	for i := 0; i < len(s); i += 3 {
		var vals [3]int
		for j := 0; j < 3; j++ {
			ch := s[i+j]
			if ch < '0' || ch > '9' {
				return nil, fmt.Errorf("%w: non-digit character %q at position %d", ErrMalformedInput, ch, i+j)
			}
			vals[j] = int(ch - '0')
		}
		rolls = append(rolls, Canonical(vals[0], vals[1], vals[2]))
	}
	return rolls, nil
}

// Sums returns the totals of the given rolls in order.
func Sums(rolls []Roll) []int {
	out := make([]int, len(rolls))
	for i, r := range rolls {
		out[i] = r.Sum()
	}
	return out
}
