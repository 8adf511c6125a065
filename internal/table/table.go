// Package table defines the fixed namespace of dice tables.
package table

import (
	"errors"
	"fmt"
	"strings"
)

// Name identifies a table.
type Name string

// Kind classifies a table.
type Kind int

const (
	// KindBase tables hold directly entered rolls.
	KindBase Kind = iota
	// KindAggregate is recomputed from the base tables on selection.
	KindAggregate
	// KindSimulation tables hold synthetic data and copies of base tables.
	KindSimulation
)

// SimPrefix prefixes simulation table names.
const SimPrefix = "sim-"

// Aggregate is the combined table.
const Aggregate Name = "to"

// Default is the table selected on startup.
const Default Name = "2f"

// ErrUnsupportedTable is returned for names outside the allow-list.
var ErrUnsupportedTable = errors.New("unsupported table")

// Base lists base tables in aggregation order.
var Base = []Name{"2f", "1-1", "1-2", "1-3", "1-4"}

// All is the allow-list in display order.
var All = []Name{"2f", "1-1", "1-2", "1-3", "1-4", "to", "sim-2f", "sim-1-1", "sim-1-2", "sim-1-3", "sim-1-4"}

// Parse validates s against the allow-list.
func Parse(s string) (Name, error) {
	n := Name(strings.TrimSpace(s))
	if !n.Valid() {
		return "", fmt.Errorf("%w %q (allowed: %s)", ErrUnsupportedTable, s, strings.Join(Strings(), ", "))
	}
	return n, nil
}

// Valid reports whether n is in the allow-list.
func (n Name) Valid() bool {
	for _, t := range All {
		if t == n {
			return true
		}
	}
	return false
}

// Kind returns the kind of n.
func (n Name) Kind() Kind {
	switch {
	case n == Aggregate:
		return KindAggregate
	case strings.HasPrefix(string(n), SimPrefix):
		return KindSimulation
	default:
		return KindBase
	}
}

// SimTwin returns the simulation table that mirrors n. Simulation tables are
// their own twin.
func (n Name) SimTwin() (Name, error) {
	twin := n
	if n.Kind() != KindSimulation {
		twin = Name(SimPrefix + string(n))
	}
	if !twin.Valid() {
		return "", fmt.Errorf("%w: simulation table %q", ErrUnsupportedTable, twin)
	}
	return twin, nil
}

// String implements fmt.Stringer.
func (n Name) String() string {
	return string(n)
}

func (k Kind) String() string {
	switch k {
	case KindAggregate:
		return "aggregate"
	case KindSimulation:
		return "simulation"
	default:
		return "base"
	}
}

// Strings returns the allow-list as plain strings.
func Strings() []string {
	out := make([]string, len(All))
	for i, n := range All {
		out[i] = string(n)
	}
	return out
}
