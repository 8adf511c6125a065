// Package accuracy compares model predictions with observed rolls.
package accuracy

import (
	"github.com/google/uuid"

	"github.com/sup9097/table-dice-app/internal/dice"
)

// LargeDeviation is the total difference at which a comparison is tagged.
const LargeDeviation = 3

// LargeDeviationTag explains comparisons whose totals differ by LargeDeviation or more.
const LargeDeviationTag = "large deviation: abrupt pattern shift or insufficient data"

// Comparison is the outcome of checking one prediction against ground truth.
type Comparison struct {
	Predicted dice.Roll
	Actual    dice.Roll
	Match     bool
	Diff      int
	Tag       string
}

// Compare checks whether the predicted and observed totals agree.
func Compare(predicted, actual dice.Roll) Comparison {
	diff := predicted.Sum() - actual.Sum()
	if diff < 0 {
		diff = -diff
	}
	c := Comparison{
		Predicted: predicted,
		Actual:    actual,
		Match:     diff == 0,
		Diff:      diff,
	}
	if diff >= LargeDeviation {
		c.Tag = LargeDeviationTag
	}
	return c
}

// Tracker keeps the process-lifetime log of comparisons.
type Tracker struct {
	sessionID string
	log       []bool
	matches   int
}

// NewTracker returns an empty tracker with a fresh session id.
func NewTracker() *Tracker {
	return &Tracker{sessionID: uuid.NewString()}
}

// SessionID identifies the tracker instance.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// Record appends c to the log.
func (t *Tracker) Record(c Comparison) {
	t.log = append(t.log, c.Match)
	if c.Match {
		t.matches++
	}
}

// Matches returns the number of matching comparisons.
func (t *Tracker) Matches() int {
	return t.matches
}

// Total returns the number of recorded comparisons.
func (t *Tracker) Total() int {
	return len(t.log)
}

// Empty reports whether nothing has been recorded.
func (t *Tracker) Empty() bool {
	return len(t.log) == 0
}

// Percentage returns the cumulative match rate in percent, 0 when empty.
func (t *Tracker) Percentage() float64 {
	if len(t.log) == 0 {
		return 0
	}
	return float64(t.matches) / float64(len(t.log)) * 100
}

// Log returns a copy of the match log.
func (t *Tracker) Log() []bool {
	return append([]bool(nil), t.log...)
}

// Running returns the cumulative match percentage after each comparison.
func (t *Tracker) Running() []float64 {
	out := make([]float64, len(t.log))
	hits := 0
	for i, ok := range t.log {
		if ok {
			hits++
		}
		out[i] = float64(hits) / float64(i+1) * 100
	}
	return out
}

// Reset clears the log.
func (t *Tracker) Reset() {
	t.log = nil
	t.matches = 0
}

// Summary is a point-in-time copy of a tracker's counters.
type Summary struct {
	Matches int
	Total   int
	Running []float64
}

// Empty reports whether the summary holds no comparisons.
func (s Summary) Empty() bool {
	return s.Total == 0
}

// Percentage returns the cumulative match rate in percent, 0 when empty.
func (s Summary) Percentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Matches) / float64(s.Total) * 100
}

// Summary copies the current counters.
func (t *Tracker) Summary() Summary {
	return Summary{Matches: t.matches, Total: len(t.log), Running: t.Running()}
}
