package learn

import (
	"fmt"

	"github.com/sup9097/table-dice-app/internal/dice"
)

const (
	// ConfidenceAttempts is the number of jittered predictions per check.
	ConfidenceAttempts = 2
	// ConfidenceRepeats is the number of repeated predictions on a hot sum.
	ConfidenceRepeats = 100
	// ConfidenceThreshold is how many repeats must agree to warn.
	ConfidenceThreshold = 50
)

var hotSums = map[int]struct{}{5: {}, 6: {}, 15: {}, 16: {}}

// IsHotSum reports whether sum is flagged for a confidence warning.
func IsHotSum(sum int) bool {
	_, ok := hotSums[sum]
	return ok
}

// Attempt is one jittered prediction of a confidence check.
type Attempt struct {
	Input      dice.Roll
	Prediction dice.Roll
	CommonFace int
	Hot        bool
	Agreeing   int
	Warning    string
}

// CheckConfidence predicts twice from jittered copies of last. When a
// prediction lands on a hot sum, the model is re-run on last itself and a
// warning is attached if at least half of the repeats agree on that sum.
func CheckConfidence(m *Model, last dice.Roll, gen *dice.Generator) []Attempt {
	attempts := make([]Attempt, 0, ConfidenceAttempts)
	for i := 0; i < ConfidenceAttempts; i++ {
		input := gen.Jitter(last)
		pred := m.Predict(input)
		a := Attempt{
			Input:      input,
			Prediction: pred,
			CommonFace: commonFace(pred),
			Hot:        IsHotSum(pred.Sum()),
		}
		if a.Hot {
			for r := 0; r < ConfidenceRepeats; r++ {
				if m.Predict(last).Sum() == pred.Sum() {
					a.Agreeing++
				}
			}
			if a.Agreeing >= ConfidenceThreshold {
				a.Warning = fmt.Sprintf("sum %d predicted in %d%% of repeats", pred.Sum(), a.Agreeing*100/ConfidenceRepeats)
			}
		}
		attempts = append(attempts, a)
	}
	return attempts
}

// commonFace returns the most frequent value of r, earliest position first
// on ties.
func commonFace(r dice.Roll) int {
	best, bestCount := r[0], 0
	for _, v := range r {
		count := 0
		for _, w := range r {
			if w == v {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = v, count
		}
	}
	return best
}
