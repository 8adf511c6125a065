// Package learn trains and serves the per-table next-roll classifier.
//
// The model pairs every roll with the roll that followed it and fits one
// random forest per die position, so a prediction is conditioned on the
// previous roll only.
package learn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/forest"
)

const (
	// MinTrainRows is the smallest history Train accepts.
	MinTrainRows = 5
	// MinEvalRows is the smallest history Evaluate accepts.
	MinEvalRows = 10
	// TestFraction is the share of pairs held out by Evaluate.
	TestFraction = 0.3
)

// ErrInsufficientData is returned when a history is too short.
var ErrInsufficientData = errors.New("insufficient data")

// Options configures the forests.
type Options struct {
	Estimators int
	Seed       int64
}

func (o Options) forest() forest.Options {
	return forest.Options{Trees: o.Estimators, Seed: o.Seed}
}

// DefaultOptions returns 100 estimators seeded with 42.
func DefaultOptions() Options {
	return Options{Estimators: forest.DefaultTrees, Seed: forest.DefaultSeed}
}

// Distribution is the class-probability distribution of one die position.
type Distribution struct {
	Classes []int
	Probs   []float64
}

// Sum returns the total probability mass.
func (d Distribution) Sum() float64 {
	total := 0.0
	for _, p := range d.Probs {
		total += p
	}
	return total
}

// Model is a trained next-roll classifier.
type Model struct {
	forest *forest.MultiOutput
	rows   int
}

// Train fits a model on history.
func Train(history []dice.Roll, opts Options) (*Model, error) {
	if len(history) < MinTrainRows {
		return nil, fmt.Errorf("%w: %d rows, need %d", ErrInsufficientData, len(history), MinTrainRows)
	}
	X, Y := pairs(history)
	f, err := forest.FitMulti(X, Y, opts.forest())
	if err != nil {
		return nil, fmt.Errorf("failed to fit model: %w", err)
	}
	return &Model{forest: f, rows: len(history)}, nil
}

// Rows returns the history length the model was trained on.
func (m *Model) Rows() int {
	return m.rows
}

// Predict returns the per-position prediction for the roll after last.
func (m *Model) Predict(last dice.Roll) dice.Roll {
	pred := m.forest.Predict(last[:])
	return dice.Roll{pred[0], pred[1], pred[2]}
}

// PredictProba returns the per-position class distributions for the roll
// after last.
func (m *Model) PredictProba(last dice.Roll) [3]Distribution {
	var out [3]Distribution
	for i, probs := range m.forest.PredictProba(last[:]) {
		out[i] = Distribution{
			Classes: m.forest.Estimator(i).Classes(),
			Probs:   probs,
		}
	}
	return out
}

// Evaluation reports held-out accuracy per die position.
type Evaluation struct {
	Accuracy  [3]float64
	TrainRows int
	TestRows  int
}

// Evaluate fits a fresh model on a seeded 70/30 split of history pairs and
// scores it on the held-out part.
func Evaluate(history []dice.Roll, opts Options) (Evaluation, error) {
	if len(history) < MinEvalRows {
		return Evaluation{}, fmt.Errorf("%w: %d rows, need %d", ErrInsufficientData, len(history), MinEvalRows)
	}
	X, Y := pairs(history)
	n := len(X)
	testN := int(math.Ceil(TestFraction * float64(n)))
	perm := rand.New(rand.NewSource(opts.Seed)).Perm(n)
	testIdx, trainIdx := perm[:testN], perm[testN:]

	trainX, trainY := subset(X, trainIdx), subset(Y, trainIdx)
	f, err := forest.FitMulti(trainX, trainY, opts.forest())
	if err != nil {
		return Evaluation{}, fmt.Errorf("failed to fit model: %w", err)
	}

	var hits [3]int
	for _, i := range testIdx {
		pred := f.Predict(X[i])
		for p := 0; p < 3; p++ {
			if pred[p] == Y[i][p] {
				hits[p]++
			}
		}
	}
	ev := Evaluation{TrainRows: len(trainIdx), TestRows: testN}
	for p := range hits {
		ev.Accuracy[p] = float64(hits[p]) / float64(testN)
	}
	return ev, nil
}

func pairs(history []dice.Roll) ([][]int, [][]int) {
	X := make([][]int, 0, len(history)-1)
	Y := make([][]int, 0, len(history)-1)
	for i := 0; i+1 < len(history); i++ {
		cur, next := history[i], history[i+1]
		X = append(X, []int{cur[0], cur[1], cur[2]})
		Y = append(Y, []int{next[0], next[1], next[2]})
	}
	return X, Y
}

func subset(rows [][]int, idx []int) [][]int {
	out := make([][]int, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}
