// Package stats contains statistics calculations and reporting.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/table"
)

// MinCorrelationRows is the smallest history analyzed.
const MinCorrelationRows = 10

// ErrInsufficientData is returned for histories shorter than MinCorrelationRows.
var ErrInsufficientData = errors.New("insufficient data")

// Matrix is a 3x3 Pearson correlation matrix between die positions.
// Constant positions produce NaN entries.
type Matrix [3][3]float64

// Bucket classifies a correlation magnitude.
type Bucket string

// Buckets.
const (
	BucketLow       Bucket = "low"
	BucketMedium    Bucket = "medium"
	BucketHigh      Bucket = "high"
	BucketUndefined Bucket = "n/a"
)

// PairScore scores the correlation between positions I and J.
type PairScore struct {
	I, J   int
	R      float64
	Score  int
	Bucket Bucket
}

// TableCorrelation is one entry of a sweep.
type TableCorrelation struct {
	Table  table.Name
	Rows   int
	Matrix Matrix
	Pairs  []PairScore
}

// Correlation computes the position correlation matrix of history.
func Correlation(history []dice.Roll) (Matrix, error) {
	if len(history) < MinCorrelationRows {
		return Matrix{}, fmt.Errorf("%w: %d rows, need %d", ErrInsufficientData, len(history), MinCorrelationRows)
	}
	var cols [3][]float64
	for p := range cols {
		cols[p] = make([]float64, len(history))
		for i, r := range history {
			cols[p][i] = float64(r[p])
		}
	}
	var m Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = stat.Correlation(cols[i], cols[j], nil)
		}
	}
	return m, nil
}

// Score maps |r| to 0..10 and buckets it: below 3 low, below 7 medium,
// otherwise high.
func Score(r float64) (int, Bucket) {
	if math.IsNaN(r) {
		return -1, BucketUndefined
	}
	score := int(math.Round(math.Abs(r) * 10))
	switch {
	case score < 3:
		return score, BucketLow
	case score < 7:
		return score, BucketMedium
	default:
		return score, BucketHigh
	}
}

// Pairs scores every off-diagonal position pair of m.
func (m Matrix) Pairs() []PairScore {
	out := make([]PairScore, 0, 3)
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			score, bucket := Score(m[i][j])
			out = append(out, PairScore{I: i, J: j, R: m[i][j], Score: score, Bucket: bucket})
		}
	}
	return out
}

// Sweep analyzes every table with enough rows, in allow-list order.
func Sweep(histories map[table.Name][]dice.Roll) []TableCorrelation {
	var out []TableCorrelation
	for _, name := range table.All {
		h := histories[name]
		m, err := Correlation(h)
		if err != nil {
			continue
		}
		out = append(out, TableCorrelation{Table: name, Rows: len(h), Matrix: m, Pairs: m.Pairs()})
	}
	return out
}
