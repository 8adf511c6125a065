package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/table"
)

func linearHistory(n int) []dice.Roll {
	out := make([]dice.Roll, n)
	for i := range out {
		v := i % 4
		out[i] = dice.Roll{v, v + 1, 9 - v}
	}
	return out
}

func TestCorrelationRequiresTenRows(t *testing.T) {
	if _, err := Correlation(linearHistory(9)); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestCorrelationMatrix(t *testing.T) {
	m, err := Correlation(linearHistory(12))
	if err != nil {
		t.Fatalf("correlation: %v", err)
	}
	for i := 0; i < 3; i++ {
		if math.Abs(m[i][i]-1) > 1e-9 {
			t.Fatalf("expected unit diagonal, got %f at %d", m[i][i], i)
		}
	}
	if math.Abs(m[0][1]-1) > 1e-9 {
		t.Fatalf("expected r(1,2)=1, got %f", m[0][1])
	}
	if math.Abs(m[0][2]+1) > 1e-9 {
		t.Fatalf("expected r(1,3)=-1, got %f", m[0][2])
	}
	if m[1][2] != m[2][1] {
		t.Fatalf("expected symmetric matrix")
	}
}

func TestConstantPositionIsUndefined(t *testing.T) {
	history := make([]dice.Roll, 10)
	for i := range history {
		history[i] = dice.Roll{1, i % 6, 6}
	}
	m, err := Correlation(history)
	if err != nil {
		t.Fatalf("correlation: %v", err)
	}
	if !math.IsNaN(m[0][1]) {
		t.Fatalf("expected NaN for constant position, got %f", m[0][1])
	}
	if _, bucket := Score(m[0][1]); bucket != BucketUndefined {
		t.Fatalf("expected undefined bucket, got %s", bucket)
	}
}

func TestScoreBuckets(t *testing.T) {
	tests := []struct {
		r      float64
		score  int
		bucket Bucket
	}{
		{r: 0.04, score: 0, bucket: BucketLow},
		{r: -0.24, score: 2, bucket: BucketLow},
		{r: 0.25, score: 3, bucket: BucketMedium},
		{r: -0.64, score: 6, bucket: BucketMedium},
		{r: 0.66, score: 7, bucket: BucketHigh},
		{r: -1, score: 10, bucket: BucketHigh},
	}
	for _, tt := range tests {
		score, bucket := Score(tt.r)
		if score != tt.score || bucket != tt.bucket {
			t.Fatalf("Score(%f) = (%d, %s), want (%d, %s)", tt.r, score, bucket, tt.score, tt.bucket)
		}
	}
}

func TestSweepSkipsShortTables(t *testing.T) {
	histories := map[table.Name][]dice.Roll{
		"1-1":    linearHistory(12),
		"1-2":    linearHistory(3),
		"sim-2f": linearHistory(20),
	}
	results := Sweep(histories)
	if len(results) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(results))
	}
	if results[0].Table != "1-1" || results[1].Table != "sim-2f" {
		t.Fatalf("unexpected order: %s, %s", results[0].Table, results[1].Table)
	}
	if len(results[0].Pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(results[0].Pairs))
	}
	if results[0].Pairs[0].Bucket != BucketHigh {
		t.Fatalf("expected high bucket, got %s", results[0].Pairs[0].Bucket)
	}
}
