package forest

import (
	"errors"
	"math"
	"testing"
)

func TestFitLearnsSeparableRule(t *testing.T) {
	var X [][]int
	var y []int
	for a := 0; a < 10; a++ {
		for b := 0; b < 10; b++ {
			X = append(X, []int{a, b})
			if a < 5 {
				y = append(y, 1)
			} else {
				y = append(y, 2)
			}
		}
	}
	c, err := Fit(X, y, Options{Trees: 15, Seed: 1})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if got := c.Predict([]int{1, 9}); got != 1 {
		t.Fatalf("expected class 1, got %d", got)
	}
	if got := c.Predict([]int{8, 0}); got != 2 {
		t.Fatalf("expected class 2, got %d", got)
	}
}

func TestPredictProbaSumsToOne(t *testing.T) {
	X := [][]int{{1, 2, 3}, {2, 2, 4}, {1, 5, 6}, {3, 3, 3}, {4, 5, 6}, {1, 1, 2}}
	y := []int{2, 5, 3, 3, 1, 6}
	c, err := Fit(X, y, Options{Trees: 20, Seed: DefaultSeed})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	proba := c.PredictProba([]int{2, 3, 4})
	if len(proba) != len(c.Classes()) {
		t.Fatalf("expected %d probabilities, got %d", len(c.Classes()), len(proba))
	}
	sum := 0.0
	for _, p := range proba {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("probabilities sum to %f", sum)
	}
}

func TestFitIsDeterministic(t *testing.T) {
	X := [][]int{{1, 2, 3}, {2, 2, 4}, {1, 5, 6}, {3, 3, 3}, {4, 5, 6}, {1, 1, 2}, {2, 3, 5}}
	y := []int{2, 5, 3, 3, 1, 6, 2}
	a, _ := Fit(X, y, Options{Trees: 10, Seed: 3})
	b, _ := Fit(X, y, Options{Trees: 10, Seed: 3})
	for _, x := range X {
		pa, pb := a.PredictProba(x), b.PredictProba(x)
		for i := range pa {
			if pa[i] != pb[i] {
				t.Fatalf("forests with the same seed disagree on %v", x)
			}
		}
	}
}

func TestFitErrors(t *testing.T) {
	if _, err := Fit(nil, nil, Options{}); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
	if _, err := Fit([][]int{{1}}, []int{1, 2}, Options{}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestMultiOutput(t *testing.T) {
	X := [][]int{{1, 2, 3}, {2, 3, 4}, {3, 4, 5}, {4, 5, 6}, {1, 2, 3}}
	Y := [][]int{{2, 3, 4}, {3, 4, 5}, {4, 5, 6}, {1, 2, 3}, {2, 3, 4}}
	m, err := FitMulti(X, Y, Options{Trees: 25, Seed: DefaultSeed})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if m.Outputs() != 3 {
		t.Fatalf("expected 3 outputs, got %d", m.Outputs())
	}
	pred := m.Predict([]int{1, 2, 3})
	if len(pred) != 3 {
		t.Fatalf("expected 3 predictions, got %v", pred)
	}
	for col, proba := range m.PredictProba([]int{1, 2, 3}) {
		if len(proba) != len(m.Estimator(col).Classes()) {
			t.Fatalf("column %d: proba/classes length mismatch", col)
		}
	}
}
