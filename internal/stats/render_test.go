package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sup9097/table-dice-app/internal/accuracy"
	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/learn"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 1, 1}); got != "+++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	got := Sparkline([]float64{0, 5, 10})
	if got[0] != ' ' || got[2] != '@' {
		t.Fatalf("unexpected sparkline %q", got)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	history := []dice.Roll{{1, 2, 3}, {1, 2, 3}, {4, 5, 6}}
	if err := RenderSummary(&buf, "2f", history, 2, 2); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Table 2f (base)", "Rolls: 3", "Distinct: 2", "Avg total: 9.00", "(1, 2, 3)", "66.7%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHistogram(t *testing.T) {
	var buf bytes.Buffer
	history := []dice.Roll{{1, 1, 1}, {1, 1, 1}, {6, 6, 6}}
	if err := RenderHistogram(&buf, history, 32); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1+16 {
		t.Fatalf("expected 17 lines, got %d", len(lines))
	}
	if !strings.HasSuffix(lines[1], strings.Repeat("#", 20)) {
		t.Fatalf("expected full bar for total 3, got %q", lines[1])
	}
	if !strings.HasSuffix(lines[16], strings.Repeat("#", 10)) {
		t.Fatalf("expected half bar for total 18, got %q", lines[16])
	}
}

func TestRenderForecastAndComparison(t *testing.T) {
	var buf bytes.Buffer
	pred := dice.Roll{2, 3, 4}
	dists := [3]learn.Distribution{
		{Classes: []int{1, 2}, Probs: []float64{0.25, 0.75}},
		{Classes: []int{3}, Probs: []float64{1}},
		{Classes: []int{4}, Probs: []float64{1}},
	}
	if err := RenderForecast(&buf, []dice.Roll{{1, 2, 3}}, &pred, dists); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := RenderComparison(&buf, accuracy.Compare(pred, dice.Roll{6, 6, 6})); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Frequency forecast: (1, 2, 3)", "Model forecast: (2, 3, 4) (total 9)", "2:0.75", "miss by 9", accuracy.LargeDeviationTag} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderConfidence(t *testing.T) {
	var buf bytes.Buffer
	attempts := []learn.Attempt{
		{Input: dice.Roll{1, 2, 3}, Prediction: dice.Roll{1, 2, 3}, CommonFace: 1, Hot: true, Agreeing: 80, Warning: "sum 6 predicted in 80% of repeats"},
		{Input: dice.Roll{2, 2, 3}, Prediction: dice.Roll{3, 3, 4}, CommonFace: 3},
	}
	if err := RenderConfidence(&buf, attempts); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Check 1: input (1, 2, 3) -> (1, 2, 3)", "hot sum held in 80/100", "warning: sum 6", "Check 2: input (2, 2, 3) -> (3, 3, 4) (total 10, common face 3)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderAccuracy(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderAccuracy(&buf, accuracy.Summary{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "no comparisons yet") {
		t.Fatalf("expected empty notice, got %q", buf.String())
	}

	buf.Reset()
	tr := accuracy.NewTracker()
	tr.Record(accuracy.Compare(dice.Roll{1, 2, 3}, dice.Roll{3, 2, 1}))
	tr.Record(accuracy.Compare(dice.Roll{1, 2, 3}, dice.Roll{6, 6, 6}))
	if err := RenderAccuracy(&buf, tr.Summary()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "1 / 2 (50.00%)") {
		t.Fatalf("unexpected accuracy line %q", buf.String())
	}
}
