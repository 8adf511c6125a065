package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sup9097/table-dice-app/internal/accuracy"
	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/forecast"
	"github.com/sup9097/table-dice-app/internal/learn"
	"github.com/sup9097/table-dice-app/internal/table"
)

const sparkChars = " .:-=+*#%@"

var positionLabels = []string{"Die 1", "Die 2", "Die 3"}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// DefaultWindow is the moving-average window of the total trend line.
const DefaultWindow = 10

// RenderSummary prints row counts, the most common rolls and the total trend
// of one table.
func RenderSummary(w io.Writer, name table.Name, history []dice.Roll, top, window int) error {
	if _, err := fmt.Fprintf(w, "Table %s (%s)\n", name, name.Kind()); err != nil {
		return err
	}
	if len(history) == 0 {
		_, err := fmt.Fprintln(w, "No rolls recorded.")
		return err
	}
	sums := dice.Sums(history)
	values := make([]float64, len(sums))
	total := 0.0
	for i, s := range sums {
		values[i] = float64(s)
		total += float64(s)
	}
	counts := forecast.Counts(history)
	if _, err := fmt.Fprintf(w, "Rolls: %d  Distinct: %d  Avg total: %.2f\n", len(history), len(counts), total/float64(len(history))); err != nil {
		return err
	}
	if top > len(counts) {
		top = len(counts)
	}
	rows := make([][]string, 0, top)
	for _, c := range counts[:top] {
		rows = append(rows, []string{
			c.Roll.String(),
			fmt.Sprintf("%d", c.Roll.Sum()),
			fmt.Sprintf("%d", c.Count),
			fmt.Sprintf("%.1f%%", float64(c.Count)/float64(len(history))*100),
		})
	}
	if err := writeLines(w, formatTable([]string{"Roll", "Total", "Count", "Share"}, rows, map[int]bool{1: true, 2: true, 3: true})); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Total trend: %s\n\n", Sparkline(MovingAverage(values, window)))
	return err
}

// RenderCorrelation prints a correlation matrix.
func RenderCorrelation(w io.Writer, name table.Name, m Matrix) error {
	if _, err := fmt.Fprintf(w, "Position correlation (%s)\n", name); err != nil {
		return err
	}
	rows := make([][]string, 0, 3)
	for i := 0; i < 3; i++ {
		row := []string{positionLabels[i]}
		for j := 0; j < 3; j++ {
			row = append(row, formatR(m[i][j]))
		}
		rows = append(rows, row)
	}
	headers := append([]string{""}, positionLabels...)
	if err := writeLines(w, formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true})); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSweep prints bucketed pair scores for every analyzed table.
func RenderSweep(w io.Writer, results []TableCorrelation) error {
	if len(results) == 0 {
		_, err := fmt.Fprintf(w, "No table has %d or more rolls.\n", MinCorrelationRows)
		return err
	}
	rows := make([][]string, 0, len(results)*3)
	for _, res := range results {
		for _, p := range res.Pairs {
			score := "n/a"
			if p.Score >= 0 {
				score = fmt.Sprintf("%d/10", p.Score)
			}
			rows = append(rows, []string{
				string(res.Table),
				fmt.Sprintf("%d", res.Rows),
				fmt.Sprintf("%d-%d", p.I+1, p.J+1),
				formatR(p.R),
				score,
				string(p.Bucket),
			})
		}
	}
	headers := []string{"Table", "Rows", "Pair", "r", "Score", "Level"}
	if err := writeLines(w, formatTable(headers, rows, map[int]bool{1: true, 3: true, 4: true})); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderForecast prints the frequency forecast and, when given, the model
// prediction with its per-position distributions.
func RenderForecast(w io.Writer, freq []dice.Roll, pred *dice.Roll, dists [3]learn.Distribution) error {
	parts := make([]string, len(freq))
	for i, r := range freq {
		parts[i] = r.String()
	}
	if _, err := fmt.Fprintf(w, "Frequency forecast: %s\n", strings.Join(parts, ", ")); err != nil {
		return err
	}
	if pred == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Model forecast: %s (total %d)\n", pred.String(), pred.Sum()); err != nil {
		return err
	}
	rows := make([][]string, 0, 3)
	for p, dist := range dists {
		cells := make([]string, 0, len(dist.Classes))
		for i, c := range dist.Classes {
			cells = append(cells, fmt.Sprintf("%d:%.2f", c, dist.Probs[i]))
		}
		rows = append(rows, []string{positionLabels[p], strings.Join(cells, " ")})
	}
	return writeLines(w, formatTable([]string{"Position", "Probabilities"}, rows, nil))
}

// RenderEvaluation prints held-out accuracy per position.
func RenderEvaluation(w io.Writer, ev learn.Evaluation) error {
	_, err := fmt.Fprintf(w, "Held-out accuracy (%d train / %d test): 1=%.2f%%, 2=%.2f%%, 3=%.2f%%\n",
		ev.TrainRows, ev.TestRows, ev.Accuracy[0]*100, ev.Accuracy[1]*100, ev.Accuracy[2]*100)
	return err
}

// RenderComparison prints one prediction check.
func RenderComparison(w io.Writer, c accuracy.Comparison) error {
	verdict := "match"
	if !c.Match {
		verdict = fmt.Sprintf("miss by %d", c.Diff)
	}
	line := fmt.Sprintf("Predicted %s (total %d), observed %s (total %d): %s",
		c.Predicted, c.Predicted.Sum(), c.Actual, c.Actual.Sum(), verdict)
	if c.Tag != "" {
		line += " [" + c.Tag + "]"
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// RenderConfidence prints the jittered predictions of a confidence check.
func RenderConfidence(w io.Writer, attempts []learn.Attempt) error {
	for i, a := range attempts {
		line := fmt.Sprintf("Check %d: input %s -> %s (total %d, common face %d)",
			i+1, a.Input, a.Prediction, a.Prediction.Sum(), a.CommonFace)
		if a.Hot {
			line += fmt.Sprintf(", hot sum held in %d/%d repeats", a.Agreeing, learn.ConfidenceRepeats)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if a.Warning != "" {
			if _, err := fmt.Fprintf(w, "  warning: %s\n", a.Warning); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderAccuracy prints the cumulative match rate of a tracker summary.
func RenderAccuracy(w io.Writer, s accuracy.Summary) error {
	if s.Empty() {
		_, err := fmt.Fprintln(w, "Cumulative accuracy: no comparisons yet")
		return err
	}
	_, err := fmt.Fprintf(w, "Cumulative accuracy: %d / %d (%.2f%%) %s\n",
		s.Matches, s.Total, s.Percentage(), Sparkline(s.Running))
	return err
}

func formatR(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", r)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
