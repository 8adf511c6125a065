package console

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sup9097/table-dice-app/internal/config"
	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/history"
	"github.com/sup9097/table-dice-app/internal/learn"
	"github.com/sup9097/table-dice-app/internal/predictor"
	"github.com/sup9097/table-dice-app/internal/store"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	area, err := store.OpenFiles(t.TempDir())
	if err != nil {
		t.Fatalf("open area: %v", err)
	}
	p, err := predictor.Open(context.Background(), history.New(area, nil), predictor.Options{
		Learn:     learn.Options{Estimators: 10, Seed: 42},
		Generator: dice.NewSeededGenerator(3),
	})
	if err != nil {
		t.Fatalf("open predictor: %v", err)
	}
	return NewModel(p, config.Defaults())
}

func run(t *testing.T, m *Model, line string) string {
	t.Helper()
	out, quit, err := m.execute(context.Background(), line)
	if err != nil {
		t.Fatalf("%q: unexpected error: %v", line, err)
	}
	if quit {
		t.Fatalf("%q: unexpected quit", line)
	}
	return out
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func TestRenderHeaderFormats(t *testing.T) {
	m := newTestModel(t)
	out := m.renderHeader()
	if !containsAll(out, []string{"Table 2f (base)", "0 rolls", "model untrained", "accuracy n/a"}) {
		t.Fatalf("header missing expected segments: %s", out)
	}
	run(t, m, "i "+strings.Repeat("123", 6))
	run(t, m, "i 123")
	out = m.renderHeader()
	if !containsAll(out, []string{"7 rolls", "model trained", "accuracy 1/1 (100.0%)"}) {
		t.Fatalf("header missing expected segments: %s", out)
	}
}

func TestSelectTableCommand(t *testing.T) {
	m := newTestModel(t)
	if out := run(t, m, "t"); !strings.Contains(out, "sim-1-4") {
		t.Fatalf("expected table list, got %q", out)
	}
	if out := run(t, m, "T 1-2"); out != "Selected 1-2 (0 rolls)." {
		t.Fatalf("unexpected output %q", out)
	}
	if _, _, err := m.execute(context.Background(), "t 9x"); err == nil {
		t.Fatalf("expected error for unknown table")
	}
	if got := m.p.Current(); got != "1-2" {
		t.Fatalf("expected selection to stay on 1-2, got %s", got)
	}
}

func TestObserveCommandBeforeTraining(t *testing.T) {
	m := newTestModel(t)
	out := run(t, m, "i 123 456")
	if !containsAll(out, []string{"Added 2 rolls to 2f.", "Frequency forecast:", "Model not trained"}) {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if _, _, err := m.execute(context.Background(), "i 12"); err == nil {
		t.Fatalf("expected malformed input error")
	}
}

func TestUndoResetAndCopy(t *testing.T) {
	m := newTestModel(t)
	run(t, m, "i 123456")
	if out := run(t, m, "u"); out != "Removed (4, 5, 6)." {
		t.Fatalf("unexpected undo output %q", out)
	}
	if out := run(t, m, "c"); out != "Copied 2f into sim-2f (1 rolls)." {
		t.Fatalf("unexpected copy output %q", out)
	}
	if out := run(t, m, "r"); out != "Cleared 2f." {
		t.Fatalf("unexpected reset output %q", out)
	}
	if _, _, err := m.execute(context.Background(), "u"); err == nil {
		t.Fatalf("expected error undoing an empty table")
	}
}

func TestSimulateAndAnalyze(t *testing.T) {
	m := newTestModel(t)
	run(t, m, "t sim-2f")
	if out := run(t, m, "s 30"); out != "Added 30 simulated rolls to sim-2f." {
		t.Fatalf("unexpected simulate output %q", out)
	}
	out := run(t, m, "a")
	if !containsAll(out, []string{"Position correlation (sim-2f)", "Held-out accuracy", "sim-2f", "Cumulative accuracy"}) {
		t.Fatalf("unexpected analyze output:\n%s", out)
	}
	if _, _, err := m.execute(context.Background(), "s many"); err == nil {
		t.Fatalf("expected error for bad count")
	}
}

func TestTrainCommand(t *testing.T) {
	m := newTestModel(t)
	if _, _, err := m.execute(context.Background(), "m"); err == nil {
		t.Fatalf("expected insufficient data error")
	}
	run(t, m, "i "+strings.Repeat("345", 5))
	out := run(t, m, "m")
	if !containsAll(out, []string{"Trained 2f on 5 rolls.", "Model forecast: (3, 4, 5)"}) {
		t.Fatalf("unexpected train output:\n%s", out)
	}
}

func TestUnknownAndQuit(t *testing.T) {
	m := newTestModel(t)
	if _, _, err := m.execute(context.Background(), "x"); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if _, quit, _ := m.execute(context.Background(), "q"); !quit {
		t.Fatalf("expected quit")
	}
}

func TestUpdateRunsEnteredCommand(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.input.SetValue("i 123")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("expected no command after input")
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input to be cleared")
	}
	if got := len(m.p.History("2f")); got != 1 {
		t.Fatalf("expected 1 roll, got %d", got)
	}
	if !strings.Contains(m.output.View(), "Added 1 rolls to 2f.") {
		t.Fatalf("expected output in viewport:\n%s", m.output.View())
	}

	m.input.SetValue("q")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestWrapLine(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  []string
	}{
		{"short", 10, []string{"short"}},
		{"one two three", 7, []string{"one two", "three"}},
		{"abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"any", 0, []string{"any"}},
	}
	for _, tt := range tests {
		got := wrapLine(tt.in, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Fatalf("wrapLine(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
