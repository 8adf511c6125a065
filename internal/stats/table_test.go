package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Roll", "Total", "Count"}
	rows := [][]string{
		{"(1, 2, 3)", "6", "12"},
		{"(4, 5, 6)", "15", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Roll      Total Count" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "(1, 2, 3)     6    12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "(4, 5, 6)    15     3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}
