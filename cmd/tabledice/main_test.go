package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func TestAddPersistsAcrossRuns(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "add", "123", "456")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Added 2 rolls to 2f (2 total).") {
		t.Fatalf("unexpected add output %q", out)
	}
	out, err = runCLI(t, "tables")
	if err != nil {
		t.Fatalf("tables: %v", err)
	}
	if !strings.Contains(out, "* 2f") || !strings.Contains(out, "simulation") {
		t.Fatalf("unexpected tables output:\n%s", out)
	}
	out, err = runCLI(t, "--table", "to", "stats", "--width", "40")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "Table to (aggregate)") {
		t.Fatalf("unexpected stats output:\n%s", out)
	}
}

func TestAddRejectsMalformedDigits(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "add", "12x"); err == nil {
		t.Fatalf("expected error for malformed digits")
	}
	if _, err := runCLI(t, "--table", "9z", "tables"); err == nil {
		t.Fatalf("expected error for unknown table")
	}
}

func TestSQLiteBackendShardsAndReset(t *testing.T) {
	dir := isolate(t)
	dataDir := filepath.Join(dir, "db")
	if _, err := runCLI(t, "--backend", "sqlite", "--data-dir", dataDir, "-t", "1-4", "add", "111222333"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err := runCLI(t, "--backend", "sqlite", "--data-dir", dataDir, "shards")
	if err != nil {
		t.Fatalf("shards: %v", err)
	}
	if !strings.Contains(out, "1-4") {
		t.Fatalf("expected 1-4 shard:\n%s", out)
	}
	out, err = runCLI(t, "--backend", "sqlite", "--data-dir", dataDir, "-t", "1-4", "reset")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !strings.Contains(out, "Cleared 1-4 and deleted 1 shards.") {
		t.Fatalf("unexpected reset output %q", out)
	}
}

func TestPredictAndExport(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "add", strings.Repeat("246", 6)); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err := runCLI(t, "--estimators", "10", "predict")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !strings.Contains(out, "Model forecast: (2, 4, 6)") {
		t.Fatalf("unexpected predict output:\n%s", out)
	}
	out, err = runCLI(t, "export", "--format", "yaml")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "table: 2f") {
		t.Fatalf("unexpected export output:\n%s", out)
	}
}

func TestObserveScoresAcrossRuns(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "add", strings.Repeat("123", 8)); err != nil {
		t.Fatalf("add: %v", err)
	}
	for i := 0; i < 2; i++ {
		out, err := runCLI(t, "--estimators", "10", "observe", "123")
		if err != nil {
			t.Fatalf("observe %d: %v", i, err)
		}
		if !strings.Contains(out, "Predicted (1, 2, 3) (total 6), observed (1, 2, 3) (total 6): match") {
			t.Fatalf("observe %d: missing comparison:\n%s", i, out)
		}
	}
}

func TestUndoLastRollAcrossRuns(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "-t", "1-4", "add", "123"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err := runCLI(t, "-t", "1-4", "undo")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !strings.Contains(out, "Removed (1, 2, 3) from 1-4.") {
		t.Fatalf("unexpected undo output %q", out)
	}
	out, err = runCLI(t, "shards")
	if err != nil {
		t.Fatalf("shards: %v", err)
	}
	if strings.Contains(out, "1-4") {
		t.Fatalf("expected no 1-4 shard after undo:\n%s", out)
	}
}
