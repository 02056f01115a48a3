package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/nvandessel/nback/internal/history"
)

func TestSimulateCmdPerfectClimbs(t *testing.T) {
	isolateHome(t)

	out, err := runCLI(t, "simulate", "--player", "perfect", "--blocks", "3", "--level", "1", "--seed", "3")
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if !strings.Contains(out, "Scenario perfect: 3 blocks, final n=4") {
		t.Errorf("output missing summary:\n%s", out)
	}
	if strings.Count(out, "advance") != 3 {
		t.Errorf("want 3 advancing blocks:\n%s", out)
	}
}

func TestSimulateCmdJSON(t *testing.T) {
	isolateHome(t)

	out, err := runCLI(t, "simulate", "--player", "silent", "--blocks", "2", "--level", "2", "--seed", "3", "--json")
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	var got struct {
		Blocks []json.RawMessage `json:"blocks"`
		Final  struct {
			Level int `json:"level"`
		} `json:"final"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(got.Blocks) != 2 {
		t.Errorf("blocks = %d, want 2", len(got.Blocks))
	}
	if got.Final.Level != 1 {
		t.Errorf("final level = %d, want 1", got.Final.Level)
	}
}

func TestSimulateCmdRejectsInput(t *testing.T) {
	isolateHome(t)

	if _, err := runCLI(t, "simulate", "--blocks", "0"); err == nil {
		t.Error("expected error for zero blocks")
	}
	if _, err := runCLI(t, "simulate", "--player", "psychic"); err == nil {
		t.Error("expected error for unknown player")
	}
}

func TestSimulateCmdRecord(t *testing.T) {
	isolateHome(t)
	dataDir := t.TempDir()

	if _, err := runCLI(t, "simulate", "--blocks", "2", "--level", "1", "--seed", "9", "--data-dir", dataDir); err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if got := countRuns(t, dataDir); got != 0 {
		t.Errorf("runs without --record = %d, want 0", got)
	}

	if _, err := runCLI(t, "simulate", "--blocks", "2", "--level", "1", "--seed", "9", "--record", "--data-dir", dataDir); err != nil {
		t.Fatalf("simulate --record failed: %v", err)
	}
	if got := countRuns(t, dataDir); got != 2 {
		t.Errorf("runs with --record = %d, want 2", got)
	}
}

func countRuns(t *testing.T, dataDir string) int {
	t.Helper()
	store, err := history.OpenSQLite(dataDir)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()
	runs, err := store.Runs(t.Context())
	if err != nil {
		t.Fatalf("read runs: %v", err)
	}
	return len(runs)
}

// recordPerfectRuns plays n perfect blocks from level 1 into dataDir.
func recordPerfectRuns(t *testing.T, dataDir string, n int) {
	t.Helper()
	_, err := runCLI(t, "simulate", "--record", "--blocks", fmt.Sprint(n), "--level", "1", "--seed", "5", "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("simulate --record failed: %v", err)
	}
}
