package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerateCmdJSON(t *testing.T) {
	isolateHome(t)

	out, err := runCLI(t, "generate", "--level", "3", "--clues", "6", "--seed", "42", "--json")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	var got struct {
		Level  int             `json:"level"`
		Clues  int             `json:"clues"`
		Length int             `json:"length"`
		Steps  []generatedStep `json:"steps"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}

	if got.Level != 3 || got.Clues != 6 {
		t.Errorf("level/clues = %d/%d, want 3/6", got.Level, got.Clues)
	}
	if got.Length != 6*(3+1) || len(got.Steps) != got.Length {
		t.Errorf("length = %d with %d steps, want %d", got.Length, len(got.Steps), 6*(3+1))
	}

	var pos, snd int
	for i, s := range got.Steps {
		if s.Index != i {
			t.Errorf("step %d has index %d", i, s.Index)
		}
		if s.Tile == 4 {
			t.Errorf("step %d uses the center tile", i)
		}
		if i < 3 && (s.PositionMatch || s.SoundMatch) {
			t.Errorf("step %d before the lag marked as a match", i)
		}
		if s.PositionMatch {
			pos++
		}
		if s.SoundMatch {
			snd++
		}
	}
	if pos != 6 || snd != 6 {
		t.Errorf("matches = %d position, %d sound, want 6 each", pos, snd)
	}
}

func TestGenerateCmdSeedIsReproducible(t *testing.T) {
	isolateHome(t)

	first, err := runCLI(t, "generate", "--seed", "7")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	second, err := runCLI(t, "generate", "--seed", "7")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if first != second {
		t.Errorf("same seed produced different blocks:\n%s\n%s", first, second)
	}
	if !strings.Contains(first, "Position matches: 8, sound matches: 8") {
		t.Errorf("output missing match summary:\n%s", first)
	}
}

func TestGenerateCmdRejectsLevel(t *testing.T) {
	isolateHome(t)

	_, err := runCLI(t, "generate", "--level", "11")
	if err == nil || !strings.Contains(err.Error(), "level must be between 1 and 10") {
		t.Errorf("err = %v, want level range error", err)
	}
}
