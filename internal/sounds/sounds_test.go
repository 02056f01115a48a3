package sounds

import (
	"testing"

	"github.com/nvandessel/nback/internal/constants"
	"github.com/nvandessel/nback/internal/stimulus"
)

func TestEverySetHasFullAlphabet(t *testing.T) {
	for _, name := range Names() {
		names, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		if len(names) != constants.AlphabetSize {
			t.Errorf("set %q has %d names, want %d", name, len(names), constants.AlphabetSize)
		}
	}
	if len(Names()) != 12 {
		t.Errorf("expected 12 sound sets, got %d", len(Names()))
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		set     string
		sym     int
		want    string
		wantErr bool
	}{
		{"Shapes English", 3, "circle", false},
		{"Letters Italian", 8, "x", false},
		{"Numbers German", 1, "1", false},
		{"Numbers German", 0, "", true},
		{"Klingon", 1, "", true},
	}
	for _, tt := range tests {
		got, err := Name(tt.set, stimulus.Symbol(tt.sym))
		if (err != nil) != tt.wantErr {
			t.Errorf("Name(%q, %d) error = %v, wantErr %v", tt.set, tt.sym, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Name(%q, %d) = %q, want %q", tt.set, tt.sym, got, tt.want)
		}
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	names, _ := Lookup(DefaultSet)
	names[0] = "mutated"

	again, _ := Lookup(DefaultSet)
	if again[0] != "1" {
		t.Error("Lookup exposed the shared table")
	}
}

func TestAssetPaths(t *testing.T) {
	paths, err := AssetPaths("Shapes Italian")
	if err != nil {
		t.Fatalf("AssetPaths: %v", err)
	}
	if paths[0] != "legacy/snd/Shapes Italian/punto.mp3" {
		t.Errorf("paths[0] = %q", paths[0])
	}
	if _, err := AssetPaths("nope"); err == nil {
		t.Error("expected error for unknown set")
	}
}

func TestKnown(t *testing.T) {
	if !Known(DefaultSet) {
		t.Error("default set should be known")
	}
	if Known("") {
		t.Error("empty set name should be unknown")
	}
}
