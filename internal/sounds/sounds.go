// Package sounds holds the table of spoken sound sets. Each set names the
// eight auditory symbols; symbol k plays the k-th name of the selected set.
package sounds

import (
	"fmt"
	"path"
	"sort"

	"github.com/nvandessel/nback/internal/constants"
	"github.com/nvandessel/nback/internal/stimulus"
)

// DefaultSet is the set used when none is configured.
const DefaultSet = "Numbers English (USA)"

// AssetBase is the directory sound files are resolved under.
const AssetBase = "legacy/snd"

var numbers = []string{"1", "2", "3", "4", "5", "6", "7", "8"}
var letters = []string{"c", "h", "k", "l", "q", "r", "s", "t"}

var sets = map[string][]string{
	"Numbers English (USA)": numbers,
	"Numbers English (UK)":  numbers,
	"Numbers German":        numbers,
	"Numbers Russian":       numbers,
	"Numbers Italian":       numbers,
	"Letters English (USA)": letters,
	"Letters English (UK)":  letters,
	"Letters German":        letters,
	"Letters Russian":       letters,
	"Letters Italian":       {"c", "h", "k", "l", "q", "r", "s", "x"},
	"Shapes English":        {"point", "line", "circle", "triangle", "square", "rectangle", "pentagon", "hexagon"},
	"Shapes Italian":        {"punto", "linea", "cerchio", "triangolo", "quadrato", "rettangolo", "pentagono", "esagono"},
}

// Names returns every known set name, sorted.
func Names() []string {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether set is in the table.
func Known(set string) bool {
	_, ok := sets[set]
	return ok
}

// Lookup returns a copy of the eight names of set.
func Lookup(set string) ([]string, error) {
	names, ok := sets[set]
	if !ok {
		return nil, fmt.Errorf("unknown sound set %q", set)
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, nil
}

// Name returns the name played for symbol s in set.
func Name(set string, s stimulus.Symbol) (string, error) {
	names, ok := sets[set]
	if !ok {
		return "", fmt.Errorf("unknown sound set %q", set)
	}
	if !s.Valid() || int(s) > len(names) {
		return "", fmt.Errorf("symbol %d out of range 1..%d", s, constants.AlphabetSize)
	}
	return names[s-1], nil
}

// AssetPaths returns the audio file for each symbol of set, in symbol order.
func AssetPaths(set string) ([]string, error) {
	names, err := Lookup(set)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = path.Join(AssetBase, set, name+".mp3")
	}
	return paths, nil
}
