// Package stimulus defines the dual-stream cue model shared by the generator,
// the scorer and the presentation layer: symbols, modalities, pairs and blocks.
package stimulus

import (
	"fmt"

	"github.com/nvandessel/nback/internal/constants"
)

// Symbol is one cue of a single modality. Valid symbols are 1..constants.AlphabetSize.
// Unset is used only while a block is being built.
type Symbol int

// Unset marks a slot the generator has not filled yet.
const Unset Symbol = 0

// Valid reports whether s is a presentable symbol.
func (s Symbol) Valid() bool {
	return s >= 1 && s <= constants.AlphabetSize
}

// Modality identifies one of the two stimulus streams.
type Modality int

const (
	// Position is the spatial stream (a lit grid tile).
	Position Modality = iota
	// Sound is the auditory stream (a spoken name from the sound set).
	Sound
)

// Modalities lists every modality in block order.
var Modalities = [...]Modality{Position, Sound}

// String returns the lowercase modality name.
func (m Modality) String() string {
	switch m {
	case Position:
		return "position"
	case Sound:
		return "sound"
	default:
		return fmt.Sprintf("modality(%d)", int(m))
	}
}

// Valid returns true if the modality is a recognized value.
func (m Modality) Valid() bool {
	return m == Position || m == Sound
}

// Pair holds the cues presented together at one step, indexed by Modality.
type Pair [2]Symbol

// Position returns the spatial symbol of the pair.
func (p Pair) Position() Symbol { return p[Position] }

// Sound returns the auditory symbol of the pair.
func (p Pair) Sound() Symbol { return p[Sound] }

// Block is the ordered sequence of pairs shown during one run.
type Block []Pair

// Len returns the number of steps in the block.
func (b Block) Len() int { return len(b) }

// At returns the pair at index i and whether i is inside the block.
// Negative or past-the-end indices report false instead of panicking.
func (b Block) At(i int) (Pair, bool) {
	if i < 0 || i >= len(b) {
		return Pair{}, false
	}
	return b[i], true
}

// MatchesAt reports whether step i repeats step i-n for modality m.
// Out-of-range comparisons are never matches.
func (b Block) MatchesAt(i, n int, m Modality) bool {
	cur, ok := b.At(i)
	if !ok {
		return false
	}
	prev, ok := b.At(i - n)
	if !ok {
		return false
	}
	return cur[m] == prev[m]
}

// CountMatches counts the indices i >= n whose symbol for m equals the one at i-n.
func CountMatches(b Block, n int, m Modality) int {
	if n < 1 {
		return 0
	}
	count := 0
	for i := n; i < len(b); i++ {
		if b[i][m] == b[i-n][m] {
			count++
		}
	}
	return count
}

// Complete reports whether every slot of the block holds a valid symbol.
func (b Block) Complete() bool {
	for _, p := range b {
		if !p[Position].Valid() || !p[Sound].Valid() {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no storage with b.
func (b Block) Clone() Block {
	if b == nil {
		return nil
	}
	out := make(Block, len(b))
	copy(out, b)
	return out
}

// BlockLength is the number of steps in a block played at span n with the given clues.
func BlockLength(n, clues int) int {
	return clues * (n + 1)
}
