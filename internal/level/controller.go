// Package level decides the next n-back span from a finished block's tallies.
package level

import (
	"fmt"

	"github.com/nvandessel/nback/internal/constants"
	"github.com/nvandessel/nback/internal/scoring"
)

// Outcome classifies a finished block.
type Outcome int

const (
	// Advance: both modalities within tolerance. Saved; span goes up.
	Advance Outcome = iota + 1
	// Hold: at least one modality within the hold margin. Saved; span unchanged.
	Hold
	// Retreat: failed above the minimum level. Not saved; span goes down.
	Retreat
	// Reset: failed at the minimum level. Not saved; span stays at the minimum.
	Reset
)

var outcomeNames = map[Outcome]string{
	Advance: "advance",
	Hold:    "hold",
	Retreat: "retreat",
	Reset:   "reset",
}

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Success reports whether the run counts as passed for history purposes.
func (o Outcome) Success() bool {
	return o == Advance || o == Hold
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	name, ok := outcomeNames[o]
	if !ok {
		return nil, fmt.Errorf("level: invalid outcome %d", int(o))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOutcome maps an outcome name back to its value.
func ParseOutcome(s string) (Outcome, error) {
	for o, name := range outcomeNames {
		if name == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("level: unknown outcome %q", s)
}

// Verdict is the result of finalizing a block.
type Verdict struct {
	// Counters holds the final tallies with misses derived from the clue target.
	Counters scoring.Counters `json:"counters"`

	Outcome   Outcome `json:"outcome"`
	Level     int     `json:"level"`
	NextLevel int     `json:"next_level"`

	// Save is true when the run's level belongs in the day's history.
	Save bool `json:"save"`
	// SavedLevel is the level recorded when Save is true, zero otherwise.
	SavedLevel int `json:"saved_level,omitempty"`

	Tolerated      int    `json:"tolerated"`
	WrongPositions int    `json:"wrong_positions"`
	WrongSounds    int    `json:"wrong_sounds"`
	Message        string `json:"message"`
}

// Tolerance returns how many wrong answers per modality still pass a block
// with the given number of clues.
func Tolerance(clues int) int {
	if clues <= 0 {
		return 0
	}
	return clues * constants.TolerancePercent / 100
}

// Finalize classifies a finished block played at currentLevel.
//
// Tracked misses are replaced by clues minus hits, which is exact by
// construction of the block. The outcome is decided in priority order:
// Advance, Hold, Retreat, Reset.
func Finalize(counters scoring.Counters, clues, currentLevel int) Verdict {
	c := counters
	c.PosMisses = clues - c.PosHits
	c.SoundMisses = clues - c.SoundHits

	wrongPositions := c.PosMisses + c.PosErrors
	wrongSounds := c.SoundMisses + c.SoundErrors
	tolerated := Tolerance(clues)

	v := Verdict{
		Counters:       c,
		Level:          currentLevel,
		Tolerated:      tolerated,
		WrongPositions: wrongPositions,
		WrongSounds:    wrongSounds,
	}

	switch {
	case wrongPositions <= tolerated && wrongSounds <= tolerated:
		v.Outcome = Advance
		v.Save = true
		v.SavedLevel = currentLevel
		if currentLevel < constants.MaxLevel {
			v.NextLevel = currentLevel + 1
			v.Message = fmt.Sprintf("N is now: %d", v.NextLevel)
		} else {
			v.NextLevel = constants.MaxLevel
			v.Message = fmt.Sprintf("N stays: %d (max level reached)", currentLevel)
		}
	case wrongPositions <= tolerated+constants.HoldMargin || wrongSounds <= tolerated+constants.HoldMargin:
		v.Outcome = Hold
		v.Save = true
		v.SavedLevel = currentLevel
		v.NextLevel = currentLevel
		v.Message = fmt.Sprintf("N stays: %d. Keep trying!", currentLevel)
	case currentLevel != constants.MinLevel:
		v.Outcome = Retreat
		v.NextLevel = max(constants.MinLevel, currentLevel-1)
		v.Message = fmt.Sprintf("N is now: %d. Level not saved.", v.NextLevel)
	default:
		v.Outcome = Reset
		v.NextLevel = constants.MinLevel
		v.Message = fmt.Sprintf("N stays: %d. Level not saved. Keep trying.", constants.MinLevel)
	}

	return v
}
