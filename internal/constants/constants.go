// Package constants provides named constants used throughout the nback codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Level bounds for the n-back span.
const (
	// MinLevel is the smallest span a block can be played at.
	MinLevel = 1

	// MaxLevel is the largest span; advancing at MaxLevel holds the level.
	MaxLevel = 10

	// DefaultLevel is the span a fresh configuration starts at.
	DefaultLevel = 2
)

// Stimulus alphabet constants.
const (
	// AlphabetSize is the number of distinct symbols per modality (1..AlphabetSize).
	AlphabetSize = 8

	// GridSize is the side length of the position grid. The center cell is never lit.
	GridSize = 3

	// CenterTile is the grid index of the center cell.
	CenterTile = 4
)

// Block and scoring constants.
const (
	// DefaultClues is the number of engineered matches per modality in a block.
	DefaultClues = 8

	// TolerancePercent is the share of clues a modality may get wrong and still
	// pass (80% correctness). The tolerated count is floor(clues * 20 / 100).
	TolerancePercent = 20

	// HoldMargin is how many wrong answers above tolerance still hold the level.
	HoldMargin = 2
)

// Timing constants, in milliseconds.
const (
	// DefaultStepTime is the default interval between two stimuli.
	DefaultStepTime = 2500

	// MinStepTime is the lower clamp for the step interval.
	MinStepTime = 2000

	// MaxStepTime is the upper clamp for the step interval.
	MaxStepTime = 3000
)

// History constants.
const (
	// DailyGoal is the number of runs per day that fills the progress bar.
	DailyGoal = 20

	// DateLayout formats calendar-day keys in the history (dd/mm/yyyy).
	DateLayout = "02/01/2006"
)

// Generation limits bound the construct-then-verify search.
const (
	// DefaultMaxAttempts is the number of whole blocks the generator may discard
	// before giving up.
	DefaultMaxAttempts = 10000

	// DrawsPerSlot bounds match-placement draws per attempt as a multiple of the
	// block length.
	DrawsPerSlot = 64
)

// Backup rotation controls how many backup files are retained.
const (
	// MaxBackupRotation is the default maximum number of backup files to keep.
	MaxBackupRotation = 10
)
