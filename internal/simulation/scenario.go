package simulation

import (
	"fmt"
	"strings"

	"github.com/nvandessel/nback/internal/history"
	"github.com/nvandessel/nback/internal/level"
	"github.com/nvandessel/nback/internal/session"
)

// Scenario defines a complete simulation experiment.
type Scenario struct {
	Name string

	// Settings for the first block. Later blocks use the settings
	// committed by the previous result.
	Settings session.Settings

	// Blocks is how many blocks to play.
	Blocks int

	Player Player

	// BeforeBlock, when non-nil, is called before each block starts with
	// the settings it will be played at.
	BeforeBlock func(blockIndex int, settings session.Settings)
}

// BlockResult captures the outcome of a single block.
type BlockResult struct {
	Index int `json:"index"`

	// Steps is the number of steps shown.
	Steps int `json:"steps"`

	// Confirmations counts every key press the player made.
	Confirmations int `json:"confirmations"`

	Verdict level.Verdict `json:"verdict"`

	// Run is the recorded history entry. Nil when the runner has no store.
	Run *history.Run `json:"run,omitempty"`
}

// Result captures all blocks and the settings the next block would use.
type Result struct {
	Scenario string           `json:"scenario"`
	Blocks   []BlockResult    `json:"blocks"`
	Final    session.Settings `json:"final"`
}

// Levels returns the level each block was played at.
func (r Result) Levels() []int {
	levels := make([]int, len(r.Blocks))
	for i, b := range r.Blocks {
		levels[i] = b.Verdict.Level
	}
	return levels
}

// Outcomes returns each block's outcome.
func (r Result) Outcomes() []level.Outcome {
	outcomes := make([]level.Outcome, len(r.Blocks))
	for i, b := range r.Blocks {
		outcomes[i] = b.Verdict.Outcome
	}
	return outcomes
}

// FormatBlock returns a one-line summary of a block.
func FormatBlock(b BlockResult) string {
	c := b.Verdict.Counters
	return fmt.Sprintf("block %d: n=%d %s pos=%d/%d/%d sound=%d/%d/%d -> n=%d",
		b.Index+1, b.Verdict.Level, b.Verdict.Outcome,
		c.PosHits, c.PosMisses, c.PosErrors,
		c.SoundHits, c.SoundMisses, c.SoundErrors,
		b.Verdict.NextLevel)
}

// FormatResult returns one summary line per block.
func FormatResult(r Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scenario %s: %d blocks, final n=%d\n", r.Scenario, len(r.Blocks), r.Final.Level)
	for _, b := range r.Blocks {
		sb.WriteString("  ")
		sb.WriteString(FormatBlock(b))
		sb.WriteByte('\n')
	}
	return sb.String()
}
