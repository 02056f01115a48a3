package simulation

import (
	"testing"

	"github.com/nvandessel/nback/internal/constants"
	"github.com/nvandessel/nback/internal/level"
)

// AssertLevelsInRange asserts that every block was played between the
// minimum and maximum level.
func AssertLevelsInRange(t *testing.T, result Result) {
	t.Helper()
	for _, b := range result.Blocks {
		if b.Verdict.Level < constants.MinLevel || b.Verdict.Level > constants.MaxLevel {
			t.Errorf("AssertLevelsInRange: block %d: level %d outside %d..%d", b.Index, b.Verdict.Level, constants.MinLevel, constants.MaxLevel)
		}
		if b.Verdict.NextLevel < constants.MinLevel || b.Verdict.NextLevel > constants.MaxLevel {
			t.Errorf("AssertLevelsInRange: block %d: next level %d outside %d..%d", b.Index, b.Verdict.NextLevel, constants.MinLevel, constants.MaxLevel)
		}
	}
}

// AssertStepwise asserts that the level never moves by more than one
// between consecutive blocks and that each block starts at the level the
// previous one committed.
func AssertStepwise(t *testing.T, result Result) {
	t.Helper()
	for i, b := range result.Blocks {
		if d := b.Verdict.NextLevel - b.Verdict.Level; d < -1 || d > 1 {
			t.Errorf("AssertStepwise: block %d: level moved %d -> %d", b.Index, b.Verdict.Level, b.Verdict.NextLevel)
		}
		if i > 0 && b.Verdict.Level != result.Blocks[i-1].Verdict.NextLevel {
			t.Errorf("AssertStepwise: block %d: played at %d, previous committed %d", b.Index, b.Verdict.Level, result.Blocks[i-1].Verdict.NextLevel)
		}
	}
}

// AssertReachesLevel asserts that a block is played at target within the
// first withinBlocks blocks.
func AssertReachesLevel(t *testing.T, result Result, target, withinBlocks int) {
	t.Helper()
	for i, b := range result.Blocks {
		if i >= withinBlocks {
			break
		}
		if b.Verdict.Level == target {
			return
		}
	}
	t.Errorf("AssertReachesLevel: level %d not reached within %d blocks (levels %v)", target, withinBlocks, result.Levels())
}

// AssertSavedMatchesOutcome asserts that exactly the passed blocks were
// recorded as saved.
func AssertSavedMatchesOutcome(t *testing.T, result Result) {
	t.Helper()
	for _, b := range result.Blocks {
		if b.Verdict.Save != b.Verdict.Outcome.Success() {
			t.Errorf("AssertSavedMatchesOutcome: block %d: save=%v outcome=%s", b.Index, b.Verdict.Save, b.Verdict.Outcome)
		}
		if b.Run != nil && b.Run.Saved != b.Verdict.Save {
			t.Errorf("AssertSavedMatchesOutcome: block %d: recorded saved=%v, verdict save=%v", b.Index, b.Run.Saved, b.Verdict.Save)
		}
	}
}

// AssertOutcomeFraction asserts that at least minFraction of the blocks
// ended with outcome.
func AssertOutcomeFraction(t *testing.T, result Result, outcome level.Outcome, minFraction float64) {
	t.Helper()
	if len(result.Blocks) == 0 {
		t.Errorf("AssertOutcomeFraction: no blocks")
		return
	}
	count := 0
	for _, b := range result.Blocks {
		if b.Verdict.Outcome == outcome {
			count++
		}
	}
	if got := float64(count) / float64(len(result.Blocks)); got < minFraction {
		t.Errorf("AssertOutcomeFraction: %s in %.2f of blocks, want >= %.2f", outcome, got, minFraction)
	}
}
