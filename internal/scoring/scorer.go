// Package scoring classifies user confirmations during block playback.
//
// A Scorer walks a block one step at a time. Each confirmation is compared
// against the cue n steps earlier and counted as a hit or an error (false
// alarm); matches that pass without a confirmation are counted as misses when
// the step ends. A per-modality latch keeps repeated presses within a step
// from scoring twice.
package scoring

import (
	"fmt"

	"github.com/nvandessel/nback/internal/stimulus"
)

// Counters accumulates the six per-block tallies.
type Counters struct {
	PosHits     int `json:"pos_hits"`
	PosMisses   int `json:"pos_misses"`
	PosErrors   int `json:"pos_errors"`
	SoundHits   int `json:"sound_hits"`
	SoundMisses int `json:"sound_misses"`
	SoundErrors int `json:"sound_errors"`
}

// Hits returns the hit count for m.
func (c Counters) Hits(m stimulus.Modality) int {
	if m == stimulus.Sound {
		return c.SoundHits
	}
	return c.PosHits
}

// Misses returns the miss count for m.
func (c Counters) Misses(m stimulus.Modality) int {
	if m == stimulus.Sound {
		return c.SoundMisses
	}
	return c.PosMisses
}

// Errors returns the false-alarm count for m.
func (c Counters) Errors(m stimulus.Modality) int {
	if m == stimulus.Sound {
		return c.SoundErrors
	}
	return c.PosErrors
}

func (c *Counters) addHit(m stimulus.Modality) {
	if m == stimulus.Sound {
		c.SoundHits++
		return
	}
	c.PosHits++
}

func (c *Counters) addMiss(m stimulus.Modality) {
	if m == stimulus.Sound {
		c.SoundMisses++
		return
	}
	c.PosMisses++
}

func (c *Counters) addError(m stimulus.Modality) {
	if m == stimulus.Sound {
		c.SoundErrors++
		return
	}
	c.PosErrors++
}

// Outcome is the verdict on a single confirmation.
type Outcome int

const (
	// Correct means the confirmed cue did repeat.
	Correct Outcome = iota + 1
	// Incorrect means the confirmed cue did not repeat.
	Incorrect
)

// String returns "correct" or "incorrect".
func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Feedback is a transient event for the presentation layer. It carries no
// state beyond the confirmation that produced it.
type Feedback struct {
	Modality stimulus.Modality `json:"modality"`
	Outcome  Outcome           `json:"outcome"`
	Step     int               `json:"step"`
}

// Scorer is the playback state machine for one block. It is not safe for
// concurrent use; callers serialize Advance and Confirm.
type Scorer struct {
	block    stimulus.Block
	n        int
	index    int
	latch    [2]bool
	counters Counters
	running  bool
}

// NewScorer returns an idle scorer.
func NewScorer() *Scorer {
	return &Scorer{index: -1}
}

// Start resets all state and begins scoring block at span n.
// The first Advance exposes step 0.
func (s *Scorer) Start(block stimulus.Block, n int) {
	s.block = block
	s.n = n
	s.index = -1
	s.latch = [2]bool{}
	s.counters = Counters{}
	s.running = true
}

// Running reports whether a block is in progress.
func (s *Scorer) Running() bool {
	return s.running
}

// Index returns the current step, or -1 before the first Advance.
func (s *Scorer) Index() int {
	return s.index
}

// Span returns the n the block is scored at.
func (s *Scorer) Span() int {
	return s.n
}

// Counters returns a snapshot of the tallies.
func (s *Scorer) Counters() Counters {
	return s.counters
}

// Pair returns the pair at step i of the running block.
func (s *Scorer) Pair(i int) (stimulus.Pair, bool) {
	return s.block.At(i)
}

// Confirmed reports whether m was already confirmed during the current step.
func (s *Scorer) Confirmed(m stimulus.Modality) bool {
	return s.latch[m]
}

// Advance moves to the next step. Before the new step is exposed, matches in
// the step that just ended which were never confirmed are counted as misses,
// then both latches are cleared. It returns false once the block is exhausted
// or when no block is running.
func (s *Scorer) Advance() (int, bool) {
	if !s.running {
		return s.index, false
	}
	s.index++
	if s.index >= len(s.block) {
		return s.index, false
	}

	// Lag comparisons for step index-1 need index-1-n >= 0.
	if s.index > s.n {
		ended := s.index - 1
		for _, m := range stimulus.Modalities {
			if s.block.MatchesAt(ended, s.n, m) && !s.latch[m] {
				s.counters.addMiss(m)
			}
		}
	}

	s.latch = [2]bool{}
	return s.index, true
}

// Confirm records that the user reported a match for m during step.
// It is a no-op when no block is running, when step is not the current step,
// or when m was already confirmed this step. Confirmations before step n
// raise the latch but score nothing.
func (s *Scorer) Confirm(m stimulus.Modality, step int) (Feedback, bool) {
	if !s.running || !m.Valid() || step != s.index || s.index < 0 {
		return Feedback{}, false
	}
	if s.latch[m] {
		return Feedback{}, false
	}
	s.latch[m] = true

	cur, ok := s.block.At(s.index)
	if !ok {
		return Feedback{}, false
	}
	prev, ok := s.block.At(s.index - s.n)
	if !ok {
		return Feedback{}, false
	}

	fb := Feedback{Modality: m, Step: step}
	if cur[m] == prev[m] {
		s.counters.addHit(m)
		fb.Outcome = Correct
	} else {
		s.counters.addError(m)
		fb.Outcome = Incorrect
	}
	return fb, true
}

// Finish ends playback and returns the final tallies.
func (s *Scorer) Finish() Counters {
	s.running = false
	return s.counters
}

// Stop abandons the block. Tallies are discarded.
func (s *Scorer) Stop() {
	s.running = false
	s.block = nil
	s.index = -1
	s.latch = [2]bool{}
	s.counters = Counters{}
}
