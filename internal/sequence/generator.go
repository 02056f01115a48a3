// Package sequence builds dual-stream n-back blocks that contain an exact
// number of lag-n matches per modality.
//
// Blocks are constructed, verified and retried: matches are planted first,
// remaining slots are filled with a one-step nudge away from accidental
// matches, and the whole block is recounted. Blocks that miss the target are
// discarded. The search is bounded by Config.MaxAttempts.
package sequence

import (
	"fmt"
	"log/slog"

	"github.com/nvandessel/nback/internal/constants"
	"github.com/nvandessel/nback/internal/stimulus"
)

// Config configures a Generator.
// Zero values produce sensible defaults; see field comments.
type Config struct {
	// MaxAttempts caps how many whole blocks may be discarded. Zero means
	// constants.DefaultMaxAttempts.
	MaxAttempts int

	// Source supplies random draws. Nil means a time-seeded source.
	Source stimulus.RandomSource

	// Logger receives debug output about attempts. Optional.
	Logger *slog.Logger
}

// Stats describes the most recent Generate call.
type Stats struct {
	Attempts int `json:"attempts"`
	Length   int `json:"length"`
	Span     int `json:"span"`
	Clues    int `json:"clues"`
}

// Generator produces blocks. It is not safe for concurrent use.
type Generator struct {
	src         stimulus.RandomSource
	maxAttempts int
	logger      *slog.Logger
	last        Stats
}

// NewGenerator creates a Generator from the given config.
func NewGenerator(cfg Config) *Generator {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = constants.DefaultMaxAttempts
	}
	src := cfg.Source
	if src == nil {
		src = stimulus.NewRandomSource()
	}
	return &Generator{
		src:         src,
		maxAttempts: maxAttempts,
		logger:      cfg.Logger,
	}
}

// Stats returns bookkeeping for the last generated block.
func (g *Generator) Stats() Stats {
	return g.last
}

// GenerateForLevel builds a block for span level with the standard length
// clues * (level + 1).
func (g *Generator) GenerateForLevel(level, clues int) (stimulus.Block, error) {
	return g.Generate(level, stimulus.BlockLength(level, clues), clues)
}

// Generate builds a block of blockLength pairs in which exactly clues indices
// repeat the position symbol from n steps earlier, and exactly clues indices
// repeat the sound symbol from n steps earlier.
//
// A non-positive blockLength yields an empty block. Requests that can never be
// satisfied return ErrInvalidParameters; running out of attempts returns
// ErrGenerationExhausted.
func (g *Generator) Generate(n, blockLength, clues int) (stimulus.Block, error) {
	g.last = Stats{Length: blockLength, Span: n, Clues: clues}
	if blockLength <= 0 {
		return stimulus.Block{}, nil
	}
	if err := checkParameters(n, blockLength, clues); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		block, ok := g.prepare(n, blockLength, clues)
		if !ok || !Valid(block, n, clues) {
			continue
		}
		g.last.Attempts = attempt
		if g.logger != nil {
			g.logger.Debug("block generated", "span", n, "length", blockLength, "clues", clues, "attempts", attempt)
		}
		return block, nil
	}

	g.last.Attempts = g.maxAttempts
	if g.logger != nil {
		g.logger.Warn("block generation exhausted", "span", n, "length", blockLength, "clues", clues, "attempts", g.maxAttempts)
	}
	return nil, fmt.Errorf("%w: n=%d length=%d clues=%d after %d attempts",
		ErrGenerationExhausted, n, blockLength, clues, g.maxAttempts)
}

// checkParameters rejects requests no block can satisfy.
func checkParameters(n, blockLength, clues int) error {
	if n < 1 {
		return fmt.Errorf("%w: span %d must be at least 1", ErrInvalidParameters, n)
	}
	if clues < 0 {
		return fmt.Errorf("%w: clues %d must not be negative", ErrInvalidParameters, clues)
	}
	// Each match is counted at a distinct index in [n, blockLength).
	if clues > blockLength-n && clues > 0 {
		return fmt.Errorf("%w: %d clues cannot fit at lag %d in %d steps",
			ErrInvalidParameters, clues, n, blockLength)
	}
	return nil
}

// prepare runs one construct pass. It reports false when match placement ran
// out of draws.
func (g *Generator) prepare(n, blockLength, clues int) (stimulus.Block, bool) {
	block := make(stimulus.Block, blockLength)
	maxDraws := constants.DrawsPerSlot * blockLength

	for _, m := range stimulus.Modalities {
		if !introduceMatches(block, n, clues, m, g.src, maxDraws) {
			return nil, false
		}
	}

	for i := range block {
		for _, m := range stimulus.Modalities {
			fillHole(block, i, n, m, g.src)
		}
	}
	return block, true
}

// introduceMatches plants clues lag-n matches for modality m. It never
// overwrites a set slot, so earlier matches survive later draws.
func introduceMatches(block stimulus.Block, n, clues int, m stimulus.Modality, src stimulus.RandomSource, maxDraws int) bool {
	span := len(block) - n
	if span <= 0 {
		return clues == 0
	}

	planted := 0
	for draws := 0; planted < clues; draws++ {
		if draws >= maxDraws {
			return false
		}
		t := src.Intn(span)
		current, future := block[t][m], block[t+n][m]

		switch {
		case current == stimulus.Unset && future == stimulus.Unset:
			s := stimulus.Draw(src)
			block[t][m] = s
			block[t+n][m] = s
		case current != stimulus.Unset && future == stimulus.Unset:
			block[t+n][m] = current
		case current == stimulus.Unset && future != stimulus.Unset:
			block[t][m] = future
		default:
			continue
		}
		planted++
	}
	return true
}

// fillHole assigns a random symbol to an unset slot, nudging it once if it
// would repeat the symbol n steps before (checked first) or after.
func fillHole(block stimulus.Block, i, n int, m stimulus.Modality, src stimulus.RandomSource) {
	if block[i][m] != stimulus.Unset {
		return
	}
	s := stimulus.Draw(src)
	if prev, ok := block.At(i - n); ok && prev[m] == s {
		s = stimulus.Bump(s)
	} else if next, ok := block.At(i + n); ok && next[m] == s {
		s = stimulus.Bump(s)
	}
	block[i][m] = s
}

// Valid reports whether block has exactly clues lag-n matches in both
// modalities and no unset slots.
func Valid(block stimulus.Block, n, clues int) bool {
	if !block.Complete() {
		return false
	}
	positions := stimulus.CountMatches(block, n, stimulus.Position)
	sounds := stimulus.CountMatches(block, n, stimulus.Sound)
	return positions == sounds && positions == clues
}
