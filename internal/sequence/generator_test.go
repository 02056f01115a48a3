package sequence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/nback/internal/stimulus"
)

// scriptedSource replays a fixed list of draws, wrapping around.
type scriptedSource struct {
	vals []int
	pos  int
}

func (s *scriptedSource) Intn(n int) int {
	v := s.vals[s.pos%len(s.vals)]
	s.pos++
	return v % n
}

// constSource always draws zero, so every placement lands on index 0.
type constSource struct{}

func (constSource) Intn(int) int { return 0 }

func TestGenerate_ExactMatchCounts(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for _, clues := range []int{1, 3, 5, 8} {
			t.Run(fmt.Sprintf("n=%d/clues=%d", n, clues), func(t *testing.T) {
				gen := NewGenerator(Config{Source: stimulus.NewSeededSource(int64(n*100 + clues))})
				length := stimulus.BlockLength(n, clues)

				block, err := gen.Generate(n, length, clues)
				require.NoError(t, err)
				require.Len(t, block, length)

				assert.Equal(t, clues, stimulus.CountMatches(block, n, stimulus.Position), "position matches")
				assert.Equal(t, clues, stimulus.CountMatches(block, n, stimulus.Sound), "sound matches")
				assert.True(t, block.Complete(), "block contains unset symbols")
			})
		}
	}
}

func TestGenerate_InvariantsHoldAcrossSeeds(t *testing.T) {
	const n, clues = 3, 6
	length := stimulus.BlockLength(n, clues)

	for seed := int64(0); seed < 200; seed++ {
		gen := NewGenerator(Config{Source: stimulus.NewSeededSource(seed)})
		block, err := gen.Generate(n, length, clues)
		require.NoError(t, err, "seed %d", seed)
		require.True(t, Valid(block, n, clues), "seed %d produced an invalid block", seed)
		require.GreaterOrEqual(t, gen.Stats().Attempts, 1)
	}
}

func TestGenerate_EmptyBlock(t *testing.T) {
	gen := NewGenerator(Config{Source: constSource{}})

	for _, length := range []int{0, -3} {
		block, err := gen.Generate(2, length, 5)
		require.NoError(t, err)
		assert.Empty(t, block)
		assert.NotNil(t, block)
	}
}

func TestGenerate_InvalidParameters(t *testing.T) {
	gen := NewGenerator(Config{Source: stimulus.NewSeededSource(1)})

	tests := []struct {
		name            string
		n, length, clue int
	}{
		{"zero span", 0, 10, 2},
		{"negative clues", 2, 10, -1},
		{"lag longer than block", 12, 10, 1},
		{"more clues than lag slots", 2, 6, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.Generate(tt.n, tt.length, tt.clue)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameters), "got %v", err)
		})
	}
}

func TestGenerate_ZeroCluesHasNoMatches(t *testing.T) {
	gen := NewGenerator(Config{Source: stimulus.NewSeededSource(7)})

	block, err := gen.Generate(2, 12, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, stimulus.CountMatches(block, 2, stimulus.Position))
	assert.Equal(t, 0, stimulus.CountMatches(block, 2, stimulus.Sound))
}

func TestGenerate_ExhaustionIsBounded(t *testing.T) {
	gen := NewGenerator(Config{Source: constSource{}, MaxAttempts: 5})

	_, err := gen.Generate(2, 15, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenerationExhausted), "got %v", err)
	assert.Equal(t, 5, gen.Stats().Attempts)
}

func TestGenerateForLevel_UsesStandardLength(t *testing.T) {
	gen := NewGenerator(Config{Source: stimulus.NewSeededSource(3)})

	block, err := gen.GenerateForLevel(2, 5)
	require.NoError(t, err)
	assert.Len(t, block, 15)
	assert.Equal(t, Stats{Attempts: gen.Stats().Attempts, Length: 15, Span: 2, Clues: 5}, gen.Stats())
}

func TestIntroduceMatches_PropagatesAndSkips(t *testing.T) {
	block := make(stimulus.Block, 4)
	block[0][stimulus.Position] = 6

	// t=0 propagates forward (set, unset); t=0 again is (set, set) and is skipped;
	// t=1 is (unset, unset) and draws symbol 1+2=3 for both ends.
	src := &scriptedSource{vals: []int{0, 0, 1, 2}}
	ok := introduceMatches(block, 2, 2, stimulus.Position, src, 100)

	require.True(t, ok)
	assert.Equal(t, stimulus.Symbol(6), block[2][stimulus.Position])
	assert.Equal(t, stimulus.Symbol(3), block[1][stimulus.Position])
	assert.Equal(t, stimulus.Symbol(3), block[3][stimulus.Position])
}

func TestIntroduceMatches_PropagatesBackward(t *testing.T) {
	block := make(stimulus.Block, 3)
	block[2][stimulus.Sound] = 5

	src := &scriptedSource{vals: []int{1}}
	ok := introduceMatches(block, 1, 1, stimulus.Sound, src, 10)

	require.True(t, ok)
	assert.Equal(t, stimulus.Symbol(5), block[1][stimulus.Sound])
}

func TestIntroduceMatches_RunsOutOfDraws(t *testing.T) {
	block := make(stimulus.Block, 4)
	ok := introduceMatches(block, 2, 2, stimulus.Position, constSource{}, 10)
	assert.False(t, ok)
}

func TestFillHole_Bump(t *testing.T) {
	tests := []struct {
		name      string
		positions []stimulus.Symbol
		index     int
		draw      int
		want      stimulus.Symbol
	}{
		{"no collision keeps draw", []stimulus.Symbol{3, 0, 0}, 1, 4, 5},
		{"collision with previous bumps up", []stimulus.Symbol{3, 0, 0}, 1, 2, 4},
		{"collision at top bumps down", []stimulus.Symbol{8, 0, 0}, 1, 7, 7},
		{"collision with next bumps up", []stimulus.Symbol{0, 5, 0}, 0, 4, 6},
		{"bump is not rechecked against next", []stimulus.Symbol{4, 0, 5}, 1, 3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := make(stimulus.Block, len(tt.positions))
			for i, s := range tt.positions {
				block[i][stimulus.Position] = s
			}
			fillHole(block, tt.index, 1, stimulus.Position, &scriptedSource{vals: []int{tt.draw}})
			assert.Equal(t, tt.want, block[tt.index][stimulus.Position])
		})
	}
}

func TestFillHole_LeavesSetSlots(t *testing.T) {
	block := stimulus.Block{{2, 2}}
	fillHole(block, 0, 1, stimulus.Position, &scriptedSource{vals: []int{5}})
	assert.Equal(t, stimulus.Symbol(2), block[0][stimulus.Position])
}

func TestValid(t *testing.T) {
	block := stimulus.Block{{1, 2}, {3, 4}, {1, 5}, {6, 4}}

	assert.True(t, Valid(block, 2, 1))
	assert.False(t, Valid(block, 2, 2))
	assert.False(t, Valid(stimulus.Block{{1, 0}, {1, 1}}, 1, 1), "unset slots are never valid")
}

func BenchmarkGenerate(b *testing.B) {
	gen := NewGenerator(Config{Source: stimulus.NewSeededSource(1)})
	for i := 0; i < b.N; i++ {
		if _, err := gen.GenerateForLevel(3, 8); err != nil {
			b.Fatal(err)
		}
	}
}
