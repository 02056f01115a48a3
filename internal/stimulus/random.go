package stimulus

import (
	"math/rand"
	"time"

	"github.com/nvandessel/nback/internal/constants"
)

// RandomSource is the randomness capability the generator draws from.
// *rand.Rand satisfies it; tests supply scripted sources.
type RandomSource interface {
	// Intn returns a value in [0, n). n is always positive.
	Intn(n int) int
}

// NewRandomSource returns a time-seeded source for production use.
func NewRandomSource() RandomSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewSeededSource returns a deterministic source.
func NewSeededSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// Draw returns a uniformly random symbol from the alphabet.
func Draw(src RandomSource) Symbol {
	return Symbol(1 + src.Intn(constants.AlphabetSize))
}

// Bump nudges s to an adjacent symbol: up by one, or down by one at the top
// of the alphabet.
func Bump(s Symbol) Symbol {
	if s < constants.AlphabetSize {
		return s + 1
	}
	return s - 1
}
