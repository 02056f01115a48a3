package sequence

import "errors"

// Sentinel errors for the sequence package.
// Use errors.Is to check: errors.Is(err, sequence.ErrGenerationExhausted)
var (
	ErrInvalidParameters   = errors.New("sequence: invalid generation parameters")
	ErrGenerationExhausted = errors.New("sequence: could not generate a valid block with these parameters")
)
