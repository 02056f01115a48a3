// Package clock drives block playback at a fixed step interval.
//
// The clock owns no goroutines: Run blocks in the caller until the stepper
// reports the block is done or the context is cancelled. Presentation code
// that has its own event loop (the terminal UI) uses Timing directly.
package clock

import (
	"context"
	"time"
)

// Timing derives every playback duration from the step interval.
type Timing struct {
	Interval time.Duration
}

// FromMillis builds a Timing from an interval in milliseconds.
func FromMillis(ms int) Timing {
	return Timing{Interval: time.Duration(ms) * time.Millisecond}
}

// Lead is the pause before the first step of a block.
func (t Timing) Lead() time.Duration { return t.Interval / 4 }

// Flash is how long a position tile stays lit.
func (t Timing) Flash() time.Duration { return t.Interval / 2 }

// Pulse is how long confirmation feedback stays visible.
func (t Timing) Pulse() time.Duration { return t.Interval / 6 }

// Clock ticks a stepper: once after the lead-in, then once per interval.
type Clock struct {
	timing Timing
}

// New creates a Clock with the given timing.
func New(t Timing) *Clock {
	return &Clock{timing: t}
}

// Timing returns the clock's timing.
func (c *Clock) Timing() Timing {
	return c.timing
}

// Run calls tick after the lead-in and then once per interval until tick
// returns false (nil is returned) or ctx is done (ctx.Err() is returned).
func (c *Clock) Run(ctx context.Context, tick func() bool) error {
	timer := time.NewTimer(c.timing.Lead())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		if !tick() {
			return nil
		}
		timer.Reset(c.timing.Interval)
	}
}
