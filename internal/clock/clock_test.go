package clock

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTiming_Derived(t *testing.T) {
	tm := FromMillis(2400)

	if tm.Interval != 2400*time.Millisecond {
		t.Errorf("Interval = %v", tm.Interval)
	}
	if tm.Lead() != 600*time.Millisecond {
		t.Errorf("Lead = %v, want 600ms", tm.Lead())
	}
	if tm.Flash() != 1200*time.Millisecond {
		t.Errorf("Flash = %v, want 1.2s", tm.Flash())
	}
	if tm.Pulse() != 400*time.Millisecond {
		t.Errorf("Pulse = %v, want 400ms", tm.Pulse())
	}
}

func TestClock_RunStopsWhenTickReturnsFalse(t *testing.T) {
	c := New(Timing{Interval: time.Millisecond})

	ticks := 0
	err := c.Run(context.Background(), func() bool {
		ticks++
		return ticks < 5
	})
	if err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if ticks != 5 {
		t.Errorf("ticks = %d, want 5", ticks)
	}
}

func TestClock_RunHonoursCancellation(t *testing.T) {
	c := New(Timing{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := c.Run(ctx, func() bool {
		called = true
		return true
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("tick should not run after cancellation")
	}
}

func TestClock_RunCancelMidBlock(t *testing.T) {
	c := New(Timing{Interval: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := 0
	err := c.Run(ctx, func() bool {
		ticks++
		if ticks == 3 {
			cancel()
		}
		return true
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
	if ticks != 3 {
		t.Errorf("ticks = %d, want 3", ticks)
	}
}

func TestClock_ZeroIntervalRunsImmediately(t *testing.T) {
	c := New(Timing{})

	ticks := 0
	if err := c.Run(context.Background(), func() bool {
		ticks++
		return ticks < 100
	}); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if ticks != 100 {
		t.Errorf("ticks = %d, want 100", ticks)
	}
}
