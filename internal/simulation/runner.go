package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nvandessel/nback/internal/clock"
	"github.com/nvandessel/nback/internal/history"
	"github.com/nvandessel/nback/internal/logging"
	"github.com/nvandessel/nback/internal/session"
	"github.com/nvandessel/nback/internal/stimulus"
)

// Runner plays scenarios block after block against a real generator and an
// optional history store.
type Runner struct {
	gen    session.BlockGenerator
	store  history.Store
	timing clock.Timing
	logger *slog.Logger
	events *logging.EventLogger
	now    func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithTiming sets the playback timing. The default is zero: no waiting.
func WithTiming(t clock.Timing) Option {
	return func(r *Runner) { r.timing = t }
}

// WithLogger sets the operational logger passed to each session.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithEvents sets the event log passed to each session.
func WithEvents(events *logging.EventLogger) Option {
	return func(r *Runner) { r.events = events }
}

// WithNow overrides the clock used to date results.
func WithNow(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a runner. store may be nil, in which case nothing is
// recorded.
func NewRunner(gen session.BlockGenerator, store history.Store, opts ...Option) *Runner {
	r := &Runner{gen: gen, store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run plays every block of the scenario. It stops at the first error; the
// blocks finished so far are returned with it.
func (r *Runner) Run(ctx context.Context, sc Scenario) (Result, error) {
	if sc.Player == nil {
		return Result{}, errors.New("simulation: scenario has no player")
	}

	result := Result{Scenario: sc.Name, Final: sc.Settings}
	settings := sc.Settings

	for i := 0; i < sc.Blocks; i++ {
		if sc.BeforeBlock != nil {
			sc.BeforeBlock(i, settings)
		}
		br, next, err := r.runBlock(ctx, i, settings, sc.Player)
		if err != nil {
			return result, fmt.Errorf("block %d: %w", i+1, err)
		}
		result.Blocks = append(result.Blocks, br)
		settings = next
		result.Final = next
	}
	return result, nil
}

// runBlock plays one block and returns it with the settings for the next.
func (r *Runner) runBlock(ctx context.Context, index int, settings session.Settings, player Player) (BlockResult, session.Settings, error) {
	opts := []session.Option{session.WithNow(r.now), session.WithEvents(r.events)}
	if r.logger != nil {
		opts = append(opts, session.WithLogger(r.logger))
	}
	s := session.New(settings, r.gen, opts...)
	if err := s.Start(); err != nil {
		return BlockResult{}, settings, err
	}

	br := BlockResult{Index: index}
	shown := make([]stimulus.Pair, 0, s.Length())

	tick := func() bool {
		view, ok := s.Step()
		if !ok {
			return false
		}
		br.Steps++
		shown = append(shown, view.Pair)

		var lag stimulus.Pair
		hasLag := view.Index >= settings.Level
		if hasLag {
			lag = shown[view.Index-settings.Level]
		}
		for _, m := range player.Respond(view, lag, hasLag) {
			if _, ok := s.Confirm(m, view.Index); ok {
				br.Confirmations++
			}
		}
		return true
	}

	if err := clock.New(r.timing).Run(ctx, tick); err != nil {
		s.Stop()
		return BlockResult{}, settings, err
	}

	res, ok := s.Result()
	if !ok {
		return BlockResult{}, settings, errors.New("simulation: block ended without a result")
	}
	br.Verdict = res.Verdict

	if r.store != nil {
		run, err := r.store.Record(ctx, res.History)
		if err != nil {
			return BlockResult{}, settings, fmt.Errorf("recording history: %w", err)
		}
		br.Run = &run
	}
	return br, res.Settings, nil
}
