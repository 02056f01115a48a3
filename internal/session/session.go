// Package session runs one block at a time: it generates the block, exposes
// each step, forwards confirmations to the scorer and finalizes the verdict.
//
// All public methods are safe for concurrent use. Clock ticks and key presses
// arriving from different goroutines are serialized by one mutex.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nvandessel/nback/internal/config"
	"github.com/nvandessel/nback/internal/history"
	"github.com/nvandessel/nback/internal/level"
	"github.com/nvandessel/nback/internal/logging"
	"github.com/nvandessel/nback/internal/scoring"
	"github.com/nvandessel/nback/internal/sounds"
	"github.com/nvandessel/nback/internal/stimulus"
)

// BlockGenerator produces a block for a level.
type BlockGenerator interface {
	GenerateForLevel(level, clues int) (stimulus.Block, error)
}

// FeedbackSink receives confirmation feedback when feedback is enabled.
// It is called outside the session lock and must not block for long.
type FeedbackSink interface {
	Feedback(fb scoring.Feedback)
}

// FeedbackFunc adapts a function to FeedbackSink.
type FeedbackFunc func(fb scoring.Feedback)

// Feedback calls f(fb).
func (f FeedbackFunc) Feedback(fb scoring.Feedback) { f(fb) }

// Settings are the values a block is played with. The session never
// changes them; Result carries the settings for the next block.
type Settings struct {
	Level    int           `json:"level"`
	Clues    int           `json:"clues"`
	SoundSet string        `json:"sound_set"`
	Interval time.Duration `json:"interval"`
	Feedback bool          `json:"feedback"`
}

// SettingsFrom builds Settings from the training config.
func SettingsFrom(t config.TrainingConfig) Settings {
	return Settings{
		Level:    t.Level,
		Clues:    t.Clues,
		SoundSet: t.SoundSet,
		Interval: time.Duration(t.Time) * time.Millisecond,
		Feedback: t.Feedback,
	}
}

// StepView is what the presentation layer shows for one step.
type StepView struct {
	Index     int           `json:"index"`
	Pair      stimulus.Pair `json:"pair"`
	Remaining int           `json:"remaining"`
	Tile      int           `json:"tile"`
	SoundName string        `json:"sound_name"`
}

// HistoryRequest asks the caller to record the finished block.
type HistoryRequest = history.Request

// Result is produced when a block runs to completion.
type Result struct {
	Verdict level.Verdict `json:"verdict"`

	// Settings are the input settings with the next level committed.
	Settings Settings `json:"settings"`

	History HistoryRequest `json:"history"`
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the operational logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithEvents sets the JSONL event log.
func WithEvents(events *logging.EventLogger) Option {
	return func(s *Session) { s.events = events }
}

// WithFeedbackSink sets where confirmation feedback is sent.
func WithFeedbackSink(sink FeedbackSink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithNow overrides the clock used to date results.
func WithNow(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session plays blocks with fixed settings.
type Session struct {
	mu       sync.Mutex
	settings Settings
	gen      BlockGenerator
	scorer   *scoring.Scorer
	length   int
	result   *Result

	logger *slog.Logger
	events *logging.EventLogger
	sink   FeedbackSink
	now    func() time.Time
}

// New creates an idle session.
func New(settings Settings, gen BlockGenerator, opts ...Option) *Session {
	s := &Session{
		settings: settings,
		gen:      gen,
		scorer:   scoring.NewScorer(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the settings the session plays with.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Running reports whether a block is in progress.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scorer.Running()
}

// Counters returns a snapshot of the running tallies.
func (s *Session) Counters() scoring.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scorer.Counters()
}

// Length returns the number of steps in the current block.
func (s *Session) Length() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.length
}

// Start generates a fresh block and begins playback. A block already in
// progress is abandoned first. On a generation error the session stays idle.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scorer.Running() {
		s.abandonLocked()
	}
	s.result = nil
	s.length = 0

	block, err := s.gen.GenerateForLevel(s.settings.Level, s.settings.Clues)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("block generation failed", "level", s.settings.Level, "clues", s.settings.Clues, "error", err)
		}
		return fmt.Errorf("starting block at level %d: %w", s.settings.Level, err)
	}

	s.scorer.Start(block, s.settings.Level)
	s.length = block.Len()

	if s.logger != nil {
		s.logger.Debug("block started", "level", s.settings.Level, "clues", s.settings.Clues, "length", s.length)
	}
	s.events.Log("block_started", map[string]any{
		"level":  s.settings.Level,
		"clues":  s.settings.Clues,
		"length": s.length,
	})
	return nil
}

// Step advances to the next step and returns it. When the block is
// exhausted the session finalizes, Step returns false and Result holds the
// verdict. Step on an idle session returns false.
func (s *Session) Step() (StepView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scorer.Running() {
		return StepView{}, false
	}

	idx, ok := s.scorer.Advance()
	if !ok {
		s.finalizeLocked()
		return StepView{}, false
	}

	view := s.viewLocked(idx)
	if s.logger != nil {
		s.logger.Log(context.Background(), logging.LevelTrace, "step", "index", idx, "position", view.Pair.Position(), "sound", view.Pair.Sound())
	}
	return view, true
}

func (s *Session) viewLocked(idx int) StepView {
	pair, _ := s.scorer.Pair(idx)
	name, err := sounds.Name(s.settings.SoundSet, pair.Sound())
	if err != nil {
		name = ""
	}
	return StepView{
		Index:     idx,
		Pair:      pair,
		Remaining: s.length - idx - 1,
		Tile:      stimulus.TileIndex(pair.Position()),
		SoundName: name,
	}
}

// Confirm reports a match for modality m during step. Stale or repeated
// confirmations return false. When feedback is enabled the event is also
// sent to the sink.
func (s *Session) Confirm(m stimulus.Modality, step int) (scoring.Feedback, bool) {
	s.mu.Lock()
	fb, ok := s.scorer.Confirm(m, step)
	sink := s.sink
	feedback := s.settings.Feedback
	s.mu.Unlock()

	if !ok {
		return fb, false
	}
	if s.logger != nil {
		s.logger.Log(context.Background(), logging.LevelTrace, "confirm", "modality", m.String(), "step", step, "outcome", fb.Outcome.String())
	}
	if feedback && sink != nil {
		sink.Feedback(fb)
	}
	return fb, true
}

// Stop abandons the block in progress. Tallies are discarded and no Result
// or history request is produced.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scorer.Running() {
		s.abandonLocked()
	}
}

func (s *Session) abandonLocked() {
	step := s.scorer.Index()
	s.scorer.Stop()
	s.length = 0
	if s.logger != nil {
		s.logger.Debug("block abandoned", "level", s.settings.Level, "step", step)
	}
	s.events.Log("block_abandoned", map[string]any{
		"level": s.settings.Level,
		"step":  step,
	})
}

func (s *Session) finalizeLocked() {
	counters := s.scorer.Finish()
	v := level.Finalize(counters, s.settings.Clues, s.settings.Level)

	next := s.settings
	next.Level = v.NextLevel

	now := s.now()
	s.result = &Result{
		Verdict:  v,
		Settings: next,
		History: HistoryRequest{
			Date:     history.DateKey(now),
			Save:     v.Save,
			Level:    v.Level,
			PlayedAt: now,
		},
	}

	if s.logger != nil {
		s.logger.Info("block finished", "level", v.Level, "outcome", v.Outcome.String(), "next_level", v.NextLevel)
	}
	s.events.Log("block_finalized", map[string]any{
		"level":      v.Level,
		"next_level": v.NextLevel,
		"outcome":    v.Outcome.String(),
		"save":       v.Save,
		"counters":   v.Counters,
	})
}

// Result returns the outcome of the last completed block.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}
