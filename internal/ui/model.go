package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvandessel/nback/internal/clock"
	"github.com/nvandessel/nback/internal/history"
	"github.com/nvandessel/nback/internal/scoring"
	"github.com/nvandessel/nback/internal/session"
	"github.com/nvandessel/nback/internal/stimulus"
)

type state int

const (
	stateIdle state = iota
	statePlaying
	stateFinished
)

// Options configures a Model.
type Options struct {
	// Settings for the first block.
	Settings session.Settings

	Generator session.BlockGenerator

	// Store records finished blocks and supplies today's run count. Optional.
	Store history.Store

	// SessionOptions are passed to every session the model creates.
	SessionOptions []session.Option

	// OnResult is called with every finished block before it is recorded,
	// typically to persist the committed level. Optional.
	OnResult func(session.Result) error

	// Now overrides the clock used for the day key. Optional.
	Now func() time.Time
}

// Model is the bubbletea model for interactive play.
type Model struct {
	ctx      context.Context
	settings session.Settings
	gen      session.BlockGenerator
	store    history.Store
	sessOpts []session.Option
	onResult func(session.Result) error
	now      func() time.Time

	session *session.Session
	timing  clock.Timing
	state   state

	// seq identifies the running block; ticks from earlier blocks are dropped.
	seq     int
	view    session.StepView
	hasView bool
	lit     bool

	pulse    *scoring.Feedback
	pulseSeq int

	result    *session.Result
	runsToday int
	err       error

	// committing is set while a finished block is being persisted; a quit
	// request during that time is deferred until committedMsg arrives.
	committing bool
	quitting   bool

	styles   Styles
	progress progress.Model
	width    int
}

// New creates an idle model. Press s to start the first block.
func New(ctx context.Context, opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return Model{
		ctx:      ctx,
		settings: opts.Settings,
		gen:      opts.Generator,
		store:    opts.Store,
		sessOpts: opts.SessionOptions,
		onResult: opts.OnResult,
		now:      now,
		timing:   clock.Timing{Interval: opts.Settings.Interval},
		styles:   DefaultStyles(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		width:    80,
	}
}

// Settings returns the settings the next block will be played with.
func (m Model) Settings() session.Settings {
	return m.settings
}

// Result returns the last finished block, if any.
func (m Model) Result() (session.Result, bool) {
	if m.result == nil {
		return session.Result{}, false
	}
	return *m.result, true
}

// Err returns the last error shown to the user.
func (m Model) Err() error {
	return m.err
}

type stepMsg struct{ seq int }

type flashOffMsg struct {
	seq   int
	index int
}

type pulseOffMsg struct{ id int }

type dayMsg struct {
	day history.Day
	err error
}

// committedMsg reports the end of a commit. day is only set when the block
// was recorded.
type committedMsg struct {
	day *history.Day
	err error
}

func stepAfter(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return stepMsg{seq: seq} })
}

// Init loads today's run count.
func (m Model) Init() tea.Cmd {
	return m.loadDay()
}

func (m Model) loadDay() tea.Cmd {
	if m.store == nil {
		return nil
	}
	store, ctx, date := m.store, m.ctx, history.DateKey(m.now())
	return func() tea.Msg {
		day, err := store.Day(ctx, date)
		return dayMsg{day: day, err: err}
	}
}

// Update handles key presses, clock ticks and store replies.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-20, 10), 60)
		return m, nil

	case stepMsg:
		if msg.seq != m.seq || m.state != statePlaying {
			return m, nil
		}
		return m.step()

	case flashOffMsg:
		if msg.seq == m.seq && m.view.Index == msg.index {
			m.lit = false
		}
		return m, nil

	case pulseOffMsg:
		if msg.id == m.pulseSeq {
			m.pulse = nil
		}
		return m, nil

	case dayMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.runsToday = msg.day.Runs
		return m, nil

	case committedMsg:
		m.committing = false
		if msg.err != nil {
			m.err = msg.err
		} else if msg.day != nil {
			m.runsToday = msg.day.Runs
		}
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		if p, ok := pm.(progress.Model); ok {
			m.progress = p
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if m.state == statePlaying {
			m.session.Stop()
			m.state = stateIdle
		}
		if m.committing {
			m.quitting = true
			return m, nil
		}
		return m, tea.Quit
	case "s":
		if m.state == statePlaying {
			m.session.Stop()
			m.state = stateIdle
			m.hasView = false
			m.lit = false
			m.seq++
			return m, nil
		}
		return m.start()
	case "a":
		return m.confirm(stimulus.Position)
	case "l":
		return m.confirm(stimulus.Sound)
	}
	return m, nil
}

func (m Model) start() (tea.Model, tea.Cmd) {
	m.seq++
	m.session = session.New(m.settings, m.gen, m.sessOpts...)
	m.timing = clock.Timing{Interval: m.settings.Interval}
	m.result = nil
	m.hasView = false
	m.lit = false
	m.pulse = nil

	if err := m.session.Start(); err != nil {
		m.err = err
		m.state = stateIdle
		return m, nil
	}
	m.err = nil
	m.state = statePlaying
	return m, stepAfter(m.timing.Lead(), m.seq)
}

func (m Model) step() (tea.Model, tea.Cmd) {
	view, ok := m.session.Step()
	if !ok {
		return m.finish()
	}
	m.view = view
	m.hasView = true
	m.lit = true

	seq, index := m.seq, view.Index
	return m, tea.Batch(
		tea.Tick(m.timing.Flash(), func(time.Time) tea.Msg { return flashOffMsg{seq: seq, index: index} }),
		stepAfter(m.timing.Interval, seq),
	)
}

func (m Model) confirm(mod stimulus.Modality) (tea.Model, tea.Cmd) {
	if m.state != statePlaying || !m.hasView {
		return m, nil
	}
	fb, ok := m.session.Confirm(mod, m.view.Index)
	if !ok || !m.settings.Feedback {
		return m, nil
	}
	m.pulseSeq++
	m.pulse = &fb
	id := m.pulseSeq
	return m, tea.Tick(m.timing.Pulse(), func(time.Time) tea.Msg { return pulseOffMsg{id: id} })
}

func (m Model) finish() (tea.Model, tea.Cmd) {
	m.state = stateFinished
	m.hasView = false
	m.lit = false
	m.pulse = nil

	res, ok := m.session.Result()
	if !ok {
		m.err = fmt.Errorf("block ended without a result")
		return m, nil
	}
	m.result = &res
	m.settings = res.Settings
	cmd := m.commit(res)
	m.committing = cmd != nil
	return m, cmd
}

// commit persists a finished block and reloads today's run count.
func (m Model) commit(res session.Result) tea.Cmd {
	store, ctx, onResult := m.store, m.ctx, m.onResult
	if store == nil && onResult == nil {
		return nil
	}
	return func() tea.Msg {
		if onResult != nil {
			if err := onResult(res); err != nil {
				return committedMsg{err: fmt.Errorf("saving result: %w", err)}
			}
		}
		if store == nil {
			return committedMsg{}
		}
		if _, err := store.Record(ctx, res.History); err != nil {
			return committedMsg{err: fmt.Errorf("recording history: %w", err)}
		}
		day, err := store.Day(ctx, res.History.Date)
		if err != nil {
			return committedMsg{err: err}
		}
		return committedMsg{day: &day}
	}
}

// Run starts the interactive program and returns the final model.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) (Model, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if fm, ok := final.(Model); ok {
		m = fm
	}
	if m.session != nil && m.session.Running() {
		m.session.Stop()
	}
	return m, err
}
