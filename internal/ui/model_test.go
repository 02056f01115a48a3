package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/nback/internal/history"
	"github.com/nvandessel/nback/internal/level"
	"github.com/nvandessel/nback/internal/scoring"
	"github.com/nvandessel/nback/internal/sequence"
	"github.com/nvandessel/nback/internal/session"
	"github.com/nvandessel/nback/internal/sounds"
	"github.com/nvandessel/nback/internal/stimulus"
)

var testNow = time.Date(2026, 6, 1, 9, 30, 0, 0, time.Local)

type scriptedGenerator struct {
	block stimulus.Block
	err   error
}

func (g scriptedGenerator) GenerateForLevel(int, int) (stimulus.Block, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.block.Clone(), nil
}

// The level-1 block has a position match at step 1 and a sound match at step 2.
var oneBackBlock = stimulus.Block{{1, 5}, {1, 6}, {2, 6}}

func newTestModel(t *testing.T, gen session.BlockGenerator, store history.Store, onResult func(session.Result) error) Model {
	t.Helper()
	return New(context.Background(), Options{
		Settings:  session.Settings{Level: 1, Clues: 1, SoundSet: sounds.DefaultSet, Interval: 2400 * time.Millisecond, Feedback: true},
		Generator: gen,
		Store:     store,
		OnResult:  onResult,
		Now:       func() time.Time { return testNow },
		SessionOptions: []session.Option{
			session.WithNow(func() time.Time { return testNow }),
		},
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_PlayFullBlock(t *testing.T) {
	store := history.NewMemoryStore()
	var committed []session.Result
	m := newTestModel(t, scriptedGenerator{block: oneBackBlock}, store, func(r session.Result) error {
		committed = append(committed, r)
		return nil
	})

	m, cmd := update(t, m, key('s'))
	require.NotNil(t, cmd, "start schedules the first step")
	assert.Equal(t, statePlaying, m.state)
	assert.Contains(t, m.View(), "get ready")

	m, _ = update(t, m, stepMsg{seq: m.seq})
	assert.Equal(t, 0, m.view.Index)
	assert.True(t, m.lit)
	assert.Equal(t, 0, m.view.Tile)
	assert.Contains(t, m.View(), "remaining: 2")
	assert.Contains(t, m.View(), "♪ 5")

	m, _ = update(t, m, stepMsg{seq: m.seq})
	m, cmd = update(t, m, key('a'))
	require.NotNil(t, cmd, "feedback pulse is scheduled")
	require.NotNil(t, m.pulse)
	assert.Equal(t, scoring.Correct, m.pulse.Outcome)
	assert.Contains(t, m.View(), "Position ✓")

	// Held key does not score twice.
	m, cmd = update(t, m, key('a'))
	assert.Nil(t, cmd)

	m, _ = update(t, m, pulseOffMsg{id: m.pulseSeq})
	assert.Nil(t, m.pulse)

	m, _ = update(t, m, stepMsg{seq: m.seq})
	m, _ = update(t, m, key('l'))
	assert.Equal(t, stimulus.Sound, m.pulse.Modality)

	m, cmd = update(t, m, stepMsg{seq: m.seq})
	assert.Equal(t, stateFinished, m.state)
	require.NotNil(t, cmd, "finished block is committed")

	res, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, level.Advance, res.Verdict.Outcome)
	assert.Equal(t, 1, res.Verdict.Counters.PosHits)
	assert.Equal(t, 1, res.Verdict.Counters.SoundHits)
	assert.Equal(t, 2, m.Settings().Level)
	assert.Contains(t, m.View(), "N is now: 2")

	m, _ = update(t, m, cmd())
	require.NoError(t, m.Err())
	assert.Equal(t, 1, m.runsToday)
	assert.Contains(t, m.View(), "today 1/20")

	require.Len(t, committed, 1)
	assert.Equal(t, 2, committed[0].Settings.Level)

	day, err := store.Day(context.Background(), "01/06/2026")
	require.NoError(t, err)
	assert.Equal(t, 1, day.Runs)
	assert.Equal(t, []int{1}, day.Levels)
}

func TestModel_StopAbandonsBlock(t *testing.T) {
	store := history.NewMemoryStore()
	m := newTestModel(t, scriptedGenerator{block: oneBackBlock}, store, nil)

	m, _ = update(t, m, key('s'))
	m, _ = update(t, m, stepMsg{seq: m.seq})
	m, _ = update(t, m, stepMsg{seq: m.seq})
	m, _ = update(t, m, key('a'))
	staleSeq := m.seq

	m, cmd := update(t, m, key('s'))
	assert.Nil(t, cmd)
	assert.Equal(t, stateIdle, m.state)
	_, ok := m.Result()
	assert.False(t, ok)
	assert.Equal(t, 1, m.Settings().Level)

	// A tick already in flight for the abandoned block is dropped.
	m, cmd = update(t, m, stepMsg{seq: staleSeq})
	assert.Nil(t, cmd)
	assert.Equal(t, stateIdle, m.state)

	runs, err := store.Runs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestModel_FlashOff(t *testing.T) {
	m := newTestModel(t, scriptedGenerator{block: oneBackBlock}, nil, nil)
	m, _ = update(t, m, key('s'))
	m, _ = update(t, m, stepMsg{seq: m.seq})
	require.True(t, m.lit)

	m, _ = update(t, m, flashOffMsg{seq: m.seq, index: 1})
	assert.True(t, m.lit, "flash for another step is ignored")

	m, _ = update(t, m, flashOffMsg{seq: m.seq, index: 0})
	assert.False(t, m.lit)
}

func TestModel_FeedbackDisabled(t *testing.T) {
	m := newTestModel(t, scriptedGenerator{block: oneBackBlock}, nil, nil)
	m.settings.Feedback = false

	m, _ = update(t, m, key('s'))
	m, _ = update(t, m, stepMsg{seq: m.seq})
	m, _ = update(t, m, stepMsg{seq: m.seq})
	m, cmd := update(t, m, key('a'))
	assert.Nil(t, cmd)
	assert.Nil(t, m.pulse)
	assert.Equal(t, 1, m.session.Counters().PosHits, "confirmation still scores")
}

func TestModel_ConfirmBeforeFirstStep(t *testing.T) {
	m := newTestModel(t, scriptedGenerator{block: oneBackBlock}, nil, nil)
	m, cmd := update(t, m, key('a'))
	assert.Nil(t, cmd)

	m, _ = update(t, m, key('s'))
	m, cmd = update(t, m, key('l'))
	assert.Nil(t, cmd)
	assert.Equal(t, scoring.Counters{}, m.session.Counters())
}

func TestModel_GenerationError(t *testing.T) {
	m := newTestModel(t, scriptedGenerator{err: sequence.ErrGenerationExhausted}, nil, nil)

	m, cmd := update(t, m, key('s'))
	assert.Nil(t, cmd)
	assert.Equal(t, stateIdle, m.state)
	require.Error(t, m.Err())
	assert.True(t, errors.Is(m.Err(), sequence.ErrGenerationExhausted))
	assert.Contains(t, m.View(), "could not generate")
}

func TestModel_CommitError(t *testing.T) {
	m := newTestModel(t, scriptedGenerator{block: oneBackBlock}, nil, func(session.Result) error {
		return errors.New("disk full")
	})
	m, _ = update(t, m, key('s'))
	var cmd tea.Cmd
	for m.state == statePlaying {
		m, cmd = update(t, m, stepMsg{seq: m.seq})
	}
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	require.Error(t, m.Err())
	assert.Contains(t, m.Err().Error(), "disk full")
}

func TestModel_Quit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"q", key('q')},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, scriptedGenerator{block: oneBackBlock}, nil, nil)
			m, _ = update(t, m, key('s'))
			m, cmd := update(t, m, tt.msg)
			require.NotNil(t, cmd)
			assert.Equal(t, tea.QuitMsg{}, cmd())
			assert.False(t, m.session.Running(), "quitting abandons the block")
		})
	}
}

func TestModel_QuitWaitsForCommit(t *testing.T) {
	store := history.NewMemoryStore()
	committed := 0
	m := newTestModel(t, scriptedGenerator{block: oneBackBlock}, store, func(session.Result) error {
		committed++
		return nil
	})

	m, _ = update(t, m, key('s'))
	var commit tea.Cmd
	for m.state == statePlaying {
		m, commit = update(t, m, stepMsg{seq: m.seq})
	}
	require.NotNil(t, commit)
	require.True(t, m.committing)

	m, cmd := update(t, m, key('q'))
	assert.Nil(t, cmd, "quit is deferred while the block is saved")
	assert.True(t, m.quitting)
	assert.Contains(t, m.View(), "saving...")

	m, cmd = update(t, m, commit())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.committing)
	require.NoError(t, m.Err())
	assert.Equal(t, 1, committed)

	day, err := store.Day(context.Background(), "01/06/2026")
	require.NoError(t, err)
	assert.Equal(t, 1, day.Runs)
}

func TestModel_QuitAfterCommitIsImmediate(t *testing.T) {
	m := newTestModel(t, scriptedGenerator{block: oneBackBlock}, history.NewMemoryStore(), nil)
	m, _ = update(t, m, key('s'))
	var commit tea.Cmd
	for m.state == statePlaying {
		m, commit = update(t, m, stepMsg{seq: m.seq})
	}
	m, _ = update(t, m, commit())

	_, cmd := update(t, m, key('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_GridLightsPositionTile(t *testing.T) {
	tests := []struct {
		symbol   stimulus.Symbol
		row, col int
	}{
		{1, 0, 0},
		{4, 1, 0},
		{5, 1, 2},
		{8, 2, 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("symbol %d", tt.symbol), func(t *testing.T) {
			m := newTestModel(t, scriptedGenerator{block: stimulus.Block{{tt.symbol, 1}, {1, 2}}}, nil, nil)
			m, _ = update(t, m, key('s'))
			m, _ = update(t, m, stepMsg{seq: m.seq})

			lines := strings.Split(m.grid(), "\n")
			found := false
			for i, line := range lines {
				col := strings.Index(line, litMark)
				if col < 0 {
					continue
				}
				found = true
				assert.Equal(t, tt.row, i/(tileHeight+1), "row")
				assert.Equal(t, tt.col, col/(tileWidth+1), "column")
			}
			assert.True(t, found, "lit tile rendered")

			m, _ = update(t, m, flashOffMsg{seq: m.seq, index: 0})
			assert.NotContains(t, m.grid(), litMark)
		})
	}
}

func TestModel_InitLoadsToday(t *testing.T) {
	store := history.NewMemoryStore()
	for i := 0; i < 3; i++ {
		_, err := store.Record(context.Background(), history.Request{Date: "01/06/2026", Save: i%2 == 0, Level: 2, PlayedAt: testNow.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	m := newTestModel(t, scriptedGenerator{block: oneBackBlock}, store, nil)
	cmd := m.Init()
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.Equal(t, 3, m.runsToday)
	assert.Contains(t, m.View(), "today 3/20")
}

func TestModel_InitWithoutStore(t *testing.T) {
	m := newTestModel(t, scriptedGenerator{block: oneBackBlock}, nil, nil)
	assert.Nil(t, m.Init())
}

func TestModel_WindowResize(t *testing.T) {
	m := newTestModel(t, scriptedGenerator{block: oneBackBlock}, nil, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 50, Height: 30})
	assert.Equal(t, 50, m.width)
	assert.Equal(t, 30, m.progress.Width)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 30})
	assert.Equal(t, 60, m.progress.Width)
}

func TestFormatResult(t *testing.T) {
	out := FormatResult(session.Result{Verdict: level.Verdict{
		Counters: scoring.Counters{PosHits: 6, PosMisses: 2, PosErrors: 1, SoundHits: 8},
		Message:  "N stays: 3. Keep trying!",
	}})
	assert.Contains(t, out, "Position       6       2       1")
	assert.Contains(t, out, "Sound          8       0       0")
	assert.Contains(t, out, "N stays: 3. Keep trying!")
}
