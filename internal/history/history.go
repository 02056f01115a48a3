// Package history records finished blocks per calendar day and derives the
// daily progress and chart series shown to the user.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nvandessel/nback/internal/constants"
)

// InsufficientDataMessage is shown to the user in place of an empty chart.
const InsufficientDataMessage = "There are insufficient data to construct the graph."

var (
	// ErrInsufficientData is returned when no day has a saved level to chart.
	ErrInsufficientData = errors.New("history: insufficient data to construct the graph")

	// ErrInvalidRequest is returned for a malformed record request.
	ErrInvalidRequest = errors.New("history: invalid record request")
)

// Request asks the store to record one finished block.
type Request struct {
	// Date is the day key, dd/mm/yyyy in local time.
	Date string `json:"date"`

	// Save marks the run as passed; only saved runs contribute a level.
	Save bool `json:"save"`

	// Level is the level the block was played at.
	Level int `json:"level"`

	// PlayedAt orders runs within a day. Zero means now.
	PlayedAt time.Time `json:"played_at,omitempty"`
}

// Run is one recorded block.
type Run struct {
	ID       string    `json:"id"`
	Date     string    `json:"date"`
	PlayedAt time.Time `json:"played_at"`
	Saved    bool      `json:"saved"`
	Level    int       `json:"level"`
}

// Day aggregates the runs of one calendar day.
type Day struct {
	Date string `json:"date"`

	// Runs counts every finalized block of the day, saved or not.
	Runs int `json:"runs"`

	// Levels lists the levels of saved runs in play order.
	Levels []int `json:"levels"`
}

// Store persists run history.
type Store interface {
	// Record appends a run and returns it with its assigned ID.
	Record(ctx context.Context, req Request) (Run, error)

	// Day returns the entry for a date key. A day with no runs is returned
	// with zero Runs and no error.
	Day(ctx context.Context, date string) (Day, error)

	// Days returns every day with at least one run, oldest first.
	Days(ctx context.Context) ([]Day, error)

	// Runs returns every run, oldest first.
	Runs(ctx context.Context) ([]Run, error)

	// Restore inserts runs. Without merge the store is emptied first; with
	// merge, runs whose ID already exists are skipped. It returns the number
	// of runs inserted.
	Restore(ctx context.Context, runs []Run, merge bool) (int, error)

	// Close releases the store's resources.
	Close() error
}

// DateKey formats t as the day key used by the store.
func DateKey(t time.Time) string {
	return t.Local().Format(constants.DateLayout)
}

// Validate checks a record request.
func (r Request) Validate() error {
	if _, err := time.ParseInLocation(constants.DateLayout, r.Date, time.Local); err != nil {
		return fmt.Errorf("%w: date %q is not dd/mm/yyyy", ErrInvalidRequest, r.Date)
	}
	if r.Level < constants.MinLevel || r.Level > constants.MaxLevel {
		return fmt.Errorf("%w: level %d out of range %d..%d", ErrInvalidRequest, r.Level, constants.MinLevel, constants.MaxLevel)
	}
	return nil
}

// Progress is the share of the daily goal reached, as a percentage in [0,100].
func Progress(runs int) float64 {
	p := float64(runs) / float64(constants.DailyGoal) * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// Point is one day of the chart series.
type Point struct {
	Date string  `json:"date"`
	Max  int     `json:"max"`
	Avg  float64 `json:"avg"`
	Min  int     `json:"min"`
}

// CollectSeries returns max, average and min saved level for each day with
// at least one saved run. It returns ErrInsufficientData when there is none.
func CollectSeries(days []Day) ([]Point, error) {
	var points []Point
	for _, d := range days {
		if len(d.Levels) == 0 {
			continue
		}
		p := Point{Date: d.Date, Max: d.Levels[0], Min: d.Levels[0]}
		sum := 0
		for _, lvl := range d.Levels {
			sum += lvl
			if lvl > p.Max {
				p.Max = lvl
			}
			if lvl < p.Min {
				p.Min = lvl
			}
		}
		p.Avg = float64(sum) / float64(len(d.Levels))
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, ErrInsufficientData
	}
	return points, nil
}

func sortRuns(runs []Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].PlayedAt.Before(runs[j].PlayedAt)
	})
}

// aggregate folds runs into days, ordered by each day's first run.
func aggregate(runs []Run) []Day {
	sorted := make([]Run, len(runs))
	copy(sorted, runs)
	sortRuns(sorted)

	var days []Day
	index := make(map[string]int)
	for _, r := range sorted {
		i, ok := index[r.Date]
		if !ok {
			i = len(days)
			index[r.Date] = i
			days = append(days, Day{Date: r.Date, Levels: []int{}})
		}
		days[i].Runs++
		if r.Saved {
			days[i].Levels = append(days[i].Levels, r.Level)
		}
	}
	return days
}
