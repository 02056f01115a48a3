package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories runs a test body against every Store implementation.
func storeFactories(t *testing.T) map[string]func() Store {
	t.Helper()
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"sqlite": func() Store {
			s, err := OpenSQLite(t.TempDir())
			require.NoError(t, err)
			return s
		},
	}
}

func TestStore_RecordAndDay(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()

			requests := []Request{
				{Date: "01/03/2026", Save: true, Level: 2, PlayedAt: base},
				{Date: "01/03/2026", Save: false, Level: 3, PlayedAt: base.Add(time.Minute)},
				{Date: "01/03/2026", Save: true, Level: 3, PlayedAt: base.Add(2 * time.Minute)},
			}
			for _, req := range requests {
				run, err := s.Record(ctx, req)
				require.NoError(t, err)
				assert.Len(t, run.ID, 36, "run IDs are UUIDs")
			}

			day, err := s.Day(ctx, "01/03/2026")
			require.NoError(t, err)
			assert.Equal(t, 3, day.Runs)
			assert.Equal(t, []int{2, 3}, day.Levels)

			empty, err := s.Day(ctx, "02/03/2026")
			require.NoError(t, err)
			assert.Equal(t, 0, empty.Runs)
			assert.Empty(t, empty.Levels)
		})
	}
}

func TestStore_DaysOldestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 1, 31, 20, 0, 0, 0, time.UTC)

	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()

			// dd/mm/yyyy keys do not sort lexically; order follows play time.
			_, err := s.Record(ctx, Request{Date: "01/02/2026", Save: true, Level: 4, PlayedAt: base.Add(24 * time.Hour)})
			require.NoError(t, err)
			_, err = s.Record(ctx, Request{Date: "31/01/2026", Save: true, Level: 3, PlayedAt: base})
			require.NoError(t, err)

			days, err := s.Days(ctx)
			require.NoError(t, err)
			require.Len(t, days, 2)
			assert.Equal(t, "31/01/2026", days[0].Date)
			assert.Equal(t, "01/02/2026", days[1].Date)

			points, err := CollectSeries(days)
			require.NoError(t, err)
			assert.Equal(t, 3, points[0].Max)
			assert.Equal(t, 4, points[1].Max)
		})
	}
}

func TestStore_RecordRejectsInvalid(t *testing.T) {
	ctx := context.Background()

	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()

			_, err := s.Record(ctx, Request{Date: "yesterday", Level: 2})
			assert.True(t, errors.Is(err, ErrInvalidRequest))

			runs, err := s.Runs(ctx)
			require.NoError(t, err)
			assert.Empty(t, runs)
		})
	}
}

func TestStore_Restore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()

			existing, err := s.Record(ctx, Request{Date: "01/03/2026", Save: true, Level: 2, PlayedAt: base})
			require.NoError(t, err)

			incoming := []Run{
				existing,
				{ID: "11111111-1111-1111-1111-111111111111", Date: "02/03/2026", PlayedAt: base.Add(24 * time.Hour), Saved: true, Level: 5},
			}

			n, err := s.Restore(ctx, incoming, true)
			require.NoError(t, err)
			assert.Equal(t, 1, n, "merge skips runs already present")

			runs, err := s.Runs(ctx)
			require.NoError(t, err)
			assert.Len(t, runs, 2)

			n, err = s.Restore(ctx, incoming[1:], false)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			runs, err = s.Runs(ctx)
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, 5, runs[0].Level)
			assert.True(t, runs[0].PlayedAt.Equal(base.Add(24*time.Hour)))
		})
	}
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenSQLite(dir)
	require.NoError(t, err)
	_, err = s.Record(ctx, Request{Date: "05/03/2026", Save: true, Level: 6})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(dir)
	require.NoError(t, err)
	defer reopened.Close()

	day, err := reopened.Day(ctx, "05/03/2026")
	require.NoError(t, err)
	assert.Equal(t, 1, day.Runs)
	assert.Equal(t, []int{6}, day.Levels)
}

func TestSQLiteStore_SubSecondOrdering(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err = s.Record(ctx, Request{Date: "01/03/2026", Save: true, Level: 2, PlayedAt: base.Add(time.Second)})
	require.NoError(t, err)
	_, err = s.Record(ctx, Request{Date: "01/03/2026", Save: true, Level: 3, PlayedAt: base.Add(500 * time.Millisecond)})
	require.NoError(t, err)

	day, err := s.Day(ctx, "01/03/2026")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, day.Levels)
}
