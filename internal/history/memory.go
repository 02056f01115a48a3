package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store in memory for testing and simulation.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []Run
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Record appends a run.
func (s *MemoryStore) Record(ctx context.Context, req Request) (Run, error) {
	if err := req.Validate(); err != nil {
		return Run{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	run := Run{
		ID:       uuid.NewString(),
		Date:     req.Date,
		PlayedAt: req.PlayedAt,
		Saved:    req.Save,
		Level:    req.Level,
	}
	if run.PlayedAt.IsZero() {
		run.PlayedAt = s.now()
	}
	s.runs = append(s.runs, run)
	return run, nil
}

// Day returns the entry for date.
func (s *MemoryStore) Day(ctx context.Context, date string) (Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var day []Run
	for _, r := range s.runs {
		if r.Date == date {
			day = append(day, r)
		}
	}
	if len(day) == 0 {
		return Day{Date: date, Levels: []int{}}, nil
	}
	return aggregate(day)[0], nil
}

// Days returns every day, oldest first.
func (s *MemoryStore) Days(ctx context.Context) ([]Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregate(s.runs), nil
}

// Runs returns a copy of every run, oldest first.
func (s *MemoryStore) Runs(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Run, len(s.runs))
	copy(out, s.runs)
	sortRuns(out)
	return out, nil
}

// Restore inserts runs, replacing or merging with the current contents.
func (s *MemoryStore) Restore(ctx context.Context, runs []Run, merge bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !merge {
		s.runs = nil
	}
	seen := make(map[string]bool, len(s.runs))
	for _, r := range s.runs {
		seen[r.ID] = true
	}

	inserted := 0
	for _, r := range runs {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		s.runs = append(s.runs, r)
		inserted++
	}
	return inserted, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
