package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// DBFile is the history database name inside the data directory.
const DBFile = "history.db"

// timeLayout is fixed width so played_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite for persistence.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// OpenSQLite opens or creates the history database at dir/history.db.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFile)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath, now: time.Now}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Record appends a run.
func (s *SQLiteStore) Record(ctx context.Context, req Request) (Run, error) {
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

	if err := insertRun(ctx, s.db, run); err != nil {
		return Run{}, err
	}
	return run, nil
}

func insertRun(ctx context.Context, db *sql.DB, r Run) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO runs (id, day, played_at, saved, level) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Date, r.PlayedAt.UTC().Format(timeLayout), boolToInt(r.Saved), r.Level)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", r.ID, err)
	}
	return nil
}

// Day returns the entry for date.
func (s *SQLiteStore) Day(ctx context.Context, date string) (Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs, err := s.queryRuns(ctx,
		`SELECT id, day, played_at, saved, level FROM runs WHERE day = ? ORDER BY played_at`, date)
	if err != nil {
		return Day{}, err
	}
	if len(runs) == 0 {
		return Day{Date: date, Levels: []int{}}, nil
	}
	return aggregate(runs)[0], nil
}

// Days returns every day, oldest first.
func (s *SQLiteStore) Days(ctx context.Context) ([]Day, error) {
	runs, err := s.Runs(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate(runs), nil
}

// Runs returns every run, oldest first.
func (s *SQLiteStore) Runs(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRuns(ctx, `SELECT id, day, played_at, saved, level FROM runs ORDER BY played_at`)
}

func (s *SQLiteStore) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			playedAt string
			saved    int
		)
		if err := rows.Scan(&r.ID, &r.Date, &playedAt, &saved, &r.Level); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.PlayedAt, err = time.Parse(timeLayout, playedAt)
		if err != nil {
			return nil, fmt.Errorf("run %s has malformed played_at %q: %w", r.ID, playedAt, err)
		}
		r.Saved = saved != 0
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// Restore inserts runs in one transaction.
func (s *SQLiteStore) Restore(ctx context.Context, runs []Run, merge bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if !merge {
		if _, err := tx.ExecContext(ctx, `DELETE FROM runs`); err != nil {
			return 0, fmt.Errorf("failed to clear runs: %w", err)
		}
	}

	inserted := 0
	for _, r := range runs {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO runs (id, day, played_at, saved, level) VALUES (?, ?, ?, ?, ?)`,
			r.ID, r.Date, r.PlayedAt.UTC().Format(timeLayout), boolToInt(r.Saved), r.Level)
		if err != nil {
			return 0, fmt.Errorf("failed to restore run %s: %w", r.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit restore: %w", err)
	}
	return inserted, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
