// Package backup saves the run history to a file and restores it.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvandessel/nback/internal/history"
)

// FilePrefix starts every backup file name.
const FilePrefix = "nback-backup-"

// Snapshot is the payload of a backup file.
type Snapshot struct {
	Version   int           `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
	Runs      []history.Run `json:"runs"`
}

// Options controls how a backup is written.
type Options struct {
	// Compress writes the V2 format (header line + gzip payload).
	Compress bool

	// Now stamps the snapshot. Defaults to time.Now.
	Now func() time.Time
}

// DefaultDir returns <dataDir>/backups.
func DefaultDir(dataDir string) string {
	return filepath.Join(dataDir, "backups")
}

// Backup exports every run from the store to path.
func Backup(ctx context.Context, store history.Store, path string, opts Options) (*Snapshot, error) {
	runs, err := store.Runs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	if runs == nil {
		runs = []history.Run{}
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	snap := &Snapshot{
		Version:   FormatV1,
		CreatedAt: now().UTC(),
		Runs:      runs,
	}

	if opts.Compress {
		snap.Version = FormatV2
		if err := WriteV2(path, snap); err != nil {
			return nil, err
		}
		return snap, nil
	}

	if err := writeV1(path, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func writeV1(path string, snap *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// Load reads a backup file in either format.
func Load(path string) (*Snapshot, error) {
	version, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	if version == FormatV2 {
		return ReadV2(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	var snap Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if snap.Version != FormatV1 {
		return nil, fmt.Errorf("unsupported backup version: %d", snap.Version)
	}
	return &snap, nil
}

// RestoreMode controls how restore handles existing data.
type RestoreMode string

const (
	// RestoreMerge skips runs that already exist (default).
	RestoreMerge RestoreMode = "merge"
	// RestoreReplace clears the history before restoring.
	RestoreReplace RestoreMode = "replace"
)

// ParseRestoreMode accepts "merge" or "replace".
func ParseRestoreMode(s string) (RestoreMode, error) {
	switch RestoreMode(strings.ToLower(s)) {
	case RestoreMerge:
		return RestoreMerge, nil
	case RestoreReplace:
		return RestoreReplace, nil
	}
	return "", fmt.Errorf("invalid restore mode %q (valid: merge, replace)", s)
}

// RestoreResult contains statistics about the restore operation.
type RestoreResult struct {
	RunsRestored int `json:"runs_restored"`
	RunsSkipped  int `json:"runs_skipped"`
}

// Restore imports runs from a backup file into the store. Runs with an
// invalid date or level are skipped.
func Restore(ctx context.Context, store history.Store, path string, mode RestoreMode) (*RestoreResult, error) {
	snap, err := Load(path)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{}
	valid := make([]history.Run, 0, len(snap.Runs))
	for _, r := range snap.Runs {
		req := history.Request{Date: r.Date, Save: r.Saved, Level: r.Level}
		if req.Validate() != nil {
			result.RunsSkipped++
			continue
		}
		valid = append(valid, r)
	}

	n, err := store.Restore(ctx, valid, mode != RestoreReplace)
	if err != nil {
		return nil, fmt.Errorf("failed to restore runs: %w", err)
	}
	result.RunsRestored = n
	result.RunsSkipped += len(valid) - n
	return result, nil
}

// GeneratePath creates a timestamped backup filename in dir.
func GeneratePath(dir string, at time.Time, compress bool) string {
	ext := ".json"
	if compress {
		ext = ".json.gz"
	}
	return filepath.Join(dir, FilePrefix+at.Format("20060102-150405")+ext)
}

func isBackupFile(name string) bool {
	return strings.HasPrefix(name, FilePrefix) &&
		(strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".json.gz"))
}
