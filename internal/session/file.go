package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// resultFile holds the last completed block's result.
const resultFile = "last-result.json"

// SaveResult persists r to dir so the last verdict can be shown between
// invocations. The directory must already exist.
func SaveResult(r Result, dir string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	path := filepath.Join(dir, resultFile)

	// Write atomically via temp file + rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing result temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming result file: %w", err)
	}
	return nil
}

// LoadResult reads the last saved result from dir. It returns false when
// no block has been completed yet.
func LoadResult(dir string) (Result, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, resultFile))
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, false, nil
		}
		return Result{}, false, fmt.Errorf("reading result: %w", err)
	}

	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, false, fmt.Errorf("unmarshaling result: %w", err)
	}
	return r, true, nil
}

// ResultFilePath returns the path of the saved result in dir.
func ResultFilePath(dir string) string {
	return filepath.Join(dir, resultFile)
}

// RemoveResult deletes the saved result. A missing file is not an error.
func RemoveResult(dir string) error {
	if err := os.Remove(filepath.Join(dir, resultFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing result: %w", err)
	}
	return nil
}
