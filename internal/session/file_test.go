package session

import (
	"os"
	"testing"
	"time"

	"github.com/nvandessel/nback/internal/level"
	"github.com/nvandessel/nback/internal/scoring"
)

func TestSaveAndLoadResult(t *testing.T) {
	dir := t.TempDir()
	played := time.Date(2026, 3, 4, 19, 0, 0, 0, time.UTC)

	r := Result{
		Verdict: level.Verdict{
			Counters:  scoring.Counters{PosHits: 5, SoundHits: 4, SoundMisses: 1},
			Outcome:   level.Advance,
			Level:     2,
			NextLevel: 3,
			Save:      true,
			Message:   "N is now: 3",
		},
		Settings: Settings{Level: 3, Clues: 5, SoundSet: "Numbers German", Interval: 2500 * time.Millisecond, Feedback: true},
		History:  HistoryRequest{Date: "04/03/2026", Save: true, Level: 2, PlayedAt: played},
	}

	if err := SaveResult(r, dir); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	if _, err := os.Stat(ResultFilePath(dir)); err != nil {
		t.Fatalf("result file not found: %v", err)
	}

	loaded, ok, err := LoadResult(dir)
	if err != nil || !ok {
		t.Fatalf("LoadResult() = ok %v, err %v", ok, err)
	}
	if loaded.Verdict.Outcome != level.Advance {
		t.Errorf("Outcome = %v, want advance", loaded.Verdict.Outcome)
	}
	if loaded.Settings.Level != 3 || loaded.Settings.Interval != 2500*time.Millisecond {
		t.Errorf("Settings = %+v", loaded.Settings)
	}
	if loaded.Verdict.Counters.SoundMisses != 1 {
		t.Errorf("SoundMisses = %d, want 1", loaded.Verdict.Counters.SoundMisses)
	}
	if !loaded.History.PlayedAt.Equal(played) {
		t.Errorf("PlayedAt = %v, want %v", loaded.History.PlayedAt, played)
	}
}

func TestLoadResult_FileNotExist(t *testing.T) {
	_, ok, err := LoadResult(t.TempDir())
	if err != nil {
		t.Fatalf("LoadResult() error = %v", err)
	}
	if ok {
		t.Error("LoadResult() ok = true for an empty directory")
	}
}

func TestLoadResult_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(ResultFilePath(dir), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadResult(dir); err == nil {
		t.Error("LoadResult() should fail on corrupt JSON")
	}
}

func TestRemoveResult(t *testing.T) {
	dir := t.TempDir()
	if err := SaveResult(Result{}, dir); err != nil {
		t.Fatal(err)
	}
	if err := RemoveResult(dir); err != nil {
		t.Fatalf("RemoveResult() error = %v", err)
	}
	if _, err := os.Stat(ResultFilePath(dir)); !os.IsNotExist(err) {
		t.Error("result file still exists after RemoveResult")
	}
	if err := RemoveResult(dir); err != nil {
		t.Errorf("RemoveResult() on missing file = %v", err)
	}
}
