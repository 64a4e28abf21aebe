package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/burstline/core/pkg/logger"
	"github.com/burstline/core/pkg/models"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	s, err := New(path, "secret", logger.New("test"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, path
}

func entryAt(sessionID int64, status string, ts time.Time) models.HistoryEntry {
	e := models.NewHistoryEntry(status, sessionID, "user", "http://example.com", 3, 5)
	e.Timestamp = ts
	return e
}

func TestStore_AppendDedupBySession(t *testing.T) {
	s, _ := newTestStore(t)
	now := time.Now().UTC()

	early := entryAt(1, models.StatusStopped, now)
	late := entryAt(1, models.StatusCompleted, now.Add(time.Second))

	if err := s.Append(early); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Append(late); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	entries := s.List()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after dedup, got %d", len(entries))
	}
	if entries[0].Status != models.StatusCompleted {
		t.Errorf("later entry should win, got status %q", entries[0].Status)
	}

	// An older write for the same session never displaces a newer one.
	if err := s.Append(early); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	entries = s.List()
	if len(entries) != 1 || entries[0].Status != models.StatusCompleted {
		t.Errorf("older entry displaced newer one: %+v", entries)
	}
}

func TestStore_NewestFirstAndCap(t *testing.T) {
	s, _ := newTestStore(t)
	now := time.Now().UTC()

	var batch []models.HistoryEntry
	for i := 0; i < maxEntries+25; i++ {
		batch = append(batch, entryAt(int64(i+1), models.StatusCompleted, now.Add(time.Duration(i)*time.Second)))
	}
	if err := s.SaveAll(batch); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}

	entries := s.List()
	if len(entries) != maxEntries {
		t.Fatalf("expected %d entries after cap, got %d", maxEntries, len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.After(entries[i-1].Timestamp) {
			t.Fatalf("entries not newest-first at index %d", i)
		}
	}
	// The oldest entries are the ones evicted.
	last := entries[len(entries)-1]
	if last.SessionID != 26 {
		t.Errorf("oldest surviving entry session = %d, want 26", last.SessionID)
	}
}

func TestStore_ReloadAfterRestart(t *testing.T) {
	s, path := newTestStore(t)
	now := time.Now().UTC()

	if err := s.Append(entryAt(1, models.StatusCompleted, now)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Append(entryAt(2, models.StatusStopped, now.Add(time.Second))); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	reloaded, err := New(path, "secret", logger.New("test"))
	if err != nil {
		t.Fatalf("New() on existing file error = %v", err)
	}
	entries := reloaded.List()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", len(entries))
	}
	if entries[0].SessionID != 2 {
		t.Errorf("newest-first order lost on reload: %+v", entries)
	}
}

func TestStore_ClearAuthorization(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Append(entryAt(1, models.StatusCompleted, time.Now().UTC())); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := s.Clear("wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Clear() with wrong key error = %v, want ErrUnauthorized", err)
	}
	if len(s.List()) != 1 {
		t.Error("Clear() with wrong key mutated the store")
	}

	if err := s.Clear("secret"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if len(s.List()) != 0 {
		t.Error("Clear() left entries behind")
	}
}

func TestStore_Statistics(t *testing.T) {
	s, _ := newTestStore(t)
	now := time.Now().UTC()

	completed := entryAt(1, models.StatusCompleted, now)
	completed.Count = 5
	stopped := entryAt(2, models.StatusStopped, now.Add(time.Second))
	stopped.Count = 2
	errored := entryAt(3, models.StatusErrored, now.Add(2*time.Second))
	errored.Count = 1

	if err := s.SaveAll([]models.HistoryEntry{completed, stopped, errored}); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}

	stats := s.Statistics()
	if stats.TotalShares != 8 {
		t.Errorf("TotalShares = %d, want 8", stats.TotalShares)
	}
	if stats.CompletedCount != 1 {
		t.Errorf("CompletedCount = %d, want 1", stats.CompletedCount)
	}
	if stats.StoppedCount != 1 {
		t.Errorf("StoppedCount = %d, want 1", stats.StoppedCount)
	}
	if stats.TotalProcesses != 3 {
		t.Errorf("TotalProcesses = %d, want 3", stats.TotalProcesses)
	}
}
