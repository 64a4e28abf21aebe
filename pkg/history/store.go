package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/burstline/core/pkg/logger"
	"github.com/burstline/core/pkg/models"
)

// ErrUnauthorized is returned when a clear call carries the wrong access key.
var ErrUnauthorized = errors.New("invalid access key")

// maxEntries bounds the store; oldest entries are evicted once exceeded.
const maxEntries = 1000

// Store is the durable history of finished, stopped and failed jobs. At most
// one entry per session survives (later timestamp wins), entries are kept
// newest-first, and every mutation rewrites the backing document in full
// before returning.
type Store struct {
	mu       sync.Mutex
	path     string
	clearKey string
	entries  []models.HistoryEntry
	logger   *logger.Logger
}

// New opens the store at path, restoring whatever was last persisted.
func New(path, clearKey string, log *logger.Logger) (*Store, error) {
	s := &Store{
		path:     path,
		clearKey: clearKey,
		logger:   log,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	log.Info().
		Str("action", "history_loaded").
		Str("path", path).
		Int("entries", len(s.entries)).
		Msg("History store loaded")
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read history file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("unmarshal history: %w", err)
	}
	s.entries = compact(entries)
	return nil
}

// Append merges the entry into the store and persists synchronously. If an
// entry for the same session already exists, the later timestamp wins; the
// earlier one is discarded.
func (s *Store) Append(entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.merge(entry)
	s.entries = compact(s.entries)
	return s.persist()
}

// SaveAll merges a batch of entries and persists once.
func (s *Store) SaveAll(entries []models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		s.merge(entry)
	}
	s.entries = compact(s.entries)
	return s.persist()
}

func (s *Store) merge(entry models.HistoryEntry) {
	for i, existing := range s.entries {
		if existing.SessionID != entry.SessionID {
			continue
		}
		if entry.Timestamp.After(existing.Timestamp) {
			s.entries[i] = entry
		}
		return
	}
	s.entries = append(s.entries, entry)
}

// List returns the entries newest-first.
func (s *Store) List() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clear empties the store. The access key must match the configured
// clear secret; nothing is mutated otherwise.
func (s *Store) Clear(accessKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if accessKey != s.clearKey {
		return ErrUnauthorized
	}
	s.entries = nil
	return s.persist()
}

// Statistics scans the full store. No incremental counters are kept; the
// store is capped so the scan stays cheap.
func (s *Store) Statistics() models.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.Statistics{TotalProcesses: len(s.entries)}
	for _, entry := range s.entries {
		stats.TotalShares += entry.Count
		if entry.Completed {
			stats.CompletedCount++
		}
		if entry.Status == models.StatusStopped {
			stats.StoppedCount++
		}
	}
	return stats
}

func (s *Store) persist() error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}

	entries := s.entries
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}

// compact sorts newest-first and truncates to the retention cap.
func compact(entries []models.HistoryEntry) []models.HistoryEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	return entries
}
