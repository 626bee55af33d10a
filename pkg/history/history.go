package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"reelgrab/pkg/logger"
	"reelgrab/pkg/models"
)

// DefaultMaxEntries is the retention cap when none is configured.
const DefaultMaxEntries = 200

// Store owns the persisted download history: an ordered list, newest
// first, capped at a maximum count. Every mutation persists the full list
// before returning.
type Store struct {
	path string
	max  int
	mu   sync.Mutex

	records []models.DownloadRecord
	log     logger.Logger
}

// NewStore creates a history store persisting at path. An empty path
// resolves to history.json in the platform data directory. max <= 0 uses
// DefaultMaxEntries.
func NewStore(path string, max int, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if max <= 0 {
		max = DefaultMaxEntries
	}

	if path == "" {
		dataDir, err := dataDirectory()
		if err != nil {
			return nil, fmt.Errorf("failed to get data directory: %w", err)
		}
		path = filepath.Join(dataDir, "history.json")
	} else if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	return &Store{path: path, max: max, log: log}, nil
}

// Load restores the list from disk. Missing or unparsable data yields an
// empty list; corruption is logged, never surfaced.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).Warn("failed to read history, starting empty")
		}
		s.records = nil
		return
	}

	var records []models.DownloadRecord
	if err := json.Unmarshal(content, &records); err != nil {
		s.log.WithError(err).Warn("discarding unparsable history")
		s.records = nil
		return
	}

	s.records = records
	s.log.DebugWithFields("history loaded", map[string]interface{}{
		"entries": len(records),
	})
}

// Add assigns the entry a unique id and the current timestamp, prepends
// it, truncates to the retention cap, and persists the resulting list.
// The stored record is returned.
func (s *Store) Add(entry models.DownloadRecord) (models.DownloadRecord, error) {
	entry.ID = newRecordID()
	entry.DownloadedAt = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.DownloadRecord, 0, len(s.records)+1)
	next = append(next, entry)
	next = append(next, s.records...)
	if len(next) > s.max {
		next = next[:s.max]
	}

	if err := s.persist(next); err != nil {
		return models.DownloadRecord{}, err
	}
	s.records = next

	s.log.InfoWithFields("history entry added", map[string]interface{}{
		"id":      entry.ID,
		"url":     entry.URL,
		"entries": len(next),
	})
	return entry, nil
}

// Remove filters out the record with the given id and persists the
// result. A missing id is a no-op, not an error.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.DownloadRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.ID != id {
			next = append(next, r)
		}
	}
	if len(next) == len(s.records) {
		return nil
	}

	if err := s.persist(next); err != nil {
		return err
	}
	s.records = next
	return nil
}

// Clear empties the list and removes the persisted payload entirely.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	s.records = nil
	s.log.Info("history cleared")
	return nil
}

// Records returns a copy of the current list, newest first.
func (s *Store) Records() []models.DownloadRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DownloadRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of retained records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// persist writes the full list atomically. Callers hold the mutex.
func (s *Store) persist(records []models.DownloadRecord) error {
	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary history file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync history file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close history file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace history file: %w", err)
	}

	return nil
}

// newRecordID combines a millisecond timestamp with a random suffix.
func newRecordID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
}

// dataDirectory returns the per-OS data directory, creating it when missing.
func dataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "reelgrab")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "reelgrab")
	default:
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "reelgrab")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "reelgrab")
		}
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}
