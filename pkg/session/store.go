package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"reelgrab/pkg/logger"
)

// Backend persists a single serialized session under a fixed key.
type Backend interface {
	// Load returns the persisted session, or ErrSessionNotFound.
	Load() (*Session, error)

	// Save replaces the persisted session wholesale.
	Save(*Session) error

	// Delete removes the persisted session entirely. Absence is not an error.
	Delete() error

	// Name identifies the backend in logs.
	Name() string
}

// Store owns the in-memory session and is its sole writer. Every mutation
// persists before the in-memory state is updated, so a crash in between
// is never observable as a half-applied change.
type Store struct {
	mu       sync.RWMutex
	session  Session
	backends []Backend
	log      logger.Logger
}

// NewStore creates a session store with the default backend chain: system
// keyring first, encrypted file as fallback.
func NewStore(log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	var backends []Backend
	if kr, err := NewKeyringBackend(); err == nil {
		backends = append(backends, kr)
	} else {
		log.WithError(err).Debug("keyring unavailable, falling back to encrypted file")
	}

	configDir, err := configDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	enc, err := NewEncryptedFileBackend(filepath.Join(configDir, "session.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted session backend: %w", err)
	}
	backends = append(backends, enc)

	return NewStoreWithBackends(log, backends...), nil
}

// NewStoreWithBackends creates a store over an explicit backend chain.
func NewStoreWithBackends(log logger.Logger, backends ...Backend) *Store {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Store{backends: backends, log: log}
}

// Load restores the session from the first backend that has one. Missing
// or unparsable data is treated as "no session" and never returned as an
// error.
func (s *Store) Load() {
	for _, b := range s.backends {
		sess, err := b.Load()
		if err == nil && sess != nil {
			s.mu.Lock()
			s.session = *sess
			s.mu.Unlock()
			s.log.DebugWithFields("session restored", map[string]interface{}{
				"backend": b.Name(),
				"cookies": len(sess.Cookies),
			})
			return
		}
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			// Corrupted state fails open to an empty session.
			s.log.WithError(err).WithField("backend", b.Name()).Warn("discarding unreadable session")
		}
	}
}

// Save replaces the whole session. When username is empty it is derived
// from the ds_user_id cookie. The session is persisted before the
// in-memory state becomes authoritative.
func (s *Store) Save(cookies []Cookie, username string) error {
	next := Session{Cookies: cookies, Username: username}
	if next.Username == "" {
		next.Username = next.DerivedUsername()
	}

	var lastErr error
	for _, b := range s.backends {
		if err := b.Save(&next); err != nil {
			lastErr = err
			s.log.WithError(err).WithField("backend", b.Name()).Warn("session save failed, trying next backend")
			continue
		}
		s.mu.Lock()
		s.session = next
		s.mu.Unlock()
		s.log.InfoWithFields("session saved", map[string]interface{}{
			"backend":  b.Name(),
			"cookies":  len(next.Cookies),
			"username": next.Username,
		})
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("failed to persist session: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Clear deletes the persisted session from every backend and resets the
// in-memory state to empty.
func (s *Store) Clear() error {
	var lastErr error
	for _, b := range s.backends {
		if err := b.Delete(); err != nil {
			lastErr = err
			s.log.WithError(err).WithField("backend", b.Name()).Warn("session delete failed")
		}
	}

	s.mu.Lock()
	s.session = Session{}
	s.mu.Unlock()

	if lastErr != nil {
		return fmt.Errorf("failed to clear session: %w", lastErr)
	}
	s.log.Info("session cleared")
	return nil
}

// IsLoggedIn reports whether the current session holds a non-empty
// sessionid cookie.
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsLoggedIn()
}

// Username returns the current session's username, if any.
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Username
}

// Current returns a copy of the in-memory session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Session{Username: s.session.Username}
	out.Cookies = append(out.Cookies, s.session.Cookies...)
	return out
}

// ExportNetscape serializes the current cookie set for transport to the
// backend. The second return is false when no cookies are held.
func (s *Store) ExportNetscape() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.ExportNetscape()
}

// configDir returns the per-OS configuration directory, creating it when
// missing.
func configDir() (string, error) {
	var dir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "Library", "Application Support", "reelgrab")
	case "windows":
		dir = filepath.Join(os.Getenv("APPDATA"), "reelgrab")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			dir = filepath.Join(xdgConfig, "reelgrab")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dir = filepath.Join(home, ".config", "reelgrab")
		}
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}
