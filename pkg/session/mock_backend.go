package session

import "sync"

// MockBackend implements Backend in memory for testing.
type MockBackend struct {
	mu      sync.Mutex
	session *Session

	// Error injection for testing
	LoadError   error
	SaveError   error
	DeleteError error
}

// NewMockBackend creates an empty in-memory session backend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) Load() (*Session, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, ErrSessionNotFound
	}
	copied := *m.session
	copied.Cookies = append([]Cookie(nil), m.session.Cookies...)
	return &copied, nil
}

func (m *MockBackend) Save(sess *Session) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *sess
	copied.Cookies = append([]Cookie(nil), sess.Cookies...)
	m.session = &copied
	return nil
}

func (m *MockBackend) Delete() error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

// Stored returns the currently persisted session, for assertions.
func (m *MockBackend) Stored() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}
