package headersession

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MemoryStore implements Store using in-memory storage. Intended for
// development and tests; sessions do not survive process restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	ticker   *time.Ticker
	done     chan struct{}
}

// NewMemoryStore creates an in-memory session store. ttl is the lifetime
// given to sessions the store creates itself; cleanupInterval controls
// background removal of expired sessions (0 disables it).
func NewMemoryStore(ttl, cleanupInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}

	if cleanupInterval > 0 {
		store.ticker = time.NewTicker(cleanupInterval)
		go store.cleanupLoop()
	}

	return store
}

// Get retrieves the session under key, creating one when createIfAbsent
// is set and no live session exists.
func (m *MemoryStore) Get(ctx context.Context, key string, createIfAbsent bool) (*Session, error) {
	if key == "" {
		return nil, ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[key]
	if exists && session.IsExpired() {
		delete(m.sessions, key)
		if !createIfAbsent {
			return nil, ErrSessionExpired
		}
		exists = false
	}

	if !exists {
		if !createIfAbsent {
			return nil, ErrSessionNotFound
		}
		session = NewSession(key, m.ttl)
		m.sessions[key] = copySession(session)
		return session, nil
	}

	out := copySession(session)
	out.IsNew = false
	return out, nil
}

// Save persists the session under its key.
func (m *MemoryStore) Save(ctx context.Context, session *Session) error {
	if session == nil || session.Key == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.Key] = copySession(session)
	return nil
}

// Delete removes the session stored under key.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, key)
	return nil
}

// DeleteExpired removes all expired sessions.
func (m *MemoryStore) DeleteExpired(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, session := range m.sessions {
		if now.After(session.ExpiresAt) {
			delete(m.sessions, key)
		}
	}

	return nil
}

// Len returns the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the cleanup goroutine.
func (m *MemoryStore) Close() error {
	if m.ticker != nil {
		m.ticker.Stop()
		close(m.done)
	}
	return nil
}

func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			_ = m.DeleteExpired(context.Background())
		case <-m.done:
			return
		}
	}
}

// copySession returns a deep-enough copy so callers cannot mutate stored
// state without going through Save.
func copySession(session *Session) *Session {
	out := *session
	if session.Data != nil {
		out.Data = make(map[string]any, len(session.Data))
		maps.Copy(out.Data, session.Data)
	}
	return &out
}
