// ABOUTME: Session model and manager shared by the data adapter and TUI shell
// ABOUTME: Holds the auth token and display name and broadcasts login/logout transitions

package session

import (
	"sync"
)

// Role is the principal's role as reported by the login endpoint
type Role string

const (
	RoleAdmin Role = "admin"
	RoleOther Role = "other"
)

// ParseRole maps a backend role string onto a Role
func ParseRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleOther
}

// Session is the authenticated principal
type Session struct {
	Token    string
	UserName string
	Role     Role
}

// Authenticated reports whether the session carries a token
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// State is the shell's authentication state
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Manager owns the current session and its persistence.
// It is safe for concurrent use.
type Manager struct {
	store Store

	mu      sync.RWMutex
	current Session
	subs    map[int]chan State
	nextSub int
}

// NewManager creates a manager and loads any persisted session from the store
func NewManager(store Store) (*Manager, error) {
	m := &Manager{
		store: store,
		subs:  make(map[int]chan State),
	}
	s, err := store.Load()
	if err != nil {
		return nil, err
	}
	m.current = s
	return m, nil
}

// Current returns a copy of the current session
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Token returns the bearer token, if any. Implements client.TokenSource.
func (m *Manager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Token, m.current.Token != ""
}

// Authenticated reports whether a token is present
func (m *Manager) Authenticated() bool {
	_, ok := m.Token()
	return ok
}

// State returns the current authentication state
func (m *Manager) State() State {
	if m.Authenticated() {
		return StateAuthenticated
	}
	return StateUnauthenticated
}

// Set persists a new session and notifies subscribers
func (m *Manager) Set(s Session) error {
	if err := m.store.Save(s); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	m.notifyLocked()
	return nil
}

// Clear removes the stored session and notifies subscribers.
// Subscribers are notified even when no session was present.
func (m *Manager) Clear() error {
	err := m.store.Clear()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Session{}
	m.notifyLocked()
	return err
}

// Reload re-reads the store, notifying subscribers only when the token changed
func (m *Manager) Reload() error {
	s, err := m.store.Load()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Token == m.current.Token && s.UserName == m.current.UserName {
		return nil
	}
	m.current = s
	m.notifyLocked()
	return nil
}

// Subscribe returns a channel receiving the state after every transition and
// a function that cancels the subscription. Slow readers only see the latest state.
func (m *Manager) Subscribe() (<-chan State, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan State, 1)
	m.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// notifyLocked must be called with mu held
func (m *Manager) notifyLocked() {
	state := StateUnauthenticated
	if m.current.Authenticated() {
		state = StateAuthenticated
	}
	for _, ch := range m.subs {
		select {
		case ch <- state:
		default:
			// Replace the stale pending state
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}
