package navigation

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL matches the default session token lifetime.
const DefaultSessionTTL = 24 * time.Hour

// sweepInterval bounds how often Create scans for expired sessions.
const sweepInterval = time.Minute

// ErrSessionNotFound is returned for an unknown or expired session ID.
var ErrSessionNotFound = errors.New("session not found")

type session struct {
	mu        sync.Mutex
	state     *State
	expiresAt time.Time
}

func (s *session) expired(now time.Time) bool {
	return !now.Before(s.expiresAt)
}

// Manager holds sessions and applies intents to each one serially. A session
// lives as long as its token and is dropped once it expires.
type Manager struct {
	reducer   *Reducer
	flags     Flags
	ttl       time.Duration
	now       func() time.Time
	sessions  map[string]*session
	lastSweep time.Time
	mu        sync.RWMutex
}

// NewManager creates a Manager whose sessions start with flags and expire
// after ttl. A non-positive ttl uses DefaultSessionTTL.
func NewManager(reducer *Reducer, flags Flags, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		reducer:  reducer,
		flags:    flags,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Create starts a session on the login choice screen.
func (m *Manager) Create() Snapshot {
	state := NewState(uuid.New().String(), m.flags)
	now := m.now()

	m.mu.Lock()
	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweepLocked(now)
	}
	m.sessions[state.ID] = &session{state: state, expiresAt: now.Add(m.ttl)}
	m.mu.Unlock()

	return m.reducer.View(state)
}

// Sweep drops every expired session and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(m.now())
}

func (m *Manager) sweepLocked(now time.Time) int {
	removed := 0
	for id, sess := range m.sessions {
		if sess.expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	m.lastSweep = now
	return removed
}

func (m *Manager) lookup(id string) (*session, error) {
	now := m.now()

	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.expired(now) {
		m.mu.Lock()
		if current, ok := m.sessions[id]; ok && current == sess {
			delete(m.sessions, id)
		}
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Get returns the current view of a session.
func (m *Manager) Get(id string) (Snapshot, error) {
	sess, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return m.reducer.View(sess.state), nil
}

// Apply reduces in against the session and returns the resulting view.
func (m *Manager) Apply(id string, in Intent) (Snapshot, Effects, error) {
	sess, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, Effects{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	eff, err := m.reducer.Reduce(sess.state, in)
	if err != nil {
		return Snapshot{}, Effects{}, err
	}
	return m.reducer.View(sess.state), eff, nil
}

// Count returns the number of sessions held, including expired ones not yet
// swept.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
