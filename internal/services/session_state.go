package services

import "sync"

// SessionState holds the single ActiveContext for one authenticated
// session. The context is only ever replaced whole, so a reader never sees
// a new institution paired with an old role.
//
// Reads of the membership store stay concurrent; commits are serialized
// here. Concurrent resolves are last-write-wins among themselves, but a
// resolve that began before a switch completed must not clobber the
// switch's result, and nothing lands on a closed session.
type SessionState struct {
	mu       sync.Mutex
	current  *ActiveContext
	switches uint64
	closed   bool
}

// NewSessionState creates an empty session state.
func NewSessionState() *SessionState {
	return &SessionState{}
}

// Current returns the held context, or nil before the first resolution.
func (s *SessionState) Current() *ActiveContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// BeginResolve marks the start of a resolution and returns a commit token.
func (s *SessionState) BeginResolve() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.switches
}

// CommitResolve installs a resolution result. It reports false, leaving the
// held context untouched, if the session closed or a switch completed after
// BeginResolve.
func (s *SessionState) CommitResolve(token uint64, ctx *ActiveContext) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.switches != token {
		return false
	}
	s.current = ctx
	return true
}

// CommitSwitch installs a switch result and invalidates any in-flight
// resolve tokens. It reports false only if the session already closed.
func (s *SessionState) CommitSwitch(ctx *ActiveContext) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.switches++
	s.current = ctx
	return true
}

// Close tears the session down. Results of in-flight resolves and switches
// are discarded when they try to commit.
func (s *SessionState) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.current = nil
}

// SessionManager owns one SessionState per authenticated user for the
// lifetime of their session.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

// NewSessionManager creates a new SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*SessionState),
	}
}

// Start installs a fresh state for the user, closing any previous one so
// in-flight work from the old session cannot land in the new one.
func (m *SessionManager) Start(userID string) *SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.sessions[userID]; ok {
		prev.Close()
	}
	state := NewSessionState()
	m.sessions[userID] = state
	return state
}

// Get returns the user's session state, if one exists.
func (m *SessionManager) Get(userID string) (*SessionState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.sessions[userID]
	return state, ok
}

// End closes and removes the user's session state.
func (m *SessionManager) End(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.sessions[userID]; ok {
		state.Close()
		delete(m.sessions, userID)
	}
}
