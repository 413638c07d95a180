package auth

import "sync"

// SessionManager is the process-wide session state for the client pieces.
// It is created once on startup, passed explicitly to whatever needs the
// current token, and fires listeners on every token transition so caches
// keyed by the token can invalidate themselves.
type SessionManager struct {
	mu        sync.RWMutex
	session   *Session
	listeners []func(token string)
}

// NewSessionManager returns a manager with no active session.
func NewSessionManager() *SessionManager {
	return &SessionManager{}
}

// OnChange registers a listener invoked with the new access token after
// every sign-in, sign-out, or refresh. Sign-out delivers an empty token.
func (m *SessionManager) OnChange(fn func(token string)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Set installs a new session and notifies listeners.
func (m *SessionManager) Set(s *Session) {
	m.mu.Lock()
	m.session = s
	listeners := append([]func(string){}, m.listeners...)
	token := ""
	if s != nil {
		token = s.AccessToken
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(token)
	}
}

// Clear tears down the session on sign-out.
func (m *SessionManager) Clear() {
	m.Set(nil)
}

// Current returns the active session, or nil when signed out.
func (m *SessionManager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Token returns the active access token, or "" when signed out.
func (m *SessionManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return ""
	}
	return m.session.AccessToken
}
