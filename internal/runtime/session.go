package runtime

import "github.com/aretw0/debot/pkg/domain"

// Session owns the cached account snapshot of the debot.
// Only state-bearing debot calls replace it.
type Session struct {
	state domain.AccountState
}

// NewSession creates a session holding the given snapshot.
func NewSession(state domain.AccountState) *Session {
	if state == nil {
		state = domain.AccountState{}
	}
	return &Session{state: state}
}

// Snapshot returns the current account snapshot.
func (s *Session) Snapshot() domain.AccountState {
	return s.state
}

// Replace installs a new account snapshot.
func (s *Session) Replace(state domain.AccountState) {
	s.state = state
}
