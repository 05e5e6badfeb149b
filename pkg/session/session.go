package session

import (
	"instadm/pkg/instagram"
)

// State is the lifecycle state of an authenticated session.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateActive          State = "active"
	StateExpired         State = "expired"
)

// Session is an authenticated connection to Instagram. It is a value handed
// into and returned from every operation; nothing holds it globally. The
// Manager replaces it wholesale on re-authentication rather than refreshing
// it in place.
type Session struct {
	Username string
	Client   *instagram.Client

	state State
}

// State returns the session's lifecycle state.
func (s *Session) State() State {
	return s.state
}

// expire marks the session unusable. A new session must be established via
// the Manager before further API calls.
func (s *Session) expire() {
	s.state = StateExpired
}
