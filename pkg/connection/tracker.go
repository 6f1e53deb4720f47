package connection

import (
	"sync"
	"time"
)

// State is a device's availability.
type State uint8

const (
	// StateUnknown means no exchange has completed yet.
	StateUnknown State = iota

	// StateAvailable means the last exchange succeeded.
	StateAvailable

	// StateUnavailable means the last exchange failed.
	StateUnavailable
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "UNKNOWN"
	case StateAvailable:
		return "AVAILABLE"
	case StateUnavailable:
		return "UNAVAILABLE"
	default:
		return "INVALID"
	}
}

// ChangeFunc is called on every availability transition. err is the failure
// that caused a transition to StateUnavailable and nil otherwise.
type ChangeFunc func(oldState, newState State, err error)

// Tracker derives device availability from exchange outcomes.
type Tracker struct {
	mu sync.Mutex

	state    State
	failures int
	lastErr  error
	backoff  *Backoff
	onChange ChangeFunc
}

// NewTracker creates a tracker. A nil backoff uses the defaults.
func NewTracker(backoff *Backoff) *Tracker {
	if backoff == nil {
		backoff = NewBackoff()
	}
	return &Tracker{backoff: backoff}
}

// OnChange sets the transition callback.
func (t *Tracker) OnChange(fn ChangeFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Success records a successful exchange and resets the backoff.
func (t *Tracker) Success() {
	t.mu.Lock()
	old := t.state
	t.state = StateAvailable
	t.failures = 0
	t.lastErr = nil
	t.backoff.Reset()
	fn := t.onChange
	t.mu.Unlock()

	if fn != nil && old != StateAvailable {
		fn(old, StateAvailable, nil)
	}
}

// Failure records a failed exchange and returns how long to wait before
// the next attempt.
func (t *Tracker) Failure(err error) time.Duration {
	t.mu.Lock()
	old := t.state
	t.state = StateUnavailable
	t.failures++
	t.lastErr = err
	delay := t.backoff.Next()
	fn := t.onChange
	t.mu.Unlock()

	if fn != nil && old != StateUnavailable {
		fn(old, StateUnavailable, err)
	}
	return delay
}

// State returns the current availability.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Available reports whether the last exchange succeeded.
func (t *Tracker) Available() bool {
	return t.State() == StateAvailable
}

// Failures returns the number of consecutive failures.
func (t *Tracker) Failures() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures
}

// LastError returns the most recent failure, or nil after a success.
func (t *Tracker) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}
