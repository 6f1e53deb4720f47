package connection

import (
	"errors"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	t.Run("DefaultSequence", func(t *testing.T) {
		b := NewBackoff()

		expected := []time.Duration{
			5 * time.Second,
			10 * time.Second,
			20 * time.Second,
			40 * time.Second,
			80 * time.Second,
			160 * time.Second,
			5 * time.Minute,
			5 * time.Minute,
		}

		for i, exp := range expected {
			base := b.Current()
			_ = b.Next()
			if base != exp {
				t.Errorf("attempt %d: base = %v, want %v", i, base, exp)
			}
		}
	})

	t.Run("JitterBounds", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			b := NewBackoff()
			d := b.Next()
			if d < InitialBackoff || d > InitialBackoff+InitialBackoff/10 {
				t.Fatalf("delay %v outside [5s, 5.5s]", d)
			}
		}
	})

	t.Run("NoJitter", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{Initial: time.Second, Max: 3 * time.Second, Jitter: -1})
		got := []time.Duration{b.Next(), b.Next(), b.Next()}
		want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("delay %d = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("Reset", func(t *testing.T) {
		b := NewBackoff()
		b.Next()
		b.Next()
		if b.Attempts() != 2 {
			t.Errorf("Attempts() = %d, want 2", b.Attempts())
		}

		b.Reset()
		if b.Attempts() != 0 {
			t.Errorf("Attempts() after reset = %d, want 0", b.Attempts())
		}
		if b.Current() != InitialBackoff {
			t.Errorf("Current() after reset = %v, want %v", b.Current(), InitialBackoff)
		}
	})

	t.Run("MaxBelowInitial", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{Initial: 10 * time.Second, Max: time.Second})
		b.Next()
		if b.Current() != 10*time.Second {
			t.Errorf("Current() = %v, want 10s", b.Current())
		}
	})
}

func TestTracker(t *testing.T) {
	t.Run("Transitions", func(t *testing.T) {
		tr := NewTracker(NewBackoffWithConfig(BackoffConfig{Initial: time.Second, Jitter: -1}))

		type change struct {
			from, to State
			err      error
		}
		var changes []change
		tr.OnChange(func(from, to State, err error) {
			changes = append(changes, change{from, to, err})
		})

		if tr.State() != StateUnknown {
			t.Fatalf("initial state = %v", tr.State())
		}

		tr.Success()
		tr.Success()

		boom := errors.New("boom")
		if d := tr.Failure(boom); d != time.Second {
			t.Errorf("first failure delay = %v, want 1s", d)
		}
		if d := tr.Failure(boom); d != 2*time.Second {
			t.Errorf("second failure delay = %v, want 2s", d)
		}
		if tr.Failures() != 2 {
			t.Errorf("Failures() = %d, want 2", tr.Failures())
		}
		if !errors.Is(tr.LastError(), boom) {
			t.Errorf("LastError() = %v", tr.LastError())
		}

		tr.Success()
		if !tr.Available() || tr.Failures() != 0 || tr.LastError() != nil {
			t.Errorf("success did not clear failure state")
		}
		if d := tr.Failure(boom); d != time.Second {
			t.Errorf("delay after recovery = %v, want 1s", d)
		}

		want := []change{
			{StateUnknown, StateAvailable, nil},
			{StateAvailable, StateUnavailable, boom},
			{StateUnavailable, StateAvailable, nil},
			{StateAvailable, StateUnavailable, boom},
		}
		if len(changes) != len(want) {
			t.Fatalf("got %d changes, want %d: %v", len(changes), len(want), changes)
		}
		for i := range want {
			if changes[i] != want[i] {
				t.Errorf("change %d = %v, want %v", i, changes[i], want[i])
			}
		}
	})

	t.Run("FailureFromUnknown", func(t *testing.T) {
		tr := NewTracker(nil)
		var got State
		tr.OnChange(func(_, to State, _ error) { got = to })
		tr.Failure(errors.New("refused"))
		if got != StateUnavailable {
			t.Errorf("callback state = %v", got)
		}
	})
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateUnknown:     "UNKNOWN",
		StateAvailable:   "AVAILABLE",
		StateUnavailable: "UNAVAILABLE",
		State(9):         "INVALID",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
