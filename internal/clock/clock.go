// Package clock implements the server-authoritative time model shared
// by the game clock and the shot clock.  The authoritative state is a
// small snapshot (seconds remaining, started-at, running); every live
// countdown a client shows is a pure function of that snapshot and the
// wall clock, so transient display drift on one device can never
// corrupt the stored value.
package clock

import "time"

// Snapshot is the authoritative state of one clock.  Seconds is the
// remaining time at the instant StartedAt when Running, or simply the
// remaining time when stopped.  StartedAt is nil whenever the clock is
// stopped.
type Snapshot struct {
	Seconds   float64    `json:"seconds"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Running   bool       `json:"running"`
}

// Remaining interpolates the live countdown at the given wall-clock
// instant.  It never returns a negative value and never mutates the
// snapshot, so calling it at any refresh rate yields a monotonically
// non-increasing series between writes.
func (s Snapshot) Remaining(now time.Time) float64 {
	if !s.Running || s.StartedAt == nil {
		if s.Seconds < 0 {
			return 0
		}
		return s.Seconds
	}
	rem := s.Seconds - now.Sub(*s.StartedAt).Seconds()
	if rem < 0 {
		return 0
	}
	return rem
}

// Expired reports whether the running clock has counted down to zero.
func (s Snapshot) Expired(now time.Time) bool {
	return s.Running && s.Remaining(now) == 0
}

// Start returns a running copy of the snapshot anchored at now.  A
// clock that is already running is returned unchanged, which makes a
// duplicate start from a second scorekeeper session harmless.
func (s Snapshot) Start(now time.Time) Snapshot {
	if s.Running && s.StartedAt != nil {
		return s
	}
	t := now
	return Snapshot{Seconds: s.Remaining(now), StartedAt: &t, Running: true}
}

// Pause folds the elapsed time into Seconds and stops the clock.
// Pausing a stopped clock is a no-op.
func (s Snapshot) Pause(now time.Time) Snapshot {
	return Snapshot{Seconds: s.Remaining(now), StartedAt: nil, Running: false}
}

// Reset returns a snapshot holding the given value.  With autoStart the
// countdown begins immediately (new possession, offensive-rebound
// partial reset); without it the value is parked for manual edits.
func Reset(seconds float64, autoStart bool, now time.Time) Snapshot {
	if !autoStart {
		return Snapshot{Seconds: seconds}
	}
	t := now
	return Snapshot{Seconds: seconds, StartedAt: &t, Running: true}
}
