package clock

import "time"

// DismissAfter is how long a fired violation signal stays visible when
// the scorekeeper does not act on it.
const DismissAfter = 5 * time.Second

// Violation is a locally observed shot-clock expiry.  GameClockAt is
// the game clock's interpolated value at the moment the expiry was
// first seen on this device; it is what a retroactive pause sends to
// the server, compensating for the gap between the real-world whistle
// and the next round trip.
type Violation struct {
	FiredAt     time.Time
	GameClockAt float64
}

// ViolationWatcher arms exactly one violation signal per shot-clock
// period.  After firing it stays disarmed until Rearm is called, which
// the session controller does only on an explicit shot-clock reset, so
// a single expiry can never produce a second alert.
type ViolationWatcher struct {
	armed  bool
	active *Violation
}

// NewViolationWatcher returns an armed watcher.
func NewViolationWatcher() *ViolationWatcher {
	return &ViolationWatcher{armed: true}
}

// Observe checks the interpolated shot clock at now and fires the
// violation when an armed watcher sees it reach zero while running.
// It returns the active violation, if any.
func (w *ViolationWatcher) Observe(shot, game Snapshot, now time.Time) *Violation {
	if w.armed && shot.Expired(now) {
		w.armed = false
		w.active = &Violation{FiredAt: now, GameClockAt: game.Remaining(now)}
	}
	return w.ActiveAt(now)
}

// ActiveAt returns the fired violation, or nil once the dismiss window
// has elapsed or the signal was dismissed explicitly.
func (w *ViolationWatcher) ActiveAt(now time.Time) *Violation {
	if w.active == nil {
		return nil
	}
	if now.Sub(w.active.FiredAt) >= DismissAfter {
		w.active = nil
	}
	return w.active
}

// Dismiss clears the visible signal without rearming the watcher.
func (w *ViolationWatcher) Dismiss() { w.active = nil }

// Rearm makes the watcher eligible to fire again.  Call only after the
// shot clock has been explicitly reset.
func (w *ViolationWatcher) Rearm() {
	w.armed = true
	w.active = nil
}
