package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)

func TestRemainingStoppedClock(t *testing.T) {
	s := Snapshot{Seconds: 42.5}
	assert.Equal(t, 42.5, s.Remaining(t0))
	assert.Equal(t, 42.5, s.Remaining(t0.Add(time.Hour)), "a stopped clock does not tick")
}

func TestRemainingInterpolates(t *testing.T) {
	s := Reset(120, true, t0)
	assert.Equal(t, 120.0, s.Remaining(t0))
	assert.InDelta(t, 119.0, s.Remaining(t0.Add(time.Second)), 1e-9)
	assert.InDelta(t, 90.5, s.Remaining(t0.Add(29500*time.Millisecond)), 1e-9)
}

func TestRemainingMonotonicNonIncreasing(t *testing.T) {
	s := Reset(30, true, t0)
	prev := s.Remaining(t0)
	// Irregular sampling, as from a display loop with uneven frame times.
	for _, offset := range []time.Duration{
		13 * time.Millisecond, time.Second, 1700 * time.Millisecond,
		5 * time.Second, 29 * time.Second, 31 * time.Second, 2 * time.Minute,
	} {
		cur := s.Remaining(t0.Add(offset))
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestRemainingClampsAtZero(t *testing.T) {
	// 14 on the shot clock, 15 simulated seconds of elapsed time.
	s := Reset(14, true, t0)
	after := t0.Add(15 * time.Second)
	assert.Equal(t, 0.0, s.Remaining(after), "expired clock reads zero, never negative")
	assert.True(t, s.Expired(after))
}

func TestStartIsIdempotent(t *testing.T) {
	s := Snapshot{Seconds: 600}
	running := s.Start(t0)
	require.True(t, running.Running)
	require.NotNil(t, running.StartedAt)

	// A duplicate start two seconds later must not re-anchor the clock.
	again := running.Start(t0.Add(2 * time.Second))
	assert.Equal(t, running, again)
	assert.InDelta(t, 595.0, again.Remaining(t0.Add(5*time.Second)), 1e-9)
}

func TestPauseFoldsElapsedTime(t *testing.T) {
	s := Reset(600, true, t0)
	paused := s.Pause(t0.Add(90 * time.Second))
	assert.False(t, paused.Running)
	assert.Nil(t, paused.StartedAt)
	assert.InDelta(t, 510.0, paused.Seconds, 1e-9)

	// Pausing again is a no-op.
	assert.Equal(t, paused, paused.Pause(t0.Add(5*time.Minute)))
}

func TestResetWithoutAutoStartParksValue(t *testing.T) {
	s := Reset(24, false, t0)
	assert.False(t, s.Running)
	assert.Equal(t, 24.0, s.Remaining(t0.Add(time.Minute)))
}

func TestExpiredOnlyWhileRunning(t *testing.T) {
	stopped := Snapshot{Seconds: 0}
	assert.False(t, stopped.Expired(t0), "a stopped clock at zero is not a violation")

	running := Reset(5, true, t0)
	assert.False(t, running.Expired(t0.Add(4*time.Second)))
	assert.True(t, running.Expired(t0.Add(5*time.Second)))
}

func TestViolationWatcherFiresOncePerArm(t *testing.T) {
	w := NewViolationWatcher()
	shot := Reset(14, true, t0)
	game := Reset(300, true, t0)

	assert.Nil(t, w.Observe(shot, game, t0.Add(13*time.Second)))

	v := w.Observe(shot, game, t0.Add(15*time.Second))
	require.NotNil(t, v)
	assert.InDelta(t, 285.0, v.GameClockAt, 1e-9, "captures the game clock at first observation")

	// Later observations while disarmed return the same firing, not a
	// new one.
	v2 := w.Observe(shot, game, t0.Add(16*time.Second))
	require.NotNil(t, v2)
	assert.Equal(t, v.FiredAt, v2.FiredAt)
}

func TestViolationWatcherDismissAndRearm(t *testing.T) {
	w := NewViolationWatcher()
	shot := Reset(1, true, t0)
	game := Reset(300, true, t0)

	require.NotNil(t, w.Observe(shot, game, t0.Add(2*time.Second)))
	w.Dismiss()
	assert.Nil(t, w.ActiveAt(t0.Add(3*time.Second)))

	// Still disarmed: the same expiry cannot fire twice.
	assert.Nil(t, w.Observe(shot, game, t0.Add(4*time.Second)))

	// An explicit reset rearms the watcher for the next period.
	w.Rearm()
	fresh := Reset(24, true, t0.Add(10*time.Second))
	assert.Nil(t, w.Observe(fresh, game, t0.Add(20*time.Second)))
	assert.NotNil(t, w.Observe(fresh, game, t0.Add(35*time.Second)))
}

func TestViolationSignalExpiresAfterDismissWindow(t *testing.T) {
	w := NewViolationWatcher()
	shot := Reset(1, true, t0)
	game := Reset(300, true, t0)

	require.NotNil(t, w.Observe(shot, game, t0.Add(2*time.Second)))
	assert.NotNil(t, w.ActiveAt(t0.Add(2*time.Second+DismissAfter-time.Millisecond)))
	assert.Nil(t, w.ActiveAt(t0.Add(2*time.Second+DismissAfter)))
}
