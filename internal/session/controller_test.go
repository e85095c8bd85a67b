package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/scorekeeper/internal/clock"
	"github.com/courtside/scorekeeper/internal/model"
	"github.com/courtside/scorekeeper/internal/rules"
)

func TestOfferAssistExcludesScorer(t *testing.T) {
	c := NewController()
	ok := c.OfferAssist(1, 7, 10, 20, 3, []uint64{7, 8, 9})
	require.True(t, ok)

	p := c.Prompt()
	require.NotNil(t, p)
	assert.Equal(t, PromptAssist, p.Kind)
	assert.Equal(t, []uint64{8, 9}, p.Candidates)
	assert.Equal(t, 3, p.ShotValue)
}

func TestOfferAssistWithNoCandidates(t *testing.T) {
	c := NewController()
	assert.False(t, c.OfferAssist(1, 7, 10, 20, 2, []uint64{7}))
	assert.Nil(t, c.Prompt())
}

func TestSecondTriggerIsSuppressed(t *testing.T) {
	c := NewController()
	require.True(t, c.OfferAssist(1, 7, 10, 20, 2, []uint64{8}))

	// Only one prompt per session: a new triggering event is dropped
	// while one is outstanding.
	assert.False(t, c.OfferRebound(1, 9, 10, 20, []uint64{8, 9}))

	p := c.Prompt()
	require.NotNil(t, p)
	assert.Equal(t, PromptAssist, p.Kind)
}

func TestResolveClearsPrompt(t *testing.T) {
	c := NewController()
	require.True(t, c.OfferRebound(1, 7, 10, 20, []uint64{8, 9, 4}))

	p := c.Resolve()
	require.NotNil(t, p)
	assert.Equal(t, PromptRebound, p.Kind)
	assert.Nil(t, c.Prompt())
	assert.Nil(t, c.Resolve(), "nothing left to resolve")
}

func TestDismissDropsPromptWithoutWrite(t *testing.T) {
	c := NewController()
	require.True(t, c.OfferAssist(1, 7, 10, 20, 2, []uint64{8}))
	c.Dismiss()
	assert.Nil(t, c.Prompt())

	// The slot is free again.
	assert.True(t, c.OfferRebound(1, 7, 10, 20, []uint64{8}))
}

func TestPromptAutoExpires(t *testing.T) {
	c := NewController()
	c.ttl = 10 * time.Millisecond
	require.True(t, c.OfferAssist(1, 7, 10, 20, 2, []uint64{8}))

	assert.Eventually(t, func() bool { return c.Prompt() == nil },
		time.Second, 5*time.Millisecond, "prompt expires untouched")

	// Expiry freed the slot for the next trigger.
	assert.True(t, c.OfferRebound(1, 7, 10, 20, []uint64{8}))
}

func TestStaleExpiryDoesNotClearNewerPrompt(t *testing.T) {
	c := NewController()
	c.ttl = 20 * time.Millisecond
	require.True(t, c.OfferAssist(1, 7, 10, 20, 2, []uint64{8}))
	c.Dismiss()
	require.True(t, c.OfferRebound(1, 9, 10, 20, []uint64{8}))

	// Wait past the first prompt's deadline; the second must survive
	// until its own.
	time.Sleep(5 * time.Millisecond)
	p := c.Prompt()
	require.NotNil(t, p)
	assert.Equal(t, PromptRebound, p.Kind)
}

func TestFreeThrowSlot(t *testing.T) {
	c := NewController()
	seq := c.BeginFreeThrows(7, rules.Award{Attempts: 2, OneAndOne: true})
	require.NotNil(t, seq)

	out, ok := c.ReportFreeThrow(false)
	require.True(t, ok)
	assert.True(t, out.Done)
	assert.True(t, out.ReboundLive)
	assert.Nil(t, c.FreeThrows(), "slot clears when the sequence ends")

	_, ok = c.ReportFreeThrow(true)
	assert.False(t, ok, "no sequence in progress")
}

func TestBeginFreeThrowsReplacesInProgressSequence(t *testing.T) {
	c := NewController()
	c.BeginFreeThrows(7, rules.Award{Attempts: 2})
	_, ok := c.ReportFreeThrow(true)
	require.True(t, ok)

	seq := c.BeginFreeThrows(9, rules.Award{Attempts: 1})
	require.NotNil(t, seq)
	assert.Equal(t, uint64(9), seq.PlayerID)
	assert.Equal(t, 1, c.FreeThrows().CurrentAttempt)
}

func TestAbandonFreeThrows(t *testing.T) {
	c := NewController()
	c.BeginFreeThrows(7, rules.Award{Attempts: 2})
	c.AbandonFreeThrows()
	assert.Nil(t, c.FreeThrows())
}

func TestObserveClocksFiresViolation(t *testing.T) {
	c := NewController()
	t0 := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)
	shot := clock.Reset(14, true, t0)
	game := clock.Reset(300, true, t0)

	assert.Nil(t, c.ObserveClocks(shot, game, t0.Add(13*time.Second)))

	v := c.ObserveClocks(shot, game, t0.Add(15*time.Second))
	require.NotNil(t, v)
	assert.InDelta(t, 285.0, v.GameClockAt, 1e-9)

	c.DismissViolation()
	assert.Nil(t, c.ObserveClocks(shot, game, t0.Add(16*time.Second)), "disarmed until rearm")

	c.RearmViolation()
	assert.NotNil(t, c.ObserveClocks(shot, game, t0.Add(17*time.Second)))
}

func TestShouldPromptHelpers(t *testing.T) {
	made, missed := true, false
	makeEvent := &model.GameEvent{Type: model.EventShot, Detail: model.EventDetail{Made: &made}}
	missEvent := &model.GameEvent{Type: model.EventShot, Detail: model.EventDetail{Made: &missed}}
	ft := &model.GameEvent{Type: model.EventFreeThrow, Detail: model.EventDetail{Made: &missed}}

	assert.True(t, ShouldPromptAssist(makeEvent))
	assert.False(t, ShouldPromptAssist(missEvent))
	assert.False(t, ShouldPromptAssist(ft), "free throws never prompt an assist")

	assert.True(t, ShouldPromptRebound(missEvent))
	assert.False(t, ShouldPromptRebound(makeEvent))
	assert.False(t, ShouldPromptRebound(ft), "sequencer signals the final-miss rebound")
}
