package phase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/scorekeeper/internal/clock"
	"github.com/courtside/scorekeeper/internal/model"
)

var now = time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)

func scheduledGame() *model.Game {
	return &model.Game{
		ID:         1,
		HomeTeamID: 10,
		AwayTeamID: 20,
		Status:     model.StatusScheduled,
		Config:     model.DefaultConfig(),
	}
}

func pausedGame(quarter, home, away int, clockSeconds float64) *model.Game {
	g := scheduledGame()
	g.Status = model.StatusPaused
	g.CurrentQuarter = quarter
	g.HomeScore = home
	g.AwayScore = away
	g.GameClock = clock.Snapshot{Seconds: clockSeconds}
	return g
}

func TestStartSeedsLineupAndClocks(t *testing.T) {
	g := scheduledGame()
	out, err := Apply(g, ActionStart, now)
	require.NoError(t, err)
	assert.True(t, out.SeedLineup)
	assert.Equal(t, model.StatusActive, g.Status)
	assert.Equal(t, 1, g.CurrentQuarter)
	assert.Equal(t, 600.0, g.GameClock.Seconds)
	assert.Equal(t, 24.0, g.ShotClock.Seconds)
	assert.Equal(t, 4, g.HomeTimeouts)
}

func TestStartRequiresScheduled(t *testing.T) {
	g := scheduledGame()
	g.Status = model.StatusActive
	_, err := Apply(g, ActionStart, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPauseAndResume(t *testing.T) {
	g := scheduledGame()
	g.Status = model.StatusActive

	_, err := Apply(g, ActionPause, now)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaused, g.Status)

	_, err = Apply(g, ActionResume, now)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, g.Status)

	// Resume is only legal from paused.
	_, err = Apply(g, ActionResume, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEndPeriodAdvancesQuarterAndResets(t *testing.T) {
	g := pausedGame(1, 20, 18, 0)
	g.HomeFouls = 6
	g.AwayFouls = 4

	out, err := Apply(g, ActionEndPeriod, now)
	require.NoError(t, err)
	assert.False(t, out.OvertimeDecision)
	assert.Equal(t, 2, g.CurrentQuarter)
	assert.Equal(t, model.StatusPaused, g.Status)
	assert.Equal(t, 600.0, g.GameClock.Seconds)
	assert.Equal(t, 0, g.HomeFouls, "team fouls reset each period")
	assert.Equal(t, 0, g.AwayFouls)
}

func TestEndPeriodRequiresPaused(t *testing.T) {
	g := pausedGame(1, 0, 0, 0)
	g.Status = model.StatusActive
	_, err := Apply(g, ActionEndPeriod, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEndPeriodFourthQuarterWithWinnerCompletes(t *testing.T) {
	g := pausedGame(4, 80, 75, 0)
	out, err := Apply(g, ActionEndPeriod, now)
	require.NoError(t, err)
	assert.False(t, out.OvertimeDecision)
	assert.Equal(t, model.StatusCompleted, g.Status)
}

func TestEndPeriodFourthQuarterTiedOffersOvertime(t *testing.T) {
	g := pausedGame(4, 70, 70, 0)
	out, err := Apply(g, ActionEndPeriod, now)
	require.NoError(t, err)
	assert.True(t, out.OvertimeDecision)
	assert.Equal(t, model.StatusPaused, g.Status, "game stays paused for the decision")
	assert.Equal(t, 4, g.CurrentQuarter)
}

func TestEndPeriodTiedWithTimeRemainingIsRejected(t *testing.T) {
	g := pausedGame(4, 70, 70, 30)
	_, err := Apply(g, ActionEndPeriod, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStartOvertime(t *testing.T) {
	g := pausedGame(4, 70, 70, 0)
	_, err := Apply(g, ActionStartOvertime, now)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, g.Status)
	assert.Equal(t, 5, g.CurrentQuarter)
	assert.Equal(t, 300.0, g.GameClock.Seconds, "overtime uses its own period length")
	assert.Equal(t, 0, g.HomeFouls)
}

func TestStartOvertimeRequiresFourthQuarterEnded(t *testing.T) {
	g := pausedGame(3, 50, 50, 0)
	_, err := Apply(g, ActionStartOvertime, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSecondOvertimeTieOffersDecisionAgain(t *testing.T) {
	g := pausedGame(5, 78, 78, 0)
	out, err := Apply(g, ActionEndPeriod, now)
	require.NoError(t, err)
	assert.True(t, out.OvertimeDecision)
}

func TestEndAsTieAndForceEndComplete(t *testing.T) {
	for _, action := range []Action{ActionEndAsTie, ActionForceEnd} {
		g := pausedGame(4, 70, 70, 0)
		_, err := Apply(g, action, now)
		require.NoError(t, err, action)
		assert.Equal(t, model.StatusCompleted, g.Status, action)
	}

	g := pausedGame(4, 70, 70, 0)
	g.Status = model.StatusCompleted
	_, err := Apply(g, ActionForceEnd, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUnknownActionIsRejected(t *testing.T) {
	g := scheduledGame()
	_, err := Apply(g, Action("RESTART"), now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOvertimeRequired(t *testing.T) {
	g := pausedGame(4, 70, 70, 0)
	assert.True(t, OvertimeRequired(g, now))

	g = pausedGame(3, 70, 70, 0)
	assert.False(t, OvertimeRequired(g, now), "not before the fourth quarter")

	g = pausedGame(4, 70, 68, 0)
	assert.False(t, OvertimeRequired(g, now), "not with a winner")

	g = pausedGame(4, 70, 70, 12)
	assert.False(t, OvertimeRequired(g, now), "not with time remaining")
}

func TestRecordable(t *testing.T) {
	assert.True(t, Recordable(model.StatusActive))
	assert.True(t, Recordable(model.StatusPaused))
	assert.False(t, Recordable(model.StatusScheduled))
	assert.False(t, Recordable(model.StatusCompleted))
}
