package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/scorekeeper/internal/model"
)

func collegeCtx(teamFouls int) FoulContext {
	return FoulContext{
		TeamFouls:            teamFouls,
		BonusMode:            model.BonusModeCollege,
		BonusThreshold:       5,
		DoubleBonusThreshold: 10,
	}
}

func TestPersonalFoulBeforeBonus(t *testing.T) {
	a, err := EvaluateFoul(model.FoulPersonal, collegeCtx(3))
	require.NoError(t, err)
	assert.Equal(t, Award{}, a)
}

func TestFoulReachingThresholdOnlyAccumulates(t *testing.T) {
	// The team's 5th foul (four already standing) puts them in the
	// penalty but earns nothing itself.
	a, err := EvaluateFoul(model.FoulPersonal, collegeCtx(4))
	require.NoError(t, err)
	assert.Equal(t, Award{}, a)
}

func TestPersonalFoulCollegeBonusIsOneAndOne(t *testing.T) {
	// Five fouls standing: the 6th is the first to draw a one-and-one.
	a, err := EvaluateFoul(model.FoulPersonal, collegeCtx(5))
	require.NoError(t, err)
	assert.Equal(t, Award{Attempts: 2, OneAndOne: true}, a)
}

func TestPersonalFoulCollegeDoubleBonus(t *testing.T) {
	a, err := EvaluateFoul(model.FoulPersonal, collegeCtx(10))
	require.NoError(t, err)
	assert.Equal(t, Award{Attempts: 2}, a)

	// One short of the double bonus stays a one-and-one.
	a, err = EvaluateFoul(model.FoulPersonal, collegeCtx(9))
	require.NoError(t, err)
	assert.Equal(t, Award{Attempts: 2, OneAndOne: true}, a)
}

func TestPersonalFoulNBABonusSkipsOneAndOne(t *testing.T) {
	ctx := collegeCtx(6)
	ctx.BonusMode = model.BonusModeNBA
	a, err := EvaluateFoul(model.FoulPersonal, ctx)
	require.NoError(t, err)
	assert.Equal(t, Award{Attempts: 2}, a, "NBA bonus goes straight to two shots")
}

func TestShootingFoulMissedShotAwardsShotValue(t *testing.T) {
	for _, value := range []int{2, 3} {
		ctx := collegeCtx(0)
		ctx.ShotValue = value
		a, err := EvaluateFoul(model.FoulShooting, ctx)
		require.NoError(t, err)
		assert.Equal(t, value, a.Attempts)
		assert.False(t, a.OneAndOne)
	}
}

func TestShootingFoulAndOneAwardsSingleAttempt(t *testing.T) {
	// Made three with the foul: one extra free throw, not three.
	ctx := collegeCtx(0)
	ctx.ShotMade = true
	ctx.ShotValue = 3
	a, err := EvaluateFoul(model.FoulShooting, ctx)
	require.NoError(t, err)
	assert.Equal(t, Award{Attempts: 1}, a)
}

func TestShootingFoulMissedShotRejectsBadValue(t *testing.T) {
	ctx := collegeCtx(0)
	ctx.ShotValue = 1
	_, err := EvaluateFoul(model.FoulShooting, ctx)
	assert.Error(t, err)
}

func TestOffensiveFoulIsTurnover(t *testing.T) {
	a, err := EvaluateFoul(model.FoulOffensive, collegeCtx(8))
	require.NoError(t, err)
	assert.Equal(t, Award{Turnover: true}, a)
}

func TestTechnicalAndFlagrantRetainPossession(t *testing.T) {
	cases := []struct {
		kind     model.FoulKind
		attempts int
	}{
		{model.FoulTechnical, 1},
		{model.FoulFlagrant1, 2},
		{model.FoulFlagrant2, 2},
	}
	for _, tc := range cases {
		a, err := EvaluateFoul(tc.kind, collegeCtx(0))
		require.NoError(t, err, tc.kind)
		assert.Equal(t, tc.attempts, a.Attempts, tc.kind)
		assert.True(t, a.RetainPossession, tc.kind)
	}
}

func TestUnknownFoulKindIsAnError(t *testing.T) {
	_, err := EvaluateFoul(model.FoulKind("DOUBLE"), collegeCtx(0))
	assert.Error(t, err)
}

func TestCountsTowardTeamFouls(t *testing.T) {
	assert.True(t, CountsTowardTeamFouls(model.FoulPersonal))
	assert.True(t, CountsTowardTeamFouls(model.FoulShooting))
	assert.True(t, CountsTowardTeamFouls(model.FoulOffensive))
	assert.False(t, CountsTowardTeamFouls(model.FoulTechnical))
}

func TestFoulsOut(t *testing.T) {
	assert.False(t, FoulsOut(4, 5))
	assert.True(t, FoulsOut(5, 5))
	assert.True(t, FoulsOut(6, 5), "the flag is sticky past the limit")
	assert.False(t, FoulsOut(10, 0), "no limit configured")
}
