package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFreeThrowSequenceNeedsAttempts(t *testing.T) {
	assert.Nil(t, NewFreeThrowSequence(7, Award{Turnover: true}))

	seq := NewFreeThrowSequence(7, Award{Attempts: 2})
	require.NotNil(t, seq)
	assert.Equal(t, uint64(7), seq.PlayerID)
	assert.Equal(t, 1, seq.CurrentAttempt)
	assert.Empty(t, seq.Results)
}

func TestOneAndOneMissedFrontEndEndsSequence(t *testing.T) {
	seq := NewFreeThrowSequence(7, Award{Attempts: 2, OneAndOne: true})
	out := seq.ReportAttempt(false)
	assert.True(t, out.Done)
	assert.True(t, out.ReboundLive, "the ball is live off the missed front end")
	assert.Len(t, seq.Results, 1)
	assert.True(t, seq.Done())
}

func TestOneAndOneMadeFrontEndContinues(t *testing.T) {
	seq := NewFreeThrowSequence(7, Award{Attempts: 2, OneAndOne: true})
	out := seq.ReportAttempt(true)
	assert.False(t, out.Done)
	require.False(t, seq.Done())

	out = seq.ReportAttempt(true)
	assert.True(t, out.Done)
	assert.False(t, out.ReboundLive)
	assert.Equal(t, []bool{true, true}, seq.Results)
}

func TestTwoShotSequenceRunsToCompletion(t *testing.T) {
	seq := NewFreeThrowSequence(7, Award{Attempts: 2})
	out := seq.ReportAttempt(false)
	assert.False(t, out.Done, "a plain two-shot award always takes both attempts")

	out = seq.ReportAttempt(true)
	assert.True(t, out.Done)
	assert.False(t, out.ReboundLive, "made final attempt leaves no live rebound")
	assert.Len(t, seq.Results, 2)
}

func TestFinalMissSignalsLiveRebound(t *testing.T) {
	seq := NewFreeThrowSequence(7, Award{Attempts: 3})
	seq.ReportAttempt(true)
	seq.ReportAttempt(false)
	out := seq.ReportAttempt(false)
	assert.True(t, out.Done)
	assert.True(t, out.ReboundLive)
	assert.Equal(t, []bool{true, false, false}, seq.Results)
}

func TestReportOnFinishedSequenceIsNoOp(t *testing.T) {
	seq := NewFreeThrowSequence(7, Award{Attempts: 1})
	seq.ReportAttempt(true)
	out := seq.ReportAttempt(false)
	assert.True(t, out.Done)
	assert.False(t, out.ReboundLive)
	assert.Len(t, seq.Results, 1)
}
