package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/scorekeeper/internal/model"
)

func replayGame() *model.Game {
	return &model.Game{
		ID:             1,
		HomeTeamID:     10,
		AwayTeamID:     20,
		Status:         model.StatusActive,
		CurrentQuarter: 1,
		Config:         model.DefaultConfig(),
	}
}

func replayRoster() []model.Player {
	return []model.Player{
		{ID: 1, TeamID: 10, Starter: true},
		{ID: 2, TeamID: 10, Starter: true},
		{ID: 3, TeamID: 10},
		{ID: 4, TeamID: 20, Starter: true},
		{ID: 5, TeamID: 20, Starter: true},
	}
}

func TestReplayAccumulatesUnreversedEvents(t *testing.T) {
	g := replayGame()
	events := []model.GameEvent{
		*withQuarter(shotEvent(1, true, 3), 10, 1),
		*withQuarter(shotEvent(4, true, 2), 20, 1),
		{PlayerID: idPtr(1), TeamID: 10, Type: model.EventAssist, Quarter: 1},
		{PlayerID: idPtr(4), TeamID: 20, Type: model.EventFoul, Quarter: 1,
			Detail: model.EventDetail{FoulKind: model.FoulPersonal}},
	}
	res := Replay(g, replayRoster(), events)

	assert.Equal(t, 3, res.HomeScore)
	assert.Equal(t, 2, res.AwayScore)
	assert.Equal(t, 0, res.HomeFouls)
	assert.Equal(t, 1, res.AwayFouls)

	p1 := res.Stats[1]
	require.NotNil(t, p1)
	assert.Equal(t, 3, p1.Points)
	assert.Equal(t, 1, p1.FGMade)
	assert.Equal(t, 1, p1.FGAttempts)
	assert.Equal(t, 1, p1.Assists)

	p4 := res.Stats[4]
	require.NotNil(t, p4)
	assert.Equal(t, 2, p4.Points)
	assert.Equal(t, 1, p4.Fouls)
}

func TestReplaySkipsReversedEvents(t *testing.T) {
	// A made three recorded then reversed leaves the player's points,
	// makes and attempts exactly at their prior values.
	g := replayGame()
	before := Replay(g, replayRoster(), []model.GameEvent{
		*withQuarter(shotEvent(1, true, 2), 10, 1),
	})

	reversedThree := withQuarter(shotEvent(1, true, 3), 10, 1)
	reversedThree.Reversed = true
	after := Replay(g, replayRoster(), []model.GameEvent{
		*withQuarter(shotEvent(1, true, 2), 10, 1),
		*reversedThree,
	})

	assert.Equal(t, before.HomeScore, after.HomeScore)
	assert.Equal(t, before.Stats[1].Points, after.Stats[1].Points)
	assert.Equal(t, before.Stats[1].FGMade, after.Stats[1].FGMade)
	assert.Equal(t, before.Stats[1].FGAttempts, after.Stats[1].FGAttempts)
}

func TestReplayFoulOutIsSticky(t *testing.T) {
	g := replayGame()
	var events []model.GameEvent
	for i := 0; i < 5; i++ {
		events = append(events, model.GameEvent{
			PlayerID: idPtr(1), TeamID: 10, Type: model.EventFoul, Quarter: 1,
			Detail: model.EventDetail{FoulKind: model.FoulPersonal},
		})
	}
	res := Replay(g, replayRoster(), events)
	p1 := res.Stats[1]
	require.NotNil(t, p1)
	assert.Equal(t, 5, p1.Fouls)
	assert.True(t, p1.FouledOut)
	assert.False(t, p1.OnCourt, "fouled out forces off court")
}

func TestReplayTeamFoulsCountCurrentQuarterOnly(t *testing.T) {
	g := replayGame()
	g.CurrentQuarter = 2
	events := []model.GameEvent{
		{PlayerID: idPtr(1), TeamID: 10, Type: model.EventFoul, Quarter: 1,
			Detail: model.EventDetail{FoulKind: model.FoulPersonal}},
		{PlayerID: idPtr(1), TeamID: 10, Type: model.EventFoul, Quarter: 2,
			Detail: model.EventDetail{FoulKind: model.FoulPersonal}},
		{PlayerID: idPtr(1), TeamID: 10, Type: model.EventFoul, Quarter: 2,
			Detail: model.EventDetail{FoulKind: model.FoulTechnical}},
	}
	res := Replay(g, replayRoster(), events)
	assert.Equal(t, 1, res.HomeFouls, "older quarters and technicals excluded")
	assert.Equal(t, 3, res.Stats[1].Fouls, "personal count still includes every foul")
}

func TestReplayTimeouts(t *testing.T) {
	g := replayGame()
	events := []model.GameEvent{
		{TeamID: 10, Type: model.EventTimeout, Quarter: 1},
		{TeamID: 20, Type: model.EventTimeout, Quarter: 1},
		{TeamID: 10, Type: model.EventTimeout, Quarter: 1},
	}
	res := Replay(g, replayRoster(), events)
	assert.Equal(t, g.Config.TimeoutsPerTeam-2, res.HomeTimeouts)
	assert.Equal(t, g.Config.TimeoutsPerTeam-1, res.AwayTimeouts)
}

func TestReplaySubstitutionTracksOnCourt(t *testing.T) {
	g := replayGame()
	events := []model.GameEvent{
		{PlayerID: idPtr(1), TeamID: 10, Type: model.EventSubstitution, Quarter: 1,
			Detail: model.EventDetail{EnteringPlayerID: idPtr(3)}},
		// Player 3 scores after entering; plus-minus credits the lineup
		// on the floor at that moment.
		*withQuarter(shotEvent(3, true, 2), 10, 1),
	}
	res := Replay(g, replayRoster(), events)
	assert.False(t, res.Stats[1].OnCourt)
	assert.True(t, res.Stats[3].OnCourt)
	assert.Equal(t, 2, res.Stats[3].PlusMinus)
	assert.Equal(t, 0, res.Stats[1].PlusMinus, "benched player gains nothing")
	assert.Equal(t, -2, res.Stats[4].PlusMinus)
}

func withQuarter(e *model.GameEvent, teamID uint64, quarter int) *model.GameEvent {
	e.TeamID = teamID
	e.Quarter = quarter
	return e
}
