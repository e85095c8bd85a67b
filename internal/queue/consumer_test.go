package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/courtside/scorekeeper/internal/model"
)

func TestFormatLinePlayerShot(t *testing.T) {
	made := true
	pid := uint64(23)
	msg := GameEventMessage{
		GameID:           7,
		Type:             model.EventShot,
		PlayerID:         &pid,
		Quarter:          3,
		GameClockSeconds: 252.8,
		Detail:           model.EventDetail{Made: &made, PointValue: 3},
		HomeScore:        55,
		AwayScore:        52,
	}
	assert.Equal(t, "game 7 Q3 04:12.8 | SHOT player=23 made 3pt | 55-52", formatLine(msg))
}

func TestFormatLineTeamTimeout(t *testing.T) {
	msg := GameEventMessage{
		GameID:           7,
		Type:             model.EventTimeout,
		TeamID:           10,
		Quarter:          1,
		GameClockSeconds: 600,
		HomeScore:        0,
		AwayScore:        0,
	}
	assert.Equal(t, "game 7 Q1 10:00.0 | TIMEOUT team=10 | 0-0", formatLine(msg))
}

func TestFormatLineReversalAndFoul(t *testing.T) {
	pid := uint64(4)
	msg := GameEventMessage{
		GameID:           2,
		Type:             model.EventFoul,
		PlayerID:         &pid,
		Quarter:          2,
		GameClockSeconds: 61.25,
		Detail:           model.EventDetail{FoulKind: model.FoulShooting},
		Reversal:         true,
		HomeScore:        30,
		AwayScore:        28,
	}
	assert.Equal(t, "game 2 Q2 01:01.2 | UNDO FOUL player=4 SHOOTING | 30-28", formatLine(msg))
}
