// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns them into a local
// play-by-play log.
package queue

import (
	"time"

	"github.com/courtside/scorekeeper/internal/model"
)

// EventQueueName is the durable queue carrying every accepted ledger
// append and reversal.
const EventQueueName = "game.events"

// GameEventMessage is published after each committed ledger write.  It
// carries enough context for downstream consumers (play-by-play feeds,
// notifications, analytics) to act without querying the primary
// database.
type GameEventMessage struct {
	GameID           uint64            `json:"game_id"`
	EventID          uint64            `json:"event_id"`
	Type             model.EventType   `json:"type"`
	PlayerID         *uint64           `json:"player_id,omitempty"`
	TeamID           uint64            `json:"team_id"`
	Detail           model.EventDetail `json:"detail"`
	Quarter          int               `json:"quarter"`
	GameClockSeconds float64           `json:"game_clock_seconds"`
	Reversal         bool              `json:"reversal"`
	HomeScore        int               `json:"home_score"`
	AwayScore        int               `json:"away_score"`
	RecordedBy       string            `json:"recorded_by"`
	RecordedAt       string            `json:"recorded_at"`
}

// NewGameEventMessage builds the broker payload for a committed write.
func NewGameEventMessage(g *model.Game, e *model.GameEvent, reversal bool) GameEventMessage {
	return GameEventMessage{
		GameID:           g.ID,
		EventID:          e.ID,
		Type:             e.Type,
		PlayerID:         e.PlayerID,
		TeamID:           e.TeamID,
		Detail:           e.Detail,
		Quarter:          e.Quarter,
		GameClockSeconds: e.GameClockSeconds,
		Reversal:         reversal,
		HomeScore:        g.HomeScore,
		AwayScore:        g.AwayScore,
		RecordedBy:       e.RecordedBy,
		RecordedAt:       time.Now().UTC().Format(time.RFC3339Nano),
	}
}
