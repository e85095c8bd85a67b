package model

import "time"

// EventType enumerates the kinds of entries the ledger accepts.
type EventType string

const (
	EventShot          EventType = "SHOT"
	EventFreeThrow     EventType = "FREE_THROW"
	EventRebound       EventType = "REBOUND"
	EventAssist        EventType = "ASSIST"
	EventSteal         EventType = "STEAL"
	EventBlock         EventType = "BLOCK"
	EventTurnover      EventType = "TURNOVER"
	EventFoul          EventType = "FOUL"
	EventSubstitution  EventType = "SUBSTITUTION"
	EventTimeout       EventType = "TIMEOUT"
	EventQuarterEnd    EventType = "QUARTER_END"
	EventOvertimeStart EventType = "OVERTIME_START"
)

// KnownEventType reports whether t is one of the ledger event types.
// Unknown types are rejected before anything is written.
func KnownEventType(t EventType) bool {
	switch t {
	case EventShot, EventFreeThrow, EventRebound, EventAssist, EventSteal,
		EventBlock, EventTurnover, EventFoul, EventSubstitution,
		EventTimeout, EventQuarterEnd, EventOvertimeStart:
		return true
	}
	return false
}

// FoulKind is the subtype carried by FOUL events.  The rules package
// maps each kind (together with shot context and team-foul count) to a
// free-throw award.
type FoulKind string

const (
	FoulPersonal  FoulKind = "PERSONAL"
	FoulShooting  FoulKind = "SHOOTING"
	FoulOffensive FoulKind = "OFFENSIVE"
	FoulTechnical FoulKind = "TECHNICAL"
	FoulFlagrant1 FoulKind = "FLAGRANT_1"
	FoulFlagrant2 FoulKind = "FLAGRANT_2"
)

// EventDetail is the type-specific payload of a ledger entry, stored as
// a JSON column.  Only the fields relevant to the event type are set.
//
//  SHOT          – Made, PointValue (2 or 3), Zone.
//  FREE_THROW    – Made.
//  REBOUND       – Offensive, TeamRebound.
//  FOUL          – FoulKind, FouledPlayerID, and for shooting fouls
//                  ShotMade (and-one when true) and ShotValue.
//  SUBSTITUTION  – EnteringPlayerID (actor is the player leaving).
type EventDetail struct {
	Made             *bool    `json:"made,omitempty"`
	PointValue       int      `json:"point_value,omitempty"`
	Zone             string   `json:"zone,omitempty"`
	Offensive        *bool    `json:"offensive,omitempty"`
	TeamRebound      bool     `json:"team_rebound,omitempty"`
	FoulKind         FoulKind `json:"foul_kind,omitempty"`
	FouledPlayerID   *uint64  `json:"fouled_player_id,omitempty"`
	ShotMade         bool     `json:"shot_made,omitempty"`
	ShotValue        int      `json:"shot_value,omitempty"`
	EnteringPlayerID *uint64  `json:"entering_player_id,omitempty"`
}

// GameEvent is one immutable ledger entry.  Ordering is defined by the
// server-assigned timestamp (then ID for ties), never by client clocks,
// so play-by-play reconstruction is deterministic under client skew.
//
// An entry is never physically deleted: undo marks Reversed on the
// original and appends nothing.  ReversedAt records when that happened.
// Each entry may be reversed at most once.
type GameEvent struct {
	ID               uint64      `json:"id"`
	GameID           uint64      `json:"game_id"`
	PlayerID         *uint64     `json:"player_id,omitempty"` // nil for team events (team rebound, timeout)
	TeamID           uint64      `json:"team_id"`
	Type             EventType   `json:"type"`
	Detail           EventDetail `json:"detail"`
	Quarter          int         `json:"quarter"`
	GameClockSeconds float64     `json:"game_clock_seconds"` // game-time snapshot at append
	Reversed         bool        `json:"reversed"`
	ReversedAt       *time.Time  `json:"reversed_at,omitempty"`
	RecordedBy       string      `json:"recorded_by"` // session subject from the bearer token
	CreatedAt        time.Time   `json:"created_at"`  // server timestamp, defines ledger order
}
