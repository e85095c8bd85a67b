package model

import (
	"time"

	"github.com/courtside/scorekeeper/internal/clock"
)

// GameStatus enumerates the lifecycle phases of a game.  Transitions
// between statuses are governed by the phase package; nothing else may
// move a game between phases.
type GameStatus string

const (
	StatusScheduled GameStatus = "SCHEDULED" // created but not started
	StatusActive    GameStatus = "ACTIVE"    // clock may run, stats recordable
	StatusPaused    GameStatus = "PAUSED"    // stopped play, stats still recordable (corrections)
	StatusCompleted GameStatus = "COMPLETED" // final, read-only
)

// BonusMode selects the free-throw award style once a team is in the
// penalty.  NBA mode awards two shots in the bonus; college mode awards
// a one-and-one until the double bonus threshold is reached.
type BonusMode string

const (
	BonusModeNBA     BonusMode = "NBA"
	BonusModeCollege BonusMode = "COLLEGE"
)

// GameConfig captures the per-game rule parameters.  It is fixed at
// scheduling time and never changes once the game has started.
//
// Fields:
//  QuarterSeconds       – regulation period length in seconds.
//  OvertimeSeconds      – overtime period length in seconds.
//  FoulLimit            – personal fouls before a player fouls out (5 or 6).
//  BonusThreshold       – team fouls in a quarter that put the opponent in the bonus.
//  DoubleBonusThreshold – team fouls that trigger the double bonus (college only).
//  BonusMode            – NBA or COLLEGE free-throw award style.
//  ShotClockSeconds     – full shot clock value (24).
//  TimeoutsPerTeam      – timeouts each team starts the game with.
type GameConfig struct {
	QuarterSeconds       int       `json:"quarter_seconds"`
	OvertimeSeconds      int       `json:"overtime_seconds"`
	FoulLimit            int       `json:"foul_limit"`
	BonusThreshold       int       `json:"bonus_threshold"`
	DoubleBonusThreshold int       `json:"double_bonus_threshold"`
	BonusMode            BonusMode `json:"bonus_mode"`
	ShotClockSeconds     int       `json:"shot_clock_seconds"`
	TimeoutsPerTeam      int       `json:"timeouts_per_team"`
}

// DefaultConfig returns the configuration used when a game is scheduled
// without explicit overrides: 10 minute quarters, 5 minute overtime,
// five-foul limit and college bonus rules.
func DefaultConfig() GameConfig {
	return GameConfig{
		QuarterSeconds:       600,
		OvertimeSeconds:      300,
		FoulLimit:            5,
		BonusThreshold:       5,
		DoubleBonusThreshold: 10,
		BonusMode:            BonusModeCollege,
		ShotClockSeconds:     24,
		TimeoutsPerTeam:      4,
	}
}

// Game is the authoritative snapshot of a single contest.  Scores and
// foul counters mirror the event ledger; they are mutated only inside
// the same transaction that appends the corresponding event.  The two
// clock snapshots are server-authoritative: clients render a countdown
// by interpolating from them and never write them directly.
type Game struct {
	ID             uint64         `json:"id"`
	HomeTeamID     uint64         `json:"home_team_id"`
	AwayTeamID     uint64         `json:"away_team_id"`
	Status         GameStatus     `json:"status"`
	CurrentQuarter int            `json:"current_quarter"` // 5+ denotes overtime periods
	HomeScore      int            `json:"home_score"`
	AwayScore      int            `json:"away_score"`
	HomeFouls      int            `json:"home_fouls"` // team fouls this quarter
	AwayFouls      int            `json:"away_fouls"`
	HomeTimeouts   int            `json:"home_timeouts"`
	AwayTimeouts   int            `json:"away_timeouts"`
	GameClock      clock.Snapshot `json:"game_clock"`
	ShotClock      clock.Snapshot `json:"shot_clock"`
	Config         GameConfig     `json:"config"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// IsOvertime reports whether the game is past regulation.
func (g *Game) IsOvertime() bool { return g.CurrentQuarter > 4 }

// PeriodSeconds returns the configured length of the current period.
func (g *Game) PeriodSeconds() int {
	if g.IsOvertime() {
		return g.Config.OvertimeSeconds
	}
	return g.Config.QuarterSeconds
}

// TeamFouls returns the current-quarter foul count for the given team.
func (g *Game) TeamFouls(teamID uint64) int {
	if teamID == g.HomeTeamID {
		return g.HomeFouls
	}
	return g.AwayFouls
}

// OpponentOf returns the other team's ID.
func (g *Game) OpponentOf(teamID uint64) uint64 {
	if teamID == g.HomeTeamID {
		return g.AwayTeamID
	}
	return g.HomeTeamID
}
