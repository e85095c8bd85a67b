package model

import "time"

// PlayerGameStat is the running aggregate for one (player, game) pair.
// It is mutated only by the aggregation logic in the service layer, in
// the same transaction as the ledger append that justifies the change;
// clients never write it directly.  A full-ledger replay must
// reproduce every field exactly.
type PlayerGameStat struct {
	GameID      uint64    `json:"game_id"`
	PlayerID    uint64    `json:"player_id"`
	TeamID      uint64    `json:"team_id"`
	Points      int       `json:"points"`
	OffRebounds int       `json:"off_rebounds"`
	DefRebounds int       `json:"def_rebounds"`
	Assists     int       `json:"assists"`
	Steals      int       `json:"steals"`
	Blocks      int       `json:"blocks"`
	Turnovers   int       `json:"turnovers"`
	Fouls       int       `json:"fouls"`
	FGMade      int       `json:"fg_made"`
	FGAttempts  int       `json:"fg_attempts"`
	FTMade      int       `json:"ft_made"`
	FTAttempts  int       `json:"ft_attempts"`
	PlusMinus   int       `json:"plus_minus"`
	OnCourt     bool      `json:"on_court"`
	FouledOut   bool      `json:"fouled_out"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Rebounds returns the combined rebound total.
func (s *PlayerGameStat) Rebounds() int { return s.OffRebounds + s.DefRebounds }
