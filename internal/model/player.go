package model

// Player is a roster member of one of the two teams in a game.  Roster
// administration lives outside this service; players are read-only
// here and used for validation (actor must be on the roster) and for
// seeding the on-court lineup from starters when the game begins.
type Player struct {
	ID           uint64 `json:"id"`
	TeamID       uint64 `json:"team_id"`
	Name         string `json:"name"`
	JerseyNumber int    `json:"jersey_number"`
	Starter      bool   `json:"starter"`
}
