package service

import (
	"fmt"

	"github.com/courtside/scorekeeper/internal/model"
	"github.com/courtside/scorekeeper/internal/repository"
)

// eventDelta maps a ledger entry to its effect on the actor's
// aggregate row.  Both the hot-path incremental update and the full
// replay go through this one function, which is what guarantees that a
// replay reproduces the stored aggregates exactly.
func eventDelta(e *model.GameEvent) repository.StatDelta {
	var d repository.StatDelta
	switch e.Type {
	case model.EventShot:
		d.FGAttempts = 1
		if e.Detail.Made != nil && *e.Detail.Made {
			d.FGMade = 1
			d.Points = e.Detail.PointValue
		}
	case model.EventFreeThrow:
		d.FTAttempts = 1
		if e.Detail.Made != nil && *e.Detail.Made {
			d.FTMade = 1
			d.Points = 1
		}
	case model.EventRebound:
		if e.PlayerID != nil {
			if e.Detail.Offensive != nil && *e.Detail.Offensive {
				d.OffRebounds = 1
			} else {
				d.DefRebounds = 1
			}
		}
	case model.EventAssist:
		d.Assists = 1
	case model.EventSteal:
		d.Steals = 1
	case model.EventBlock:
		d.Blocks = 1
	case model.EventTurnover:
		d.Turnovers = 1
	case model.EventFoul:
		d.Fouls = 1
	}
	return d
}

// scoredPoints returns how many points the entry put on the board, 0
// for non-scoring entries.
func scoredPoints(e *model.GameEvent) int {
	switch e.Type {
	case model.EventShot:
		if e.Detail.Made != nil && *e.Detail.Made {
			return e.Detail.PointValue
		}
	case model.EventFreeThrow:
		if e.Detail.Made != nil && *e.Detail.Made {
			return 1
		}
	}
	return 0
}

// validateDetail rejects malformed payloads before anything touches
// the store.  Unknown combinations fail closed.
func validateDetail(typ model.EventType, detail model.EventDetail) error {
	switch typ {
	case model.EventShot:
		if detail.Made == nil {
			return fmt.Errorf("shot event requires a made flag")
		}
		if detail.PointValue != 2 && detail.PointValue != 3 {
			return fmt.Errorf("shot point value must be 2 or 3, got %d", detail.PointValue)
		}
	case model.EventFreeThrow:
		if detail.Made == nil {
			return fmt.Errorf("free throw event requires a made flag")
		}
	case model.EventFoul:
		switch detail.FoulKind {
		case model.FoulPersonal, model.FoulShooting, model.FoulOffensive,
			model.FoulTechnical, model.FoulFlagrant1, model.FoulFlagrant2:
		default:
			return fmt.Errorf("unknown foul kind %q", detail.FoulKind)
		}
		if detail.FoulKind == model.FoulShooting && !detail.ShotMade {
			if detail.ShotValue != 2 && detail.ShotValue != 3 {
				return fmt.Errorf("shooting foul requires the shot value (2 or 3)")
			}
		}
	case model.EventSubstitution:
		if detail.EnteringPlayerID == nil {
			return fmt.Errorf("substitution requires entering_player_id")
		}
	}
	return nil
}
