package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/courtside/scorekeeper/internal/model"
	"github.com/courtside/scorekeeper/internal/phase"
	"github.com/courtside/scorekeeper/internal/repository"
	"github.com/courtside/scorekeeper/internal/rules"
)

// ReverseRequest selects the entry to undo.  When EventID is set the
// reversal targets that concrete entry; otherwise it falls back to the
// most recent unreversed entry matching (player, type) and optionally
// the made flag.  The fallback undoes the newest match regardless of
// which session recorded it.
type ReverseRequest struct {
	GameID     uint64
	EventID    *uint64
	PlayerID   uint64
	Type       model.EventType
	Made       *bool
	RecordedBy string
}

// ReverseResult reports the reversed entry and the refreshed snapshot.
type ReverseResult struct {
	Event model.GameEvent `json:"event"`
	Game  *model.Game     `json:"game"`
}

// ReverseEvent marks the selected ledger entry reversed and applies
// the exact inverse of its aggregate effect, all in one transaction.
// Each entry can be reversed at most once; a second attempt, or a
// filter with no eligible match, returns ErrNothingToUndo.
func (s *Scoring) ReverseEvent(ctx context.Context, req ReverseRequest) (*ReverseResult, error) {
	tx, err := s.games.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	g, err := s.games.GetForUpdateTx(ctx, tx, req.GameID)
	if err != nil {
		return nil, err
	}
	if !phase.Recordable(g.Status) {
		return nil, fmt.Errorf("%w: cannot undo events on a %s game", repository.ErrPhase, g.Status)
	}

	var e *model.GameEvent
	if req.EventID != nil {
		e, err = s.events.GetForUpdateTx(ctx, tx, req.GameID, *req.EventID)
	} else {
		e, err = s.events.LatestUnreversedTx(ctx, tx, req.GameID, req.PlayerID, req.Type, req.Made)
	}
	if err == sql.ErrNoRows {
		return nil, repository.ErrNothingToUndo
	}
	if err != nil {
		return nil, err
	}
	if e.Type == model.EventQuarterEnd || e.Type == model.EventOvertimeStart {
		return nil, fmt.Errorf("%w: %s entries cannot be undone", repository.ErrValidation, e.Type)
	}
	if err := s.events.MarkReversedTx(ctx, tx, e.ID); err != nil {
		return nil, err
	}

	if err := s.unapply(ctx, tx, g, e); err != nil {
		return nil, err
	}
	if err := s.games.UpdateSnapshotTx(ctx, tx, g); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUnknownOutcome, err)
	}
	committed = true

	s.fanOut(ctx, g, e, true)
	return &ReverseResult{Event: *e, Game: g}, nil
}

// unapply applies the inverse aggregate effect of a ledger entry.
func (s *Scoring) unapply(ctx context.Context, tx *sql.Tx, g *model.Game, e *model.GameEvent) error {
	if e.PlayerID != nil {
		d := eventDelta(e).Negate()
		if !d.IsZero() {
			if err := s.stats.EnsureTx(ctx, tx, g.ID, *e.PlayerID, e.TeamID); err != nil {
				return err
			}
			if err := s.stats.ApplyDeltaTx(ctx, tx, g.ID, *e.PlayerID, d); err != nil {
				return err
			}
		}
	}

	if pts := scoredPoints(e); pts > 0 {
		if e.TeamID == g.HomeTeamID {
			g.HomeScore -= pts
		} else {
			g.AwayScore -= pts
		}
		if err := s.stats.ApplyPlusMinusTx(ctx, tx, g.ID, e.TeamID, g.OpponentOf(e.TeamID), -pts); err != nil {
			return err
		}
	}

	switch e.Type {
	case model.EventFoul:
		return s.unapplyFoul(ctx, tx, g, e)
	case model.EventTimeout:
		if e.TeamID == g.HomeTeamID {
			g.HomeTimeouts++
		} else {
			g.AwayTimeouts++
		}
	case model.EventSubstitution:
		// Put the leaving player back and send the entering player off.
		if err := s.stats.SetOnCourtTx(ctx, tx, g.ID, *e.PlayerID, true); err != nil {
			return err
		}
		if e.Detail.EnteringPlayerID != nil {
			if err := s.stats.SetOnCourtTx(ctx, tx, g.ID, *e.Detail.EnteringPlayerID, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// unapplyFoul decrements the team foul counter when the foul kind
// counts toward it and the foul happened in the current quarter (the
// counter resets every period, so older fouls no longer contribute),
// and clears a foul-out when the reversal
// takes the player back under the limit.
func (s *Scoring) unapplyFoul(ctx context.Context, tx *sql.Tx, g *model.Game, e *model.GameEvent) error {
	if rules.CountsTowardTeamFouls(e.Detail.FoulKind) && e.Quarter == g.CurrentQuarter {
		if e.TeamID == g.HomeTeamID && g.HomeFouls > 0 {
			g.HomeFouls--
		} else if e.TeamID == g.AwayTeamID && g.AwayFouls > 0 {
			g.AwayFouls--
		}
	}
	stat, err := s.stats.GetForUpdateTx(ctx, tx, g.ID, *e.PlayerID)
	if err != nil {
		return err
	}
	if stat.FouledOut && stat.Fouls < g.Config.FoulLimit {
		return s.stats.SetFouledOutTx(ctx, tx, g.ID, *e.PlayerID, false)
	}
	return nil
}
