package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtside/scorekeeper/internal/model"
	"github.com/courtside/scorekeeper/internal/phase"
	"github.com/courtside/scorekeeper/internal/repository"
)

// TransitionResult reports the refreshed snapshot plus the overtime
// decision flag: when set, the game stayed paused and the scorekeeper
// must choose START_OVERTIME or END_AS_TIE.
type TransitionResult struct {
	Game             *model.Game `json:"game"`
	OvertimeDecision bool        `json:"overtime_decision"`
}

// Transition applies a lifecycle action under the game's row lock.
// START seeds the on-court lineup from the configured starters;
// END_PERIOD and START_OVERTIME leave QUARTER_END / OVERTIME_START
// markers in the ledger so the play-by-play shows period boundaries.
func (s *Scoring) Transition(ctx context.Context, gameID uint64, action phase.Action, recordedBy string) (*TransitionResult, error) {
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

	g, err := s.games.GetForUpdateTx(ctx, tx, gameID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	quarterBefore := g.CurrentQuarter
	out, err := phase.Apply(g, action, now)
	if err != nil {
		if errors.Is(err, phase.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: %v", repository.ErrPhase, err)
		}
		return nil, err
	}

	if out.SeedLineup {
		starters, err := s.games.StartersTx(ctx, tx, gameID)
		if err != nil {
			return nil, err
		}
		if err := s.stats.SeedLineupTx(ctx, tx, gameID, starters); err != nil {
			return nil, err
		}
	}

	var marker *model.GameEvent
	switch {
	case action == phase.ActionEndPeriod && g.CurrentQuarter != quarterBefore:
		marker = &model.GameEvent{Type: model.EventQuarterEnd, Quarter: quarterBefore}
	case action == phase.ActionStartOvertime:
		marker = &model.GameEvent{Type: model.EventOvertimeStart, Quarter: g.CurrentQuarter}
	}
	if marker != nil {
		marker.GameID = gameID
		marker.TeamID = g.HomeTeamID // period markers are not team-attributed; home fills the column
		marker.RecordedBy = recordedBy
		if err := s.events.InsertTx(ctx, tx, marker); err != nil {
			return nil, err
		}
	}

	if err := s.games.UpdateSnapshotTx(ctx, tx, g); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUnknownOutcome, err)
	}
	committed = true

	s.fanOut(ctx, g, marker, false)
	return &TransitionResult{Game: g, OvertimeDecision: out.OvertimeDecision}, nil
}
