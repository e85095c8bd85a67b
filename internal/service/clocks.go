package service

import (
	"context"
	"fmt"

	"github.com/courtside/scorekeeper/internal/clock"
	"github.com/courtside/scorekeeper/internal/model"
	"github.com/courtside/scorekeeper/internal/repository"
)

// ClockID selects which of the two authoritative clocks an operation
// targets.
type ClockID string

const (
	ClockGame ClockID = "game"
	ClockShot ClockID = "shot"
)

// StartClock starts the selected clock.  Starting an already running
// clock is a no-op, so concurrent starts from two sessions linearize
// harmlessly in the store.
func (s *Scoring) StartClock(ctx context.Context, gameID uint64, id ClockID) (*model.Game, error) {
	return s.mutateClocks(ctx, gameID, func(g *model.Game) error {
		if g.Status != model.StatusActive {
			return fmt.Errorf("%w: clocks only run while the game is active", repository.ErrPhase)
		}
		now := s.now()
		switch id {
		case ClockGame:
			g.GameClock = g.GameClock.Start(now)
		case ClockShot:
			g.ShotClock = g.ShotClock.Start(now)
		default:
			return fmt.Errorf("%w: unknown clock %q", repository.ErrValidation, id)
		}
		return nil
	})
}

// PauseClock stops the selected clock, folding the elapsed time into
// the stored seconds.  Pausing the game clock also stops the shot
// clock, mirroring a whistle.
func (s *Scoring) PauseClock(ctx context.Context, gameID uint64, id ClockID) (*model.Game, error) {
	return s.mutateClocks(ctx, gameID, func(g *model.Game) error {
		now := s.now()
		switch id {
		case ClockGame:
			g.GameClock = g.GameClock.Pause(now)
			g.ShotClock = g.ShotClock.Pause(now)
		case ClockShot:
			g.ShotClock = g.ShotClock.Pause(now)
		default:
			return fmt.Errorf("%w: unknown clock %q", repository.ErrValidation, id)
		}
		return nil
	})
}

// ResetClock sets the selected clock to an explicit value.  With
// autoStart it begins counting immediately: 24 for a new possession,
// 14 for the offensive-rebound partial reset.  Without autoStart it is
// the manual clock edit, allowed during stoppages as a correction.
func (s *Scoring) ResetClock(ctx context.Context, gameID uint64, id ClockID, seconds float64, autoStart bool) (*model.Game, error) {
	return s.mutateClocks(ctx, gameID, func(g *model.Game) error {
		now := s.now()
		switch id {
		case ClockShot:
			if seconds < 0 || seconds > float64(g.Config.ShotClockSeconds) {
				return fmt.Errorf("%w: shot clock must be within [0, %d]", repository.ErrValidation, g.Config.ShotClockSeconds)
			}
			g.ShotClock = clock.Reset(seconds, autoStart, now)
		case ClockGame:
			if seconds < 0 || seconds > float64(g.PeriodSeconds()) {
				return fmt.Errorf("%w: game clock must be within [0, %d]", repository.ErrValidation, g.PeriodSeconds())
			}
			g.GameClock = clock.Reset(seconds, autoStart, now)
		default:
			return fmt.Errorf("%w: unknown clock %q", repository.ErrValidation, id)
		}
		if autoStart && g.Status != model.StatusActive {
			return fmt.Errorf("%w: clocks only run while the game is active", repository.ErrPhase)
		}
		return nil
	})
}

// RetroactivePause corrects the game clock to the instant a shot-clock
// violation was observed on a client: both clocks stop and the game
// clock is set back to the observed remaining time.  The correction
// can only move the clock backwards from its current interpolated
// value.
func (s *Scoring) RetroactivePause(ctx context.Context, gameID uint64, atSeconds float64) (*model.Game, error) {
	return s.mutateClocks(ctx, gameID, func(g *model.Game) error {
		now := s.now()
		if atSeconds < 0 || atSeconds > float64(g.PeriodSeconds()) {
			return fmt.Errorf("%w: observed time must be within [0, %d]", repository.ErrValidation, g.PeriodSeconds())
		}
		if atSeconds > g.GameClock.Remaining(now) {
			return fmt.Errorf("%w: retroactive pause cannot move the clock forward", repository.ErrValidation)
		}
		g.GameClock = clock.Snapshot{Seconds: atSeconds}
		g.ShotClock = g.ShotClock.Pause(now)
		g.ShotClock.Seconds = 0
		return nil
	})
}

// mutateClocks runs one clock write as a locked read-modify-write.
// Atomicity and ordering come from the store's row lock; two sessions
// issuing conflicting writes are applied in the store's serialization
// order, never merged.
func (s *Scoring) mutateClocks(ctx context.Context, gameID uint64, mutate func(g *model.Game) error) (*model.Game, error) {
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
	if g.Status == model.StatusCompleted || g.Status == model.StatusScheduled {
		return nil, fmt.Errorf("%w: no clock operations on a %s game", repository.ErrPhase, g.Status)
	}
	if err := mutate(g); err != nil {
		return nil, err
	}
	if err := s.games.UpdateSnapshotTx(ctx, tx, g); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUnknownOutcome, err)
	}
	committed = true
	s.fanOut(ctx, g, nil, false)
	return g, nil
}
