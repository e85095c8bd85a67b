// Package phase is the game lifecycle state machine.  It owns every
// status transition and the quarter counter; the quarter advances only
// while play is paused.  The functions here mutate an in-memory game
// snapshot and report what the caller must do next (seed the lineup,
// offer the overtime decision); persisting the result atomically is
// the repository's job.
package phase

import (
	"errors"
	"fmt"
	"time"

	"github.com/courtside/scorekeeper/internal/clock"
	"github.com/courtside/scorekeeper/internal/model"
)

// Action names a requested lifecycle transition.
type Action string

const (
	ActionStart         Action = "START"
	ActionPause         Action = "PAUSE"
	ActionResume        Action = "RESUME"
	ActionEndPeriod     Action = "END_PERIOD"
	ActionStartOvertime Action = "START_OVERTIME"
	ActionEndAsTie      Action = "END_AS_TIE"
	ActionForceEnd      Action = "FORCE_END"
)

// ErrInvalidTransition is returned when an action is not legal from
// the game's current status.
var ErrInvalidTransition = errors.New("invalid phase transition")

// Outcome tells the caller what a successful transition implies beyond
// the mutated game snapshot.
type Outcome struct {
	// SeedLineup is set by START: the configured starters must be
	// placed on court before the first event is recorded.
	SeedLineup bool
	// OvertimeDecision is set by END_PERIOD when regulation (or an
	// overtime period) ended tied with no time left.  The game stays
	// paused; the scorekeeper chooses START_OVERTIME or END_AS_TIE.
	OvertimeDecision bool
}

// Recordable reports whether stat writes are accepted in the given
// status.  Paused is included so corrections can be entered during
// stoppages; every other status rejects ledger writes.
func Recordable(s model.GameStatus) bool {
	return s == model.StatusActive || s == model.StatusPaused
}

// Apply performs the requested transition on g, which must be the
// freshly loaded authoritative snapshot.  On error g is untouched.
func Apply(g *model.Game, action Action, now time.Time) (Outcome, error) {
	switch action {
	case ActionStart:
		return start(g)
	case ActionPause:
		return transition(g, model.StatusActive, model.StatusPaused)
	case ActionResume:
		return transition(g, model.StatusPaused, model.StatusActive)
	case ActionEndPeriod:
		return endPeriod(g, now)
	case ActionStartOvertime:
		return startOvertime(g)
	case ActionEndAsTie, ActionForceEnd:
		return end(g, now)
	default:
		return Outcome{}, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
}

func start(g *model.Game) (Outcome, error) {
	if g.Status != model.StatusScheduled {
		return Outcome{}, fmt.Errorf("%w: cannot start a %s game", ErrInvalidTransition, g.Status)
	}
	g.Status = model.StatusActive
	g.CurrentQuarter = 1
	g.GameClock = clock.Snapshot{Seconds: float64(g.Config.QuarterSeconds)}
	g.ShotClock = clock.Snapshot{Seconds: float64(g.Config.ShotClockSeconds)}
	g.HomeTimeouts = g.Config.TimeoutsPerTeam
	g.AwayTimeouts = g.Config.TimeoutsPerTeam
	return Outcome{SeedLineup: true}, nil
}

func transition(g *model.Game, from, to model.GameStatus) (Outcome, error) {
	if g.Status != from {
		return Outcome{}, fmt.Errorf("%w: %s is only valid from %s, game is %s", ErrInvalidTransition, to, from, g.Status)
	}
	g.Status = to
	return Outcome{}, nil
}

// endPeriod advances the quarter during a stoppage.  Before the fourth
// quarter it resets the game clock and team fouls and stays paused.
// From the fourth quarter on it completes the game when a winner
// exists; a tie with time expired raises the overtime decision instead
// of transitioning.
func endPeriod(g *model.Game, now time.Time) (Outcome, error) {
	if g.Status != model.StatusPaused {
		return Outcome{}, fmt.Errorf("%w: END_PERIOD requires a paused game, game is %s", ErrInvalidTransition, g.Status)
	}
	if g.CurrentQuarter < 4 {
		g.CurrentQuarter++
		g.GameClock = clock.Snapshot{Seconds: float64(g.Config.QuarterSeconds)}
		g.ShotClock = clock.Snapshot{Seconds: float64(g.Config.ShotClockSeconds)}
		g.HomeFouls = 0
		g.AwayFouls = 0
		return Outcome{}, nil
	}
	if g.HomeScore != g.AwayScore {
		return end(g, now)
	}
	if g.GameClock.Remaining(now) > 0 {
		return Outcome{}, fmt.Errorf("%w: period cannot end with time remaining and a tied score", ErrInvalidTransition)
	}
	return Outcome{OvertimeDecision: true}, nil
}

func startOvertime(g *model.Game) (Outcome, error) {
	if g.Status != model.StatusPaused {
		return Outcome{}, fmt.Errorf("%w: START_OVERTIME requires a paused game, game is %s", ErrInvalidTransition, g.Status)
	}
	if g.CurrentQuarter < 4 {
		return Outcome{}, fmt.Errorf("%w: overtime cannot start before the fourth quarter has ended", ErrInvalidTransition)
	}
	g.Status = model.StatusActive
	g.CurrentQuarter++
	g.GameClock = clock.Snapshot{Seconds: float64(g.Config.OvertimeSeconds)}
	g.ShotClock = clock.Snapshot{Seconds: float64(g.Config.ShotClockSeconds)}
	g.HomeFouls = 0
	g.AwayFouls = 0
	return Outcome{}, nil
}

func end(g *model.Game, now time.Time) (Outcome, error) {
	if g.Status == model.StatusCompleted {
		return Outcome{}, fmt.Errorf("%w: game is already completed", ErrInvalidTransition)
	}
	g.Status = model.StatusCompleted
	g.GameClock = g.GameClock.Pause(now)
	g.ShotClock = g.ShotClock.Pause(now)
	return Outcome{}, nil
}

// OvertimeRequired reports whether the overtime decision must be
// offered: regulation or a prior overtime has fully elapsed with the
// score level.
func OvertimeRequired(g *model.Game, now time.Time) bool {
	return g.CurrentQuarter >= 4 &&
		g.HomeScore == g.AwayScore &&
		g.GameClock.Remaining(now) == 0
}
