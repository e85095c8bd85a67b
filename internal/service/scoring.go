// Package service orchestrates the live-game write path: every
// scorekeeper action becomes one transaction that appends to the
// ledger and applies the matching aggregate deltas, so the ledger and
// the aggregates can never diverge.  The rules layer is consulted
// inside the same transaction and its verdicts (free-throw awards,
// foul-outs) are returned to the caller as derived flags.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/courtside/scorekeeper/internal/model"
	"github.com/courtside/scorekeeper/internal/phase"
	"github.com/courtside/scorekeeper/internal/queue"
	"github.com/courtside/scorekeeper/internal/repository"
	"github.com/courtside/scorekeeper/internal/rules"
)

// EventPublisher receives every accepted ledger append and reversal
// for downstream play-by-play consumers.  Publishing happens after
// commit and is best effort; a broker outage never fails a write.
type EventPublisher interface {
	PublishGameEvent(ctx context.Context, msg queue.GameEventMessage) error
}

// LivePublisher receives the fresh game snapshot after every accepted
// mutation, for fan-out to spectator connections.
type LivePublisher interface {
	PublishSnapshot(ctx context.Context, g *model.Game) error
}

// Scoring is the transactional core of the scorekeeping service.
type Scoring struct {
	games  *repository.GameRepo
	events *repository.EventRepo
	stats  *repository.StatRepo
	pub    EventPublisher
	live   LivePublisher
	now    func() time.Time
}

// NewScoring wires the service.  Publishers may be nil, in which case
// the corresponding fan-out is skipped.
func NewScoring(games *repository.GameRepo, events *repository.EventRepo, stats *repository.StatRepo, pub EventPublisher, live LivePublisher) *Scoring {
	if games == nil || events == nil || stats == nil {
		panic("nil repository passed to NewScoring")
	}
	return &Scoring{games: games, events: events, stats: stats, pub: pub, live: live, now: func() time.Time { return time.Now().UTC() }}
}

// RecordRequest describes one scorekeeper action.  PlayerID is nil for
// team-level entries (team rebound, timeout), in which case TeamID
// must name one of the two teams.
type RecordRequest struct {
	GameID     uint64
	PlayerID   *uint64
	TeamID     uint64
	Type       model.EventType
	Detail     model.EventDetail
	RecordedBy string
}

// RecordResult carries the appended entry plus the derived flags the
// caller needs for follow-up actions: the free-throw award to seed a
// sequencer, the foul-out signal to force a substitution prompt, and
// the possession-change marker.
type RecordResult struct {
	Event            model.GameEvent `json:"event"`
	DidFoulOut       bool            `json:"did_foul_out"`
	Award            *rules.Award    `json:"free_throws,omitempty"`
	PossessionChange bool            `json:"possession_change"`
	Game             *model.Game     `json:"game"`
}

// RecordEvent appends a ledger entry and applies its aggregate effect
// atomically.  The game must be in a recordable phase.  On
// ErrUnknownOutcome the caller must re-read the snapshot before
// repeating the action; anything else was cleanly rejected or cleanly
// applied.
func (s *Scoring) RecordEvent(ctx context.Context, req RecordRequest) (*RecordResult, error) {
	if !model.KnownEventType(req.Type) {
		return nil, fmt.Errorf("%w: unknown event type %q", repository.ErrValidation, req.Type)
	}
	if req.Type == model.EventQuarterEnd || req.Type == model.EventOvertimeStart {
		return nil, fmt.Errorf("%w: %s entries are written by phase transitions", repository.ErrValidation, req.Type)
	}
	if err := validateDetail(req.Type, req.Detail); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrValidation, err)
	}

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
		return nil, fmt.Errorf("%w: cannot record events on a %s game", repository.ErrPhase, g.Status)
	}

	now := s.now()
	e := model.GameEvent{
		GameID:           req.GameID,
		PlayerID:         req.PlayerID,
		TeamID:           req.TeamID,
		Type:             req.Type,
		Detail:           req.Detail,
		Quarter:          g.CurrentQuarter,
		GameClockSeconds: g.GameClock.Remaining(now),
		RecordedBy:       req.RecordedBy,
	}

	res := RecordResult{}
	if req.PlayerID != nil {
		p, err := s.games.GetPlayerTx(ctx, tx, req.GameID, *req.PlayerID)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: player %d is not on either roster", repository.ErrValidation, *req.PlayerID)
		}
		if err != nil {
			return nil, err
		}
		e.TeamID = p.TeamID
		if err := s.stats.EnsureTx(ctx, tx, req.GameID, p.ID, p.TeamID); err != nil {
			return nil, err
		}
		stat, err := s.stats.GetForUpdateTx(ctx, tx, req.GameID, p.ID)
		if err != nil {
			return nil, err
		}
		if requiresOnCourt(req.Type) && !stat.OnCourt {
			return nil, fmt.Errorf("%w: player %d is not on court", repository.ErrValidation, p.ID)
		}
		if err := s.applyPlayerEvent(ctx, tx, g, &e, stat, &res); err != nil {
			return nil, err
		}
	} else {
		if err := s.applyTeamEvent(ctx, tx, g, &e, now); err != nil {
			return nil, err
		}
	}

	if err := s.events.InsertTx(ctx, tx, &e); err != nil {
		return nil, err
	}
	if err := s.games.UpdateSnapshotTx(ctx, tx, g); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUnknownOutcome, err)
	}
	committed = true

	res.Event = e
	res.Game = g
	s.fanOut(ctx, g, &e, false)
	return &res, nil
}

// applyPlayerEvent applies a player-attributed entry: the actor's stat
// delta, the team aggregates, and the rules verdicts.
func (s *Scoring) applyPlayerEvent(ctx context.Context, tx *sql.Tx, g *model.Game, e *model.GameEvent, stat *model.PlayerGameStat, res *RecordResult) error {
	switch e.Type {
	case model.EventFoul:
		// The award is judged against the count standing before this
		// foul; the foul that reaches the threshold awards nothing
		// itself.
		priorTeamFouls := g.TeamFouls(e.TeamID)
		if rules.CountsTowardTeamFouls(e.Detail.FoulKind) {
			if e.TeamID == g.HomeTeamID {
				g.HomeFouls++
			} else {
				g.AwayFouls++
			}
		}
		award, err := rules.EvaluateFoul(e.Detail.FoulKind, rules.FoulContext{
			TeamFouls:            priorTeamFouls,
			BonusMode:            g.Config.BonusMode,
			BonusThreshold:       g.Config.BonusThreshold,
			DoubleBonusThreshold: g.Config.DoubleBonusThreshold,
			ShotMade:             e.Detail.ShotMade,
			ShotValue:            e.Detail.ShotValue,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", repository.ErrValidation, err)
		}
		res.Award = &award
		res.PossessionChange = award.Turnover
		if rules.FoulsOut(stat.Fouls+1, g.Config.FoulLimit) {
			res.DidFoulOut = true
			if err := s.stats.SetFouledOutTx(ctx, tx, g.ID, stat.PlayerID, true); err != nil {
				return err
			}
		}
	case model.EventSubstitution:
		return s.applySubstitution(ctx, tx, g, e, stat)
	case model.EventTurnover:
		res.PossessionChange = true
	}

	d := eventDelta(e)
	if !d.IsZero() {
		if err := s.stats.ApplyDeltaTx(ctx, tx, g.ID, stat.PlayerID, d); err != nil {
			return err
		}
	}
	if pts := scoredPoints(e); pts > 0 {
		if e.TeamID == g.HomeTeamID {
			g.HomeScore += pts
		} else {
			g.AwayScore += pts
		}
		if err := s.stats.ApplyPlusMinusTx(ctx, tx, g.ID, e.TeamID, g.OpponentOf(e.TeamID), pts); err != nil {
			return err
		}
	}
	return nil
}

// applySubstitution swaps the on-court flags.  The actor is the player
// leaving; the detail names who enters.  A fouled-out player cannot
// re-enter.
func (s *Scoring) applySubstitution(ctx context.Context, tx *sql.Tx, g *model.Game, e *model.GameEvent, leaving *model.PlayerGameStat) error {
	inID := *e.Detail.EnteringPlayerID
	in, err := s.games.GetPlayerTx(ctx, tx, g.ID, inID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: entering player %d is not on either roster", repository.ErrValidation, inID)
	}
	if err != nil {
		return err
	}
	if in.TeamID != e.TeamID {
		return fmt.Errorf("%w: substitution must stay within one team", repository.ErrValidation)
	}
	if err := s.stats.EnsureTx(ctx, tx, g.ID, in.ID, in.TeamID); err != nil {
		return err
	}
	inStat, err := s.stats.GetForUpdateTx(ctx, tx, g.ID, in.ID)
	if err != nil {
		return err
	}
	if inStat.FouledOut {
		return fmt.Errorf("%w: player %d has fouled out and cannot re-enter", repository.ErrValidation, in.ID)
	}
	if inStat.OnCourt {
		return fmt.Errorf("%w: player %d is already on court", repository.ErrValidation, in.ID)
	}
	if err := s.stats.SetOnCourtTx(ctx, tx, g.ID, leaving.PlayerID, false); err != nil {
		return err
	}
	return s.stats.SetOnCourtTx(ctx, tx, g.ID, in.ID, true)
}

// applyTeamEvent handles entries with no actor: team rebounds and
// timeouts.
func (s *Scoring) applyTeamEvent(ctx context.Context, tx *sql.Tx, g *model.Game, e *model.GameEvent, now time.Time) error {
	if e.TeamID != g.HomeTeamID && e.TeamID != g.AwayTeamID {
		return fmt.Errorf("%w: team %d is not playing in game %d", repository.ErrValidation, e.TeamID, g.ID)
	}
	switch e.Type {
	case model.EventRebound:
		if !e.Detail.TeamRebound {
			return fmt.Errorf("%w: rebound without a player must set team_rebound", repository.ErrValidation)
		}
	case model.EventTimeout:
		if e.TeamID == g.HomeTeamID {
			if g.HomeTimeouts <= 0 {
				return fmt.Errorf("%w: home team has no timeouts remaining", repository.ErrValidation)
			}
			g.HomeTimeouts--
		} else {
			if g.AwayTimeouts <= 0 {
				return fmt.Errorf("%w: away team has no timeouts remaining", repository.ErrValidation)
			}
			g.AwayTimeouts--
		}
		// A granted timeout stops play.
		g.GameClock = g.GameClock.Pause(now)
		g.ShotClock = g.ShotClock.Pause(now)
	default:
		return fmt.Errorf("%w: event type %s requires a player", repository.ErrValidation, e.Type)
	}
	return nil
}

// requiresOnCourt lists the entries only an on-court player can
// produce.  An assist may be credited during a stoppage but still only
// to someone on the floor.
func requiresOnCourt(t model.EventType) bool {
	switch t {
	case model.EventShot, model.EventFreeThrow, model.EventRebound, model.EventAssist,
		model.EventSteal, model.EventBlock, model.EventTurnover, model.EventFoul,
		model.EventSubstitution:
		return true
	}
	return false
}

// fanOut publishes the snapshot and the ledger entry after a committed
// write.  Failures are logged and swallowed: the authoritative state
// is already durable and spectators will catch up on the next update.
func (s *Scoring) fanOut(ctx context.Context, g *model.Game, e *model.GameEvent, reversal bool) {
	if s.live != nil {
		if err := s.live.PublishSnapshot(ctx, g); err != nil {
			log.Printf("live publish failed for game %d: %v", g.ID, err)
		}
	}
	if s.pub != nil && e != nil {
		msg := queue.NewGameEventMessage(g, e, reversal)
		if err := s.pub.PublishGameEvent(ctx, msg); err != nil {
			log.Printf("event publish failed for game %d: %v", g.ID, err)
		}
	}
}
