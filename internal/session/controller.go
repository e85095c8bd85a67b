// Package session holds the per-scorekeeper session controller: the
// single owner of the ephemeral follow-up state layered on top of
// ledger writes.  One pending prompt slot, one free-throw sequence
// slot and one shot-clock violation watcher live here, and every
// transition is a named method.  Nothing in this package is
// authoritative: dropping a session loses only convenience state, the
// ledger and aggregates are untouched.
package session

import (
	"sync"
	"time"

	"github.com/courtside/scorekeeper/internal/clock"
	"github.com/courtside/scorekeeper/internal/model"
	"github.com/courtside/scorekeeper/internal/rules"
)

// PromptKind names the two follow-up prompts a recorded event can
// trigger.
type PromptKind string

const (
	PromptAssist  PromptKind = "ASSIST"
	PromptRebound PromptKind = "REBOUND"
)

// DefaultPromptTTL is how long a prompt stays open before it expires
// untouched.
const DefaultPromptTTL = 8 * time.Second

// PendingPrompt is the at-most-one outstanding follow-up question for
// this session.  Candidates carries the player ids the prompt may
// resolve to: for an assist, the scorer's on-court teammates minus the
// scorer; for a rebound, both teams' on-court players.
type PendingPrompt struct {
	Kind       PromptKind `json:"kind"`
	GameID     uint64     `json:"game_id"`
	ShooterID  uint64     `json:"shooter_id"`
	TeamID     uint64     `json:"team_id"`
	OpponentID uint64     `json:"opponent_id"`
	ShotValue  int        `json:"shot_value"`
	Candidates []uint64   `json:"candidates"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// Controller owns one session's ephemeral state.  All methods are safe
// for concurrent use; the expiry timer fires on its own goroutine.
type Controller struct {
	mu        sync.Mutex
	prompt    *PendingPrompt
	freeThrow *rules.FreeThrowSequence
	watcher   *clock.ViolationWatcher

	ttl   time.Duration
	timer *time.Timer
	now   func() time.Time
}

// NewController builds a controller with the default prompt TTL.
func NewController() *Controller {
	return &Controller{
		ttl:     DefaultPromptTTL,
		watcher: clock.NewViolationWatcher(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Prompt returns the outstanding prompt, or nil.
func (c *Controller) Prompt() *PendingPrompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prompt == nil {
		return nil
	}
	p := *c.prompt
	return &p
}

// FreeThrows returns a copy of the in-progress sequence, or nil.
func (c *Controller) FreeThrows() *rules.FreeThrowSequence {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.freeThrow == nil {
		return nil
	}
	s := *c.freeThrow
	s.Results = append([]bool(nil), c.freeThrow.Results...)
	return &s
}

// OfferAssist opens an assist prompt after a made field goal.
// onCourtTeammates must already exclude the scorer.  Returns false
// when another prompt is outstanding (the new trigger is suppressed)
// or there is nobody to credit.
func (c *Controller) OfferAssist(gameID, scorerID, teamID, opponentID uint64, shotValue int, onCourtTeammates []uint64) bool {
	candidates := make([]uint64, 0, len(onCourtTeammates))
	for _, id := range onCourtTeammates {
		if id != scorerID {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	return c.offer(&PendingPrompt{
		Kind:       PromptAssist,
		GameID:     gameID,
		ShooterID:  scorerID,
		TeamID:     teamID,
		OpponentID: opponentID,
		ShotValue:  shotValue,
		Candidates: candidates,
	})
}

// OfferRebound opens a rebound prompt after a missed field goal or a
// final missed free throw.  onCourt spans both teams; offensive versus
// defensive is derived later from the resolving player's team.
func (c *Controller) OfferRebound(gameID, shooterID, teamID, opponentID uint64, onCourt []uint64) bool {
	return c.offer(&PendingPrompt{
		Kind:       PromptRebound,
		GameID:     gameID,
		ShooterID:  shooterID,
		TeamID:     teamID,
		OpponentID: opponentID,
		Candidates: append([]uint64(nil), onCourt...),
	})
}

func (c *Controller) offer(p *PendingPrompt) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prompt != nil {
		return false
	}
	now := c.now()
	p.CreatedAt = now
	p.ExpiresAt = now.Add(c.ttl)
	c.prompt = p
	c.timer = time.AfterFunc(c.ttl, func() { c.expire(p) })
	return true
}

// Resolve closes the outstanding prompt in favor of a follow-up write
// and returns it.  The caller performs the actual recordEvent; a
// failed write after Resolve simply means the prompt is gone, which is
// acceptable because prompts are additive convenience.
func (c *Controller) Resolve() *PendingPrompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.prompt
	c.clearPromptLocked()
	return p
}

// Dismiss drops the outstanding prompt with no write.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearPromptLocked()
}

// expire clears the prompt only if the given one is still current;
// a prompt resolved and replaced before the timer fires is left alone.
func (c *Controller) expire(p *PendingPrompt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prompt == p {
		c.clearPromptLocked()
	}
}

func (c *Controller) clearPromptLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.prompt = nil
}

// BeginFreeThrows seeds the sequence slot from a foul award.  A
// sequence already in progress is replaced: the scorekeeper correcting
// a mis-entered foul should not be stuck behind stale attempts.
// Returns nil when the award carries no free throws.
func (c *Controller) BeginFreeThrows(shooterID uint64, award rules.Award) *rules.FreeThrowSequence {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.freeThrow = rules.NewFreeThrowSequence(shooterID, award)
	return c.freeThrow
}

// ReportFreeThrow records one attempt against the sequence slot and
// clears the slot when the sequence completes.  ok is false when no
// sequence is in progress.
func (c *Controller) ReportFreeThrow(made bool) (outcome rules.AttemptOutcome, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.freeThrow == nil {
		return rules.AttemptOutcome{}, false
	}
	outcome = c.freeThrow.ReportAttempt(made)
	if outcome.Done {
		c.freeThrow = nil
	}
	return outcome, true
}

// AbandonFreeThrows drops the sequence slot, used when the underlying
// foul is reversed mid-sequence.
func (c *Controller) AbandonFreeThrows() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.freeThrow = nil
}

// ObserveClocks feeds the latest snapshot pair to the violation
// watcher and reports the active violation, if any.
func (c *Controller) ObserveClocks(shot, game clock.Snapshot, now time.Time) *clock.Violation {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watcher.Observe(shot, game, now)
	return c.watcher.ActiveAt(now)
}

// DismissViolation acknowledges the on-screen violation banner.
func (c *Controller) DismissViolation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watcher.Dismiss()
}

// RearmViolation re-arms the watcher after an explicit shot-clock
// reset.
func (c *Controller) RearmViolation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watcher.Rearm()
}

// ShouldPromptAssist reports whether a just-recorded event is a made
// field goal, the assist trigger.  Free throws never prompt.
func ShouldPromptAssist(e *model.GameEvent) bool {
	return e.Type == model.EventShot && e.Detail.Made != nil && *e.Detail.Made
}

// ShouldPromptRebound reports whether a just-recorded event leaves the
// ball live off a miss: a missed field goal.  The final missed free
// throw of a sequence is signalled separately by the sequencer.
func ShouldPromptRebound(e *model.GameEvent) bool {
	return e.Type == model.EventShot && e.Detail.Made != nil && !*e.Detail.Made
}
