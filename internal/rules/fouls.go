// Package rules is the pure basketball rules layer: it turns foul
// events into free-throw awards and drives in-progress free-throw
// sequences.  It holds no storage and no clock; everything here is a
// function of its inputs, which keeps the edge cases testable in
// isolation.
package rules

import (
	"fmt"

	"github.com/courtside/scorekeeper/internal/model"
)

// Award is what a foul earns the fouled team.  Attempts and OneAndOne
// parameterize the free-throw sequencer; RetainPossession marks awards
// (technical, flagrant) where the shooting team keeps the ball after
// the attempts; Turnover marks offensive fouls, which change
// possession without free throws.
type Award struct {
	Attempts         int  `json:"attempts"`
	OneAndOne        bool `json:"one_and_one"`
	RetainPossession bool `json:"retain_possession"`
	Turnover         bool `json:"turnover"`
}

// FoulContext is everything outside the foul subtype that the award
// depends on.  TeamFouls is the fouling team's quarter count before
// the current foul: the foul that reaches the threshold only puts the
// team in the penalty, and the one after it is the first to award.
type FoulContext struct {
	TeamFouls            int
	BonusMode            model.BonusMode
	BonusThreshold       int
	DoubleBonusThreshold int
	ShotMade             bool // shooting fouls only
	ShotValue            int  // shooting fouls only, 2 or 3
}

// bonusTier collapses the team-foul count into the three penalty
// situations a personal foul can land in.
type bonusTier int

const (
	tierNone bonusTier = iota
	tierBonus
	tierDoubleBonus
)

// awardKey addresses one row of the award table.  Tier is meaningful
// only for personal fouls, ShotMade only for shooting fouls; the
// other kinds use the zero values.
type awardKey struct {
	Kind     model.FoulKind
	Tier     bonusTier
	ShotMade bool
}

// awardRule is one row of the table.  AttemptsFromShotValue stands in
// for the missed-shot rule where the attempt count equals the shot's
// point value.
type awardRule struct {
	Attempts              int
	AttemptsFromShotValue bool
	OneAndOne             bool
	RetainPossession      bool
	Turnover              bool
}

// awardTable encodes the free-throw rules as data so that new foul
// subtypes or bonus modes are rows, not rewrites.  The college
// single-bonus row is the only one whose one-and-one flag is set; NBA
// mode maps the single bonus to the double-bonus row before lookup.
var awardTable = map[awardKey]awardRule{
	{Kind: model.FoulPersonal, Tier: tierNone}:        {},
	{Kind: model.FoulPersonal, Tier: tierBonus}:       {Attempts: 2, OneAndOne: true},
	{Kind: model.FoulPersonal, Tier: tierDoubleBonus}: {Attempts: 2},
	{Kind: model.FoulShooting, ShotMade: true}:        {Attempts: 1}, // and-one
	{Kind: model.FoulShooting, ShotMade: false}:       {AttemptsFromShotValue: true},
	{Kind: model.FoulOffensive}:                       {Turnover: true},
	{Kind: model.FoulTechnical}:                       {Attempts: 1, RetainPossession: true},
	{Kind: model.FoulFlagrant1}:                       {Attempts: 2, RetainPossession: true},
	{Kind: model.FoulFlagrant2}:                       {Attempts: 2, RetainPossession: true},
}

// EvaluateFoul looks up the free-throw award for a foul.  It returns
// an error for unknown subtypes or malformed shooting context rather
// than guessing.
func EvaluateFoul(kind model.FoulKind, ctx FoulContext) (Award, error) {
	key := awardKey{Kind: kind}
	switch kind {
	case model.FoulPersonal:
		key.Tier = penaltyTier(ctx)
	case model.FoulShooting:
		key.ShotMade = ctx.ShotMade
		if !ctx.ShotMade && ctx.ShotValue != 2 && ctx.ShotValue != 3 {
			return Award{}, fmt.Errorf("shooting foul on missed shot needs a shot value of 2 or 3, got %d", ctx.ShotValue)
		}
	}
	rule, ok := awardTable[key]
	if !ok {
		return Award{}, fmt.Errorf("unknown foul kind %q", kind)
	}
	a := Award{
		Attempts:         rule.Attempts,
		OneAndOne:        rule.OneAndOne,
		RetainPossession: rule.RetainPossession,
		Turnover:         rule.Turnover,
	}
	if rule.AttemptsFromShotValue {
		a.Attempts = ctx.ShotValue
	}
	return a, nil
}

// penaltyTier maps the team-foul count onto the bonus situation.  NBA
// mode has no one-and-one: reaching the bonus threshold goes straight
// to two shots.
func penaltyTier(ctx FoulContext) bonusTier {
	switch {
	case ctx.DoubleBonusThreshold > 0 && ctx.TeamFouls >= ctx.DoubleBonusThreshold:
		return tierDoubleBonus
	case ctx.BonusThreshold > 0 && ctx.TeamFouls >= ctx.BonusThreshold:
		if ctx.BonusMode == model.BonusModeNBA {
			return tierDoubleBonus
		}
		return tierBonus
	default:
		return tierNone
	}
}

// CountsTowardTeamFouls reports whether a foul subtype increments the
// team's quarter foul counter.  Technical fouls do not put a team in
// the penalty.
func CountsTowardTeamFouls(kind model.FoulKind) bool {
	return kind != model.FoulTechnical
}

// FoulsOut reports whether a player with the given cumulative personal
// foul count has reached the configured limit.
func FoulsOut(fouls, limit int) bool {
	return limit > 0 && fouls >= limit
}
