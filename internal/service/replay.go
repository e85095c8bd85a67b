package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/courtside/scorekeeper/internal/model"
	"github.com/courtside/scorekeeper/internal/rules"
)

// ReplayResult is the aggregate state reconstructed by reapplying
// every unreversed ledger entry from game start.  It is the ground
// truth the incrementally maintained tables are checked against.
type ReplayResult struct {
	HomeScore    int
	AwayScore    int
	HomeFouls    int // current quarter only, like the live counters
	AwayFouls    int
	HomeTimeouts int
	AwayTimeouts int
	Stats        map[uint64]*model.PlayerGameStat
}

// Replay folds the ledger into fresh aggregates.  It shares eventDelta
// with the hot path, so any divergence between stored and replayed
// values points at a write that bypassed the ledger, not at a second
// implementation of the rules.  Plus-minus is reconstructed from the
// substitution history and the starting lineup.
func Replay(g *model.Game, roster []model.Player, events []model.GameEvent) *ReplayResult {
	res := &ReplayResult{
		HomeTimeouts: g.Config.TimeoutsPerTeam,
		AwayTimeouts: g.Config.TimeoutsPerTeam,
		Stats:        make(map[uint64]*model.PlayerGameStat),
	}
	teamOf := make(map[uint64]uint64, len(roster))
	for _, p := range roster {
		teamOf[p.ID] = p.TeamID
		if p.Starter {
			res.stat(g, p.ID, p.TeamID).OnCourt = true
		}
	}

	for i := range events {
		e := &events[i]
		if e.Reversed {
			continue
		}
		if e.PlayerID != nil {
			st := res.stat(g, *e.PlayerID, e.TeamID)
			d := eventDelta(e)
			st.Points += d.Points
			st.OffRebounds += d.OffRebounds
			st.DefRebounds += d.DefRebounds
			st.Assists += d.Assists
			st.Steals += d.Steals
			st.Blocks += d.Blocks
			st.Turnovers += d.Turnovers
			st.Fouls += d.Fouls
			st.FGMade += d.FGMade
			st.FGAttempts += d.FGAttempts
			st.FTMade += d.FTMade
			st.FTAttempts += d.FTAttempts
			if rules.FoulsOut(st.Fouls, g.Config.FoulLimit) {
				st.FouledOut = true
				st.OnCourt = false
			} else {
				st.FouledOut = false
			}
		}

		switch e.Type {
		case model.EventSubstitution:
			if e.PlayerID != nil && e.Detail.EnteringPlayerID != nil {
				res.stat(g, *e.PlayerID, e.TeamID).OnCourt = false
				res.stat(g, *e.Detail.EnteringPlayerID, e.TeamID).OnCourt = true
			}
		case model.EventTimeout:
			if e.TeamID == g.HomeTeamID {
				res.HomeTimeouts--
			} else {
				res.AwayTimeouts--
			}
		case model.EventFoul:
			if rules.CountsTowardTeamFouls(e.Detail.FoulKind) && e.Quarter == g.CurrentQuarter {
				if e.TeamID == g.HomeTeamID {
					res.HomeFouls++
				} else {
					res.AwayFouls++
				}
			}
		}

		if pts := scoredPoints(e); pts > 0 {
			if e.TeamID == g.HomeTeamID {
				res.HomeScore += pts
			} else {
				res.AwayScore += pts
			}
			for _, st := range res.Stats {
				if !st.OnCourt {
					continue
				}
				if st.TeamID == e.TeamID {
					st.PlusMinus += pts
				} else {
					st.PlusMinus -= pts
				}
			}
		}
	}
	return res
}

func (r *ReplayResult) stat(g *model.Game, playerID, teamID uint64) *model.PlayerGameStat {
	if st, ok := r.Stats[playerID]; ok {
		return st
	}
	st := &model.PlayerGameStat{GameID: g.ID, PlayerID: playerID, TeamID: teamID}
	r.Stats[playerID] = st
	return st
}

// AuditReport is the outcome of checking the stored aggregates against
// a full-ledger replay.
type AuditReport struct {
	Consistent bool     `json:"consistent"`
	Mismatches []string `json:"mismatches,omitempty"`
}

// VerifyReplay replays the full ledger and diffs the result against
// the stored aggregates.  Plus-minus is excluded from the diff: the
// live path credits whoever is on court when a reversal commits, which
// can legitimately differ from the lineup at original event time.
func (s *Scoring) VerifyReplay(ctx context.Context, gameID uint64) (*AuditReport, error) {
	g, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	roster, err := s.games.GetRoster(ctx, gameID)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListAll(ctx, gameID)
	if err != nil {
		return nil, err
	}
	stored, err := s.stats.ListForGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	replayed := Replay(g, roster, events)
	report := &AuditReport{Consistent: true}
	mismatch := func(format string, args ...any) {
		report.Consistent = false
		report.Mismatches = append(report.Mismatches, fmt.Sprintf(format, args...))
	}

	if replayed.HomeScore != g.HomeScore || replayed.AwayScore != g.AwayScore {
		mismatch("score: stored %d-%d, replayed %d-%d", g.HomeScore, g.AwayScore, replayed.HomeScore, replayed.AwayScore)
	}
	if replayed.HomeFouls != g.HomeFouls || replayed.AwayFouls != g.AwayFouls {
		mismatch("team fouls: stored %d/%d, replayed %d/%d", g.HomeFouls, g.AwayFouls, replayed.HomeFouls, replayed.AwayFouls)
	}
	if replayed.HomeTimeouts != g.HomeTimeouts || replayed.AwayTimeouts != g.AwayTimeouts {
		mismatch("timeouts: stored %d/%d, replayed %d/%d", g.HomeTimeouts, g.AwayTimeouts, replayed.HomeTimeouts, replayed.AwayTimeouts)
	}

	seen := make(map[uint64]bool, len(stored))
	for i := range stored {
		st := &stored[i]
		seen[st.PlayerID] = true
		rp, ok := replayed.Stats[st.PlayerID]
		if !ok {
			rp = &model.PlayerGameStat{GameID: gameID, PlayerID: st.PlayerID, TeamID: st.TeamID}
		}
		diffStat(st, rp, mismatch)
	}
	missing := make([]uint64, 0)
	for id := range replayed.Stats {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	for _, id := range missing {
		rp := replayed.Stats[id]
		if (*rp == model.PlayerGameStat{GameID: gameID, PlayerID: id, TeamID: rp.TeamID}) {
			continue
		}
		mismatch("player %d: present in replay but has no stored row", id)
	}
	return report, nil
}

func diffStat(stored, replayed *model.PlayerGameStat, mismatch func(string, ...any)) {
	type field struct {
		name             string
		stored, replayed int
	}
	fields := []field{
		{"points", stored.Points, replayed.Points},
		{"off_rebounds", stored.OffRebounds, replayed.OffRebounds},
		{"def_rebounds", stored.DefRebounds, replayed.DefRebounds},
		{"assists", stored.Assists, replayed.Assists},
		{"steals", stored.Steals, replayed.Steals},
		{"blocks", stored.Blocks, replayed.Blocks},
		{"turnovers", stored.Turnovers, replayed.Turnovers},
		{"fouls", stored.Fouls, replayed.Fouls},
		{"fg_made", stored.FGMade, replayed.FGMade},
		{"fg_attempts", stored.FGAttempts, replayed.FGAttempts},
		{"ft_made", stored.FTMade, replayed.FTMade},
		{"ft_attempts", stored.FTAttempts, replayed.FTAttempts},
	}
	for _, f := range fields {
		if f.stored != f.replayed {
			mismatch("player %d %s: stored %d, replayed %d", stored.PlayerID, f.name, f.stored, f.replayed)
		}
	}
	if stored.FouledOut != replayed.FouledOut {
		mismatch("player %d fouled_out: stored %t, replayed %t", stored.PlayerID, stored.FouledOut, replayed.FouledOut)
	}
}

// Snapshot returns the current authoritative game state.
func (s *Scoring) Snapshot(ctx context.Context, gameID uint64) (*model.Game, error) {
	return s.games.GetByID(ctx, gameID)
}

// Stats returns every player aggregate of the game.
func (s *Scoring) Stats(ctx context.Context, gameID uint64) ([]model.PlayerGameStat, error) {
	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		return nil, err
	}
	return s.stats.ListForGame(ctx, gameID)
}

// RecentEvents returns the newest ledger entries first.
func (s *Scoring) RecentEvents(ctx context.Context, gameID uint64, limit int) ([]model.GameEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		return nil, err
	}
	return s.events.ListRecent(ctx, gameID, limit)
}

// Roster returns both teams' players.
func (s *Scoring) Roster(ctx context.Context, gameID uint64) ([]model.Player, error) {
	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		return nil, err
	}
	return s.games.GetRoster(ctx, gameID)
}
