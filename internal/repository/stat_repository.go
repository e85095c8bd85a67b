package repository

import (
	"context"
	"database/sql"

	"github.com/courtside/scorekeeper/internal/model"
)

// StatRepo provides access to the player_game_stats running
// aggregates.  Aggregation is purely additive: every mutation is a
// column += delta, applied in the same transaction as the ledger entry
// that justifies it, so the table is always the sum of the unreversed
// ledger.
type StatRepo struct {
	db *sql.DB
}

// NewStatRepo returns a StatRepo bound to the given database.
func NewStatRepo(db *sql.DB) *StatRepo { return &StatRepo{db: db} }

// StatDelta is the per-event effect on one player's aggregate row.
// Reversal applies the same delta negated, which is what makes undo an
// exact inverse.
type StatDelta struct {
	Points      int
	OffRebounds int
	DefRebounds int
	Assists     int
	Steals      int
	Blocks      int
	Turnovers   int
	Fouls       int
	FGMade      int
	FGAttempts  int
	FTMade      int
	FTAttempts  int
}

// Negate returns the inverse delta.
func (d StatDelta) Negate() StatDelta {
	return StatDelta{
		Points: -d.Points, OffRebounds: -d.OffRebounds, DefRebounds: -d.DefRebounds,
		Assists: -d.Assists, Steals: -d.Steals, Blocks: -d.Blocks,
		Turnovers: -d.Turnovers, Fouls: -d.Fouls,
		FGMade: -d.FGMade, FGAttempts: -d.FGAttempts,
		FTMade: -d.FTMade, FTAttempts: -d.FTAttempts,
	}
}

// IsZero reports whether the delta changes nothing.
func (d StatDelta) IsZero() bool { return d == StatDelta{} }

// EnsureTx creates the aggregate row for (game, player) if it does not
// exist yet.  Rows are created lazily on a player's first event rather
// than up front for the whole roster.
func (r *StatRepo) EnsureTx(ctx context.Context, tx *sql.Tx, gameID, playerID, teamID uint64) error {
	const q = `INSERT IGNORE INTO player_game_stats (game_id, player_id, team_id) VALUES (?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, gameID, playerID, teamID)
	return err
}

// GetForUpdateTx loads one aggregate row with a row lock.  Missing
// rows come back as a zero-valued aggregate so callers can evaluate
// foul-out thresholds without special cases.
func (r *StatRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, gameID, playerID uint64) (*model.PlayerGameStat, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+statColumns+` FROM player_game_stats
	       WHERE game_id = ? AND player_id = ? FOR UPDATE`, gameID, playerID)
	s, err := scanStat(row)
	if err == sql.ErrNoRows {
		return &model.PlayerGameStat{GameID: gameID, PlayerID: playerID}, nil
	}
	return s, err
}

// ApplyDeltaTx adds the delta to the aggregate row.  The row must
// already exist (EnsureTx).
func (r *StatRepo) ApplyDeltaTx(ctx context.Context, tx *sql.Tx, gameID, playerID uint64, d StatDelta) error {
	const q = `UPDATE player_game_stats SET
	       points = points + ?, off_rebounds = off_rebounds + ?, def_rebounds = def_rebounds + ?,
	       assists = assists + ?, steals = steals + ?, blocks = blocks + ?,
	       turnovers = turnovers + ?, fouls = fouls + ?,
	       fg_made = fg_made + ?, fg_attempts = fg_attempts + ?,
	       ft_made = ft_made + ?, ft_attempts = ft_attempts + ?,
	       updated_at = UTC_TIMESTAMP(6)
	       WHERE game_id = ? AND player_id = ?`
	_, err := tx.ExecContext(ctx, q,
		d.Points, d.OffRebounds, d.DefRebounds,
		d.Assists, d.Steals, d.Blocks,
		d.Turnovers, d.Fouls,
		d.FGMade, d.FGAttempts,
		d.FTMade, d.FTAttempts,
		gameID, playerID)
	return err
}

// SetOnCourtTx flips a player's on-court flag.
func (r *StatRepo) SetOnCourtTx(ctx context.Context, tx *sql.Tx, gameID, playerID uint64, onCourt bool) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE player_game_stats SET on_court = ?, updated_at = UTC_TIMESTAMP(6)
		 WHERE game_id = ? AND player_id = ?`, onCourt, gameID, playerID)
	return err
}

// SetFouledOutTx marks a player fouled out.  Fouled out implies off
// court; the flag is sticky and only a reversal of the foul clears it.
func (r *StatRepo) SetFouledOutTx(ctx context.Context, tx *sql.Tx, gameID, playerID uint64, fouledOut bool) error {
	q := `UPDATE player_game_stats SET fouled_out = ?, updated_at = UTC_TIMESTAMP(6)`
	if fouledOut {
		q += `, on_court = 0`
	}
	q += ` WHERE game_id = ? AND player_id = ?`
	_, err := tx.ExecContext(ctx, q, fouledOut, gameID, playerID)
	return err
}

// SeedLineupTx places the given starters on court at game start,
// creating their aggregate rows in the same statement.
func (r *StatRepo) SeedLineupTx(ctx context.Context, tx *sql.Tx, gameID uint64, starters []model.Player) error {
	const q = `INSERT INTO player_game_stats (game_id, player_id, team_id, on_court)
	       VALUES (?, ?, ?, 1)
	       ON DUPLICATE KEY UPDATE on_court = 1`
	for _, p := range starters {
		if _, err := tx.ExecContext(ctx, q, gameID, p.ID, p.TeamID); err != nil {
			return err
		}
	}
	return nil
}

// ApplyPlusMinusTx credits points to every on-court player of the
// scoring team and debits the on-court opponents.  Negative points
// reverse a prior credit.
func (r *StatRepo) ApplyPlusMinusTx(ctx context.Context, tx *sql.Tx, gameID, scoringTeamID, opponentTeamID uint64, points int) error {
	const q = `UPDATE player_game_stats SET plus_minus = plus_minus + ?, updated_at = UTC_TIMESTAMP(6)
	       WHERE game_id = ? AND team_id = ? AND on_court = 1`
	if _, err := tx.ExecContext(ctx, q, points, gameID, scoringTeamID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, q, -points, gameID, opponentTeamID)
	return err
}

// ListForGame returns every aggregate row of the game.
func (r *StatRepo) ListForGame(ctx context.Context, gameID uint64) ([]model.PlayerGameStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+statColumns+` FROM player_game_stats WHERE game_id = ? ORDER BY team_id, player_id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stats := make([]model.PlayerGameStat, 0)
	for rows.Next() {
		s, err := scanStat(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, *s)
	}
	return stats, rows.Err()
}

// OnCourtTx returns the players currently on court for one team.
func (r *StatRepo) OnCourtTx(ctx context.Context, tx *sql.Tx, gameID, teamID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT player_id FROM player_game_stats WHERE game_id = ? AND team_id = ? AND on_court = 1`,
		gameID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const statColumns = `game_id, player_id, team_id, points, off_rebounds, def_rebounds,
       assists, steals, blocks, turnovers, fouls, fg_made, fg_attempts,
       ft_made, ft_attempts, plus_minus, on_court, fouled_out, updated_at`

func scanStat(row rowScanner) (*model.PlayerGameStat, error) {
	var s model.PlayerGameStat
	err := row.Scan(
		&s.GameID, &s.PlayerID, &s.TeamID, &s.Points, &s.OffRebounds, &s.DefRebounds,
		&s.Assists, &s.Steals, &s.Blocks, &s.Turnovers, &s.Fouls,
		&s.FGMade, &s.FGAttempts, &s.FTMade, &s.FTAttempts,
		&s.PlusMinus, &s.OnCourt, &s.FouledOut, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}
