package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/courtside/scorekeeper/internal/clock"
	"github.com/courtside/scorekeeper/internal/model"
)

// GameRepo provides access to the games table: the authoritative game
// snapshot including both clock tuples.  All multi-statement mutations
// go through the ...Tx variants so the service layer can bundle the
// snapshot update with the ledger append in one transaction.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo returns a GameRepo bound to the given database.
func NewGameRepo(db *sql.DB) *GameRepo { return &GameRepo{db: db} }

// DB exposes the underlying handle so the service layer can begin
// transactions spanning several repositories.
func (r *GameRepo) DB() *sql.DB { return r.db }

const gameColumns = `id, home_team_id, away_team_id, status, current_quarter,
       home_score, away_score, home_fouls, away_fouls, home_timeouts, away_timeouts,
       game_clock_seconds, game_clock_started_at, game_clock_running,
       shot_clock_seconds, shot_clock_started_at, shot_clock_running,
       quarter_seconds, overtime_seconds, foul_limit, bonus_threshold,
       double_bonus_threshold, bonus_mode, shot_clock_full_seconds,
       timeouts_per_team, created_at, updated_at`

// GetByID loads a game snapshot outside any transaction.  It returns
// ErrGameNotFound when the game does not exist.
func (r *GameRepo) GetByID(ctx context.Context, gameID uint64) (*model.Game, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, gameID)
	return scanGame(row)
}

// GetForUpdateTx loads a game snapshot with a row lock, serializing
// concurrent writers on the same game.  Every mutation starts here:
// the store's transaction ordering, not this service, linearizes
// concurrent scorekeeper sessions.
func (r *GameRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, gameID uint64) (*model.Game, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ? FOR UPDATE`, gameID)
	return scanGame(row)
}

// UpdateSnapshotTx persists the mutable portion of a game snapshot:
// status, quarter, scores, foul and timeout counters, and both clocks.
func (r *GameRepo) UpdateSnapshotTx(ctx context.Context, tx *sql.Tx, g *model.Game) error {
	const q = `UPDATE games SET
	       status = ?, current_quarter = ?,
	       home_score = ?, away_score = ?,
	       home_fouls = ?, away_fouls = ?,
	       home_timeouts = ?, away_timeouts = ?,
	       game_clock_seconds = ?, game_clock_started_at = ?, game_clock_running = ?,
	       shot_clock_seconds = ?, shot_clock_started_at = ?, shot_clock_running = ?,
	       updated_at = UTC_TIMESTAMP(6)
	       WHERE id = ?`
	_, err := tx.ExecContext(ctx, q,
		g.Status, g.CurrentQuarter,
		g.HomeScore, g.AwayScore,
		g.HomeFouls, g.AwayFouls,
		g.HomeTimeouts, g.AwayTimeouts,
		g.GameClock.Seconds, nullTime(g.GameClock.StartedAt), g.GameClock.Running,
		g.ShotClock.Seconds, nullTime(g.ShotClock.StartedAt), g.ShotClock.Running,
		g.ID,
	)
	return err
}

// GetRoster returns the players of both teams in the game, home team
// first.  Roster administration happens outside this service; the
// roster is read-only here.
func (r *GameRepo) GetRoster(ctx context.Context, gameID uint64) ([]model.Player, error) {
	const q = `SELECT p.id, p.team_id, p.name, p.jersey_number, p.starter
	           FROM players p
	           JOIN games g ON p.team_id IN (g.home_team_id, g.away_team_id)
	           WHERE g.id = ?
	           ORDER BY p.team_id = g.away_team_id, p.jersey_number`
	rows, err := r.db.QueryContext(ctx, q, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var players []model.Player
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.JerseyNumber, &p.Starter); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetPlayerTx loads a single roster member inside the transaction.  It
// returns sql.ErrNoRows when the player is not on either roster of the
// game, which the service maps to ErrValidation.
func (r *GameRepo) GetPlayerTx(ctx context.Context, tx *sql.Tx, gameID, playerID uint64) (*model.Player, error) {
	const q = `SELECT p.id, p.team_id, p.name, p.jersey_number, p.starter
	           FROM players p
	           JOIN games g ON p.team_id IN (g.home_team_id, g.away_team_id)
	           WHERE g.id = ? AND p.id = ?`
	var p model.Player
	err := tx.QueryRowContext(ctx, q, gameID, playerID).Scan(&p.ID, &p.TeamID, &p.Name, &p.JerseyNumber, &p.Starter)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// StartersTx returns the configured starters of both teams, used to
// seed the on-court lineup when the game starts.
func (r *GameRepo) StartersTx(ctx context.Context, tx *sql.Tx, gameID uint64) ([]model.Player, error) {
	const q = `SELECT p.id, p.team_id, p.name, p.jersey_number, p.starter
	           FROM players p
	           JOIN games g ON p.team_id IN (g.home_team_id, g.away_team_id)
	           WHERE g.id = ? AND p.starter = 1`
	rows, err := tx.QueryContext(ctx, q, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var players []model.Player
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name, &p.JerseyNumber, &p.Starter); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// rowScanner covers both *sql.Row and rows from a query.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*model.Game, error) {
	var g model.Game
	var gameStarted, shotStarted sql.NullTime
	var gameRunning, shotRunning bool
	err := row.Scan(
		&g.ID, &g.HomeTeamID, &g.AwayTeamID, &g.Status, &g.CurrentQuarter,
		&g.HomeScore, &g.AwayScore, &g.HomeFouls, &g.AwayFouls,
		&g.HomeTimeouts, &g.AwayTimeouts,
		&g.GameClock.Seconds, &gameStarted, &gameRunning,
		&g.ShotClock.Seconds, &shotStarted, &shotRunning,
		&g.Config.QuarterSeconds, &g.Config.OvertimeSeconds, &g.Config.FoulLimit,
		&g.Config.BonusThreshold, &g.Config.DoubleBonusThreshold, &g.Config.BonusMode,
		&g.Config.ShotClockSeconds, &g.Config.TimeoutsPerTeam,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	g.GameClock = restoreClock(g.GameClock.Seconds, gameStarted, gameRunning)
	g.ShotClock = restoreClock(g.ShotClock.Seconds, shotStarted, shotRunning)
	return &g, nil
}

func restoreClock(seconds float64, startedAt sql.NullTime, running bool) clock.Snapshot {
	s := clock.Snapshot{Seconds: seconds, Running: running}
	if startedAt.Valid {
		t := startedAt.Time.UTC()
		s.StartedAt = &t
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
