package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/courtside/scorekeeper/internal/model"
)

// EventRepo provides access to the append-only game_events ledger.
// Entries are immutable once written; undo is an update of the
// reversed flag, never a delete, so the full play-by-play history
// survives every correction.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, game_id, player_id, team_id, type, detail, quarter,
       game_clock_seconds, reversed, reversed_at, recorded_by, created_at`

// InsertTx appends a ledger entry within the caller's transaction and
// populates the generated ID and server timestamp on the event.
// CreatedAt is assigned here, never taken from the client, so ledger
// order is immune to client clock skew.
func (r *EventRepo) InsertTx(ctx context.Context, tx *sql.Tx, e *model.GameEvent) error {
	detail, err := json.Marshal(e.Detail)
	if err != nil {
		return err
	}
	e.CreatedAt = time.Now().UTC()
	const q = `INSERT INTO game_events
	       (game_id, player_id, team_id, type, detail, quarter, game_clock_seconds, recorded_by, created_at)
	       VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		e.GameID, nullID(e.PlayerID), e.TeamID, e.Type, detail,
		e.Quarter, e.GameClockSeconds, e.RecordedBy, e.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// GetForUpdateTx loads a single ledger entry by ID with a row lock,
// scoped to the game so one game's undo can never touch another's
// ledger.  Returns sql.ErrNoRows when absent.
func (r *EventRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, gameID, eventID uint64) (*model.GameEvent, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM game_events WHERE id = ? AND game_id = ? FOR UPDATE`,
		eventID, gameID)
	return scanEvent(row)
}

// LatestUnreversedTx finds the most recent unreversed entry matching
// (player, type) and optionally the made flag, locking it for the
// reversal.  This is the documented fallback undo filter; callers that
// know the concrete event ID should use GetForUpdateTx instead.
func (r *EventRepo) LatestUnreversedTx(ctx context.Context, tx *sql.Tx, gameID, playerID uint64, typ model.EventType, made *bool) (*model.GameEvent, error) {
	q, args := latestUnreversedQuery(gameID, playerID, typ, made)
	row := tx.QueryRowContext(ctx, q, args...)
	return scanEvent(row)
}

// latestUnreversedQuery builds the fallback-undo lookup.  The made
// filter compares the unquoted JSON scalar against the text
// "true"/"false": binding a Go bool would reach MySQL as an integer,
// and a JSON boolean never compares equal to a JSON integer.
func latestUnreversedQuery(gameID, playerID uint64, typ model.EventType, made *bool) (string, []any) {
	q := `SELECT ` + eventColumns + ` FROM game_events
	      WHERE game_id = ? AND player_id = ? AND type = ? AND reversed = 0`
	args := []any{gameID, playerID, typ}
	if made != nil {
		q += ` AND detail->>'$.made' = ?`
		args = append(args, strconv.FormatBool(*made))
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT 1 FOR UPDATE`
	return q, args
}

// MarkReversedTx flags an entry as reversed.  The WHERE guard makes a
// second reversal of the same entry a no-op reported as
// ErrNothingToUndo, which enforces at-most-once undo even when two
// sessions race on the same event.
func (r *EventRepo) MarkReversedTx(ctx context.Context, tx *sql.Tx, eventID uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE game_events SET reversed = 1, reversed_at = ? WHERE id = ? AND reversed = 0`,
		time.Now().UTC(), eventID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNothingToUndo
	}
	return nil
}

// ListRecent returns the newest entries first, up to limit, for the
// play-by-play view.
func (r *EventRepo) ListRecent(ctx context.Context, gameID uint64, limit int) ([]model.GameEvent, error) {
	const q = `SELECT ` + eventColumns + ` FROM game_events
	           WHERE game_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	return r.list(ctx, q, gameID, limit)
}

// ListAll returns the complete ledger in append order, reversed
// entries included.  This is the input to a full replay.
func (r *EventRepo) ListAll(ctx context.Context, gameID uint64) ([]model.GameEvent, error) {
	const q = `SELECT ` + eventColumns + ` FROM game_events
	           WHERE game_id = ? ORDER BY created_at ASC, id ASC`
	return r.list(ctx, q, gameID)
}

func (r *EventRepo) list(ctx context.Context, q string, args ...any) ([]model.GameEvent, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.GameEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func scanEvent(row rowScanner) (*model.GameEvent, error) {
	var e model.GameEvent
	var playerID sql.NullInt64
	var reversedAt sql.NullTime
	var detail []byte
	err := row.Scan(
		&e.ID, &e.GameID, &playerID, &e.TeamID, &e.Type, &detail,
		&e.Quarter, &e.GameClockSeconds, &e.Reversed, &reversedAt,
		&e.RecordedBy, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if playerID.Valid {
		id := uint64(playerID.Int64)
		e.PlayerID = &id
	}
	if reversedAt.Valid {
		t := reversedAt.Time.UTC()
		e.ReversedAt = &t
	}
	if len(detail) > 0 && !strings.EqualFold(string(detail), "null") {
		if err := json.Unmarshal(detail, &e.Detail); err != nil {
			return nil, err
		}
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func nullID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}
