package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/courtside/scorekeeper/internal/service"
)

// GameHandler serves the read side: snapshots, aggregates, the recent
// ledger and the replay audit.  All of it is public; spectators poll
// these endpoints or subscribe to the live feed.
type GameHandler struct {
	Svc *service.Scoring
}

// NewGameHandler constructs a GameHandler and panics on a nil service.
func NewGameHandler(svc *service.Scoring) *GameHandler {
	if svc == nil {
		panic("nil service passed to NewGameHandler")
	}
	return &GameHandler{Svc: svc}
}

// GetSnapshot returns the authoritative game state.  Clients derive
// the displayed clock by interpolating from the embedded clock
// snapshots; they never compute new state of their own.
func (h *GameHandler) GetSnapshot(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	g, err := h.Svc.Snapshot(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

// GetStats returns every player aggregate of the game.
func (h *GameHandler) GetStats(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	stats, err := h.Svc.Stats(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"game_id": id, "stats": stats})
}

// GetEvents returns the newest ledger entries first.  The optional
// ?limit query parameter caps the page size.
func (h *GameHandler) GetEvents(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	events, err := h.Svc.RecentEvents(c.Request().Context(), id, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"game_id": id, "events": events})
}

// GetRoster returns both teams' players.
func (h *GameHandler) GetRoster(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	roster, err := h.Svc.Roster(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"game_id": id, "roster": roster})
}

// GetAudit replays the full ledger and diffs it against the stored
// aggregates, returning any mismatches.
func (h *GameHandler) GetAudit(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	report, err := h.Svc.VerifyReplay(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
