// Package handler exposes the scorekeeping core over HTTP.  Handlers
// parse and respond; every rule lives in the service layer.  The
// sentinel errors of the repository package are mapped to status codes
// here so clients can distinguish a cleanly rejected write (4xx) from
// one with an unknown outcome (502, re-read before repeating).
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/courtside/scorekeeper/internal/repository"
)

// writeError translates a service error into the HTTP response.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": err.Error()})
	case errors.Is(err, repository.ErrPhase):
		return c.JSON(http.StatusConflict, echo.Map{"error": "phase_forbids", "message": err.Error()})
	case errors.Is(err, repository.ErrNothingToUndo):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "nothing_to_undo", "message": err.Error()})
	case errors.Is(err, repository.ErrGameNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "game_not_found", "message": err.Error()})
	case errors.Is(err, repository.ErrUnknownOutcome):
		// The write may or may not have applied.  502 plus the marker
		// tells the client to re-read the snapshot and ask the human
		// operator before repeating, never to auto-retry.
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "unknown_outcome", "message": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "message": "internal server error"})
	}
}

// gameID parses the :id route parameter.
func gameID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid game id")
	}
	return id, nil
}

// sessionID extracts the scorekeeper identity JWTAuth stored in the
// context.  Falls back to "anon" on the unauthenticated spectator
// routes.
func sessionID(c echo.Context) string {
	if s, ok := c.Get("session_id").(string); ok && s != "" {
		return s
	}
	return "anon"
}
