package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/courtside/scorekeeper/internal/rules"
	"github.com/courtside/scorekeeper/internal/service"
	"github.com/courtside/scorekeeper/internal/session"
)

// SessionHandler exposes this session's ephemeral follow-up state:
// the pending prompt, the free-throw sequence and the shot-clock
// violation signal.  Everything here is convenience layered over the
// ledger; dismissing or losing it never blocks a write.
type SessionHandler struct {
	Svc      *service.Scoring
	Sessions *session.Registry
}

// NewSessionHandler constructs a SessionHandler and panics on nil
// deps.
func NewSessionHandler(svc *service.Scoring, sessions *session.Registry) *SessionHandler {
	if svc == nil || sessions == nil {
		panic("nil dependency passed to NewSessionHandler")
	}
	return &SessionHandler{Svc: svc, Sessions: sessions}
}

// GetState returns the session's prompt and free-throw sequence.
func (h *SessionHandler) GetState(c echo.Context) error {
	ctrl := h.Sessions.For(sessionID(c))
	return c.JSON(http.StatusOK, echo.Map{
		"prompt":              ctrl.Prompt(),
		"free_throw_sequence": ctrl.FreeThrows(),
	})
}

// ResolvePrompt closes the pending prompt in favor of a follow-up
// write and returns it; the client then records the chosen assist or
// rebound through the events endpoint.
func (h *SessionHandler) ResolvePrompt(c echo.Context) error {
	p := h.Sessions.For(sessionID(c)).Resolve()
	if p == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no_pending_prompt"})
	}
	return c.JSON(http.StatusOK, p)
}

// DismissPrompt drops the pending prompt with no write.
func (h *SessionHandler) DismissPrompt(c echo.Context) error {
	h.Sessions.For(sessionID(c)).Dismiss()
	return c.NoContent(http.StatusNoContent)
}

type beginFreeThrowsRequest struct {
	PlayerID  uint64 `json:"player_id"`
	Attempts  int    `json:"attempts"`
	OneAndOne bool   `json:"one_and_one"`
}

// BeginFreeThrows seeds the sequence slot manually, used when the
// scorekeeper re-opens a sequence after a correction.  The normal path
// seeds it automatically from the foul award.
func (h *SessionHandler) BeginFreeThrows(c echo.Context) error {
	var req beginFreeThrowsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body", "message": err.Error()})
	}
	if req.PlayerID == 0 || req.Attempts <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body", "message": "player_id and attempts are required"})
	}
	seq := h.Sessions.For(sessionID(c)).BeginFreeThrows(req.PlayerID, rules.Award{
		Attempts:  req.Attempts,
		OneAndOne: req.OneAndOne,
	})
	return c.JSON(http.StatusCreated, seq)
}

// AbandonFreeThrows drops the in-progress sequence.
func (h *SessionHandler) AbandonFreeThrows(c echo.Context) error {
	h.Sessions.For(sessionID(c)).AbandonFreeThrows()
	return c.NoContent(http.StatusNoContent)
}

// ObserveViolation feeds the latest snapshot to this session's
// violation watcher and reports whether the shot clock has expired.
// The client calls this from its local countdown loop; the watcher
// fires at most once per armed period.
func (h *SessionHandler) ObserveViolation(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	g, err := h.Svc.Snapshot(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	v := h.Sessions.For(sessionID(c)).ObserveClocks(g.ShotClock, g.GameClock, time.Now().UTC())
	if v == nil {
		return c.JSON(http.StatusOK, echo.Map{"violation": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"violation": v})
}

// DismissViolation acknowledges the violation signal without rearming
// the watcher.
func (h *SessionHandler) DismissViolation(c echo.Context) error {
	h.Sessions.For(sessionID(c)).DismissViolation()
	return c.NoContent(http.StatusNoContent)
}
