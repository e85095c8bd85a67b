package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/courtside/scorekeeper/internal/service"
	"github.com/courtside/scorekeeper/internal/session"
)

// ClockHandler serves the explicit clock operations.  The server holds
// the only authoritative clock values; clients animate by
// interpolating from the returned snapshot.
type ClockHandler struct {
	Svc      *service.Scoring
	Sessions *session.Registry
}

// NewClockHandler constructs a ClockHandler and panics on nil deps.
func NewClockHandler(svc *service.Scoring, sessions *session.Registry) *ClockHandler {
	if svc == nil || sessions == nil {
		panic("nil dependency passed to NewClockHandler")
	}
	return &ClockHandler{Svc: svc, Sessions: sessions}
}

func clockID(c echo.Context) (service.ClockID, error) {
	id := service.ClockID(c.Param("clock"))
	if id != service.ClockGame && id != service.ClockShot {
		return "", echo.NewHTTPError(http.StatusBadRequest, "clock must be \"game\" or \"shot\"")
	}
	return id, nil
}

// Start starts the selected clock.  Idempotent: a second start from
// another session is a no-op.
func (h *ClockHandler) Start(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	clk, err := clockID(c)
	if err != nil {
		return err
	}
	g, err := h.Svc.StartClock(c.Request().Context(), id, clk)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

// Pause stops the selected clock.  Pausing the game clock also stops
// the shot clock.
func (h *ClockHandler) Pause(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	clk, err := clockID(c)
	if err != nil {
		return err
	}
	g, err := h.Svc.PauseClock(c.Request().Context(), id, clk)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

type resetClockRequest struct {
	Seconds   float64 `json:"seconds"`
	AutoStart bool    `json:"auto_start"`
}

// Reset sets the selected clock to an explicit value, optionally
// starting it immediately (24 for a new possession, 14 for the
// offensive-rebound partial reset).  An explicit shot-clock reset
// re-arms this session's violation watcher.
func (h *ClockHandler) Reset(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	clk, err := clockID(c)
	if err != nil {
		return err
	}
	var req resetClockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body", "message": err.Error()})
	}
	g, err := h.Svc.ResetClock(c.Request().Context(), id, clk, req.Seconds, req.AutoStart)
	if err != nil {
		return writeError(c, err)
	}
	if clk == service.ClockShot {
		h.Sessions.For(sessionID(c)).RearmViolation()
	}
	return c.JSON(http.StatusOK, g)
}

type retroPauseRequest struct {
	AtSeconds float64 `json:"at_seconds"`
}

// RetroPause corrects the game clock back to the instant a shot-clock
// violation was observed on the reporting device, compensating for the
// round-trip latency between the expiry and this request.
func (h *ClockHandler) RetroPause(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	var req retroPauseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body", "message": err.Error()})
	}
	g, err := h.Svc.RetroactivePause(c.Request().Context(), id, req.AtSeconds)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, g)
}
