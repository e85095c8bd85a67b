package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/courtside/scorekeeper/internal/phase"
	"github.com/courtside/scorekeeper/internal/service"
)

// PhaseHandler serves the lifecycle transitions.
type PhaseHandler struct {
	Svc *service.Scoring
}

// NewPhaseHandler constructs a PhaseHandler and panics on a nil
// service.
func NewPhaseHandler(svc *service.Scoring) *PhaseHandler {
	if svc == nil {
		panic("nil service passed to NewPhaseHandler")
	}
	return &PhaseHandler{Svc: svc}
}

type transitionRequest struct {
	Action phase.Action `json:"action"`
}

// Transition applies a lifecycle action.  When the response carries
// overtime_decision the game stayed paused and the scorekeeper must
// follow up with START_OVERTIME or END_AS_TIE.
func (h *PhaseHandler) Transition(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body", "message": err.Error()})
	}
	res, err := h.Svc.Transition(c.Request().Context(), id, req.Action, sessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
