package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/courtside/scorekeeper/internal/model"
	"github.com/courtside/scorekeeper/internal/rules"
	"github.com/courtside/scorekeeper/internal/service"
	"github.com/courtside/scorekeeper/internal/session"
)

// ScoreHandler serves the write side: ledger appends and reversals.
// After each accepted write it feeds the session's controller so the
// follow-up prompt (assist after a make, rebound after a miss) and the
// free-throw sequence ride along in the response.  Prompt state is
// additive convenience only; a write never fails because of it.
type ScoreHandler struct {
	Svc      *service.Scoring
	Sessions *session.Registry
}

// NewScoreHandler constructs a ScoreHandler and panics on nil deps.
func NewScoreHandler(svc *service.Scoring, sessions *session.Registry) *ScoreHandler {
	if svc == nil || sessions == nil {
		panic("nil dependency passed to NewScoreHandler")
	}
	return &ScoreHandler{Svc: svc, Sessions: sessions}
}

type recordEventRequest struct {
	PlayerID *uint64           `json:"player_id,omitempty"`
	TeamID   uint64            `json:"team_id"`
	Type     model.EventType   `json:"type"`
	Detail   model.EventDetail `json:"detail"`
}

type recordEventResponse struct {
	*service.RecordResult
	Prompt     *session.PendingPrompt   `json:"prompt,omitempty"`
	FreeThrows *rules.FreeThrowSequence `json:"free_throw_sequence,omitempty"`
}

// RecordEvent appends one scorekeeper action to the ledger.
func (h *ScoreHandler) RecordEvent(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	var req recordEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body", "message": err.Error()})
	}

	sid := sessionID(c)
	res, err := h.Svc.RecordEvent(c.Request().Context(), service.RecordRequest{
		GameID:     id,
		PlayerID:   req.PlayerID,
		TeamID:     req.TeamID,
		Type:       req.Type,
		Detail:     req.Detail,
		RecordedBy: sid,
	})
	if err != nil {
		return writeError(c, err)
	}

	ctrl := h.Sessions.For(sid)
	h.chain(c, ctrl, res)

	return c.JSON(http.StatusCreated, recordEventResponse{
		RecordResult: res,
		Prompt:       ctrl.Prompt(),
		FreeThrows:   ctrl.FreeThrows(),
	})
}

// chain updates the session controller from a committed write: seeds
// the free-throw sequence from a foul award, advances it on free-throw
// entries, and opens the assist or rebound prompt.  Failures to look
// up candidates drop the prompt silently.
func (h *ScoreHandler) chain(c echo.Context, ctrl *session.Controller, res *service.RecordResult) {
	e := &res.Event
	g := res.Game

	if res.Award != nil && res.Award.Attempts > 0 && e.Detail.FouledPlayerID != nil {
		ctrl.BeginFreeThrows(*e.Detail.FouledPlayerID, *res.Award)
	}

	if e.Type == model.EventFreeThrow && e.PlayerID != nil && e.Detail.Made != nil {
		outcome, ok := ctrl.ReportFreeThrow(*e.Detail.Made)
		if ok && outcome.ReboundLive {
			if onCourt := h.onCourt(c, g.ID, 0); len(onCourt) > 0 {
				ctrl.OfferRebound(g.ID, *e.PlayerID, e.TeamID, g.OpponentOf(e.TeamID), onCourt)
			}
		}
		return
	}

	switch {
	case session.ShouldPromptAssist(e):
		teammates := h.onCourt(c, g.ID, e.TeamID)
		ctrl.OfferAssist(g.ID, *e.PlayerID, e.TeamID, g.OpponentOf(e.TeamID), e.Detail.PointValue, teammates)
	case session.ShouldPromptRebound(e):
		if onCourt := h.onCourt(c, g.ID, 0); len(onCourt) > 0 {
			ctrl.OfferRebound(g.ID, *e.PlayerID, e.TeamID, g.OpponentOf(e.TeamID), onCourt)
		}
	}
}

// onCourt lists the on-court player ids, optionally restricted to one
// team (teamID 0 spans both).
func (h *ScoreHandler) onCourt(c echo.Context, gameID, teamID uint64) []uint64 {
	stats, err := h.Svc.Stats(c.Request().Context(), gameID)
	if err != nil {
		return nil
	}
	ids := make([]uint64, 0, 10)
	for i := range stats {
		st := &stats[i]
		if !st.OnCourt {
			continue
		}
		if teamID != 0 && st.TeamID != teamID {
			continue
		}
		ids = append(ids, st.PlayerID)
	}
	return ids
}

type reverseEventRequest struct {
	EventID  *uint64         `json:"event_id,omitempty"`
	PlayerID uint64          `json:"player_id"`
	Type     model.EventType `json:"type"`
	Made     *bool           `json:"made,omitempty"`
}

// ReverseEvent undoes one ledger entry: by explicit event id when
// given, otherwise the most recent unreversed entry matching
// (player, type[, made]).
func (h *ScoreHandler) ReverseEvent(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	var req reverseEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body", "message": err.Error()})
	}

	sid := sessionID(c)
	res, err := h.Svc.ReverseEvent(c.Request().Context(), service.ReverseRequest{
		GameID:     id,
		EventID:    req.EventID,
		PlayerID:   req.PlayerID,
		Type:       req.Type,
		Made:       req.Made,
		RecordedBy: sid,
	})
	if err != nil {
		return writeError(c, err)
	}

	// Undoing the foul that seeded the free throws abandons the rest of
	// the sequence.
	if res.Event.Type == model.EventFoul {
		h.Sessions.For(sid).AbandonFreeThrows()
	}
	return c.JSON(http.StatusOK, res)
}
