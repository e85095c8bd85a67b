// Package router wires handlers to routes.  Reads and the live feed
// are public; every write requires a scorekeeper bearer token and
// passes through the rate limiter.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/courtside/scorekeeper/internal/handler"
	"github.com/courtside/scorekeeper/internal/middleware"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Game    *handler.GameHandler
	Score   *handler.ScoreHandler
	Clock   *handler.ClockHandler
	Phase   *handler.PhaseHandler
	Session *handler.SessionHandler
	Live    *handler.LiveHandler
}

// RegisterRoutes registers the health check and the public read
// endpoints.  Spectators need no token to follow a game.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)

	e.GET("/v1/games/:id", h.Game.GetSnapshot)
	e.GET("/v1/games/:id/stats", h.Game.GetStats)
	e.GET("/v1/games/:id/events", h.Game.GetEvents)
	e.GET("/v1/games/:id/roster", h.Game.GetRoster)
	e.GET("/v1/games/:id/audit", h.Game.GetAudit)
	e.GET("/v1/games/:id/live", h.Live.Watch)
}

// RegisterScorekeeper registers the protected write endpoints.  The
// JWT middleware injects the session identity; RequireRole limits
// writes to scorekeepers; the token bucket guards against runaway
// clients.
func RegisterScorekeeper(e *echo.Echo, h Handlers, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(middleware.RoleScorekeeper))
	if limiter != nil {
		g.Use(limiter)
	}

	g.POST("/games/:id/events", h.Score.RecordEvent)
	g.POST("/games/:id/undo", h.Score.ReverseEvent)

	g.POST("/games/:id/clock/:clock/start", h.Clock.Start)
	g.POST("/games/:id/clock/:clock/pause", h.Clock.Pause)
	g.POST("/games/:id/clock/:clock/reset", h.Clock.Reset)
	g.POST("/games/:id/clock/retro-pause", h.Clock.RetroPause)

	g.POST("/games/:id/transition", h.Phase.Transition)

	g.GET("/session", h.Session.GetState)
	g.POST("/session/prompt/resolve", h.Session.ResolvePrompt)
	g.DELETE("/session/prompt", h.Session.DismissPrompt)
	g.POST("/session/freethrows", h.Session.BeginFreeThrows)
	g.DELETE("/session/freethrows", h.Session.AbandonFreeThrows)
	g.POST("/games/:id/session/violation/observe", h.Session.ObserveViolation)
	g.DELETE("/session/violation", h.Session.DismissViolation)
}
