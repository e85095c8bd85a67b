package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/courtside/scorekeeper/internal/hub"
	"github.com/courtside/scorekeeper/internal/service"
)

// LiveHandler upgrades spectator connections onto the broadcast hub.
type LiveHandler struct {
	Hub *hub.Hub
	Svc *service.Scoring

	upgrader websocket.Upgrader
}

// NewLiveHandler constructs a LiveHandler and panics on nil deps.
func NewLiveHandler(h *hub.Hub, svc *service.Scoring) *LiveHandler {
	if h == nil || svc == nil {
		panic("nil dependency passed to NewLiveHandler")
	}
	return &LiveHandler{
		Hub: h,
		Svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Spectator feed is read-only public data.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Watch upgrades the connection and subscribes it to the game's
// snapshot feed.  The game must exist; subscribing to a completed game
// is allowed and simply receives no further updates.
func (l *LiveHandler) Watch(c echo.Context) error {
	id, err := gameID(c)
	if err != nil {
		return err
	}
	if _, err := l.Svc.Snapshot(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	conn, err := l.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	l.Hub.Serve(conn, id)
	return nil
}
