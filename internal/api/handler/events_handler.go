package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Subscriber runs one push subscription until the connection drops.
type Subscriber interface {
	Serve(clientID string, conn *websocket.Conn)
}

// EventsHandler upgrades GET /v1/events to a websocket and hands it to the hub.
type EventsHandler struct {
	hub      Subscriber
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewEventsHandler accepts any origin; the bearer token is what authorizes
// the subscription.
func NewEventsHandler(hub Subscriber, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// Subscribe streams workspace events as JSON text frames.
//
// @Summary      Subscribe to workspace events
// @Description  Websocket. Browsers pass the token as the access_token query parameter.
// @Tags         events
// @Security     BearerAuth
// @Success      101
// @Failure      401  {object}  errorResponse
// @Router       /v1/events [get]
func (h *EventsHandler) Subscribe(c echo.Context) error {
	clientID, err := ctxClientID(c)
	if err != nil {
		return err
	}
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Debug().Err(err).Str("client_id", clientID).Msg("websocket upgrade failed")
		return nil
	}
	h.hub.Serve(clientID, conn)
	return nil
}
