package ws

import (
	"net/http"
	"roombook/infras/otel"
	"roombook/infras/websocket"
	"roombook/shared/constant"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	hub  websocket.Hub
	otel otel.Otel
}

func New(hub websocket.Hub, otel otel.Otel) Handler {
	return Handler{
		hub:  hub,
		otel: otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/ws", handler.Subscribe)
}

// Subscribe upgrades the connection and streams booking_updated events.
// @Summary Subscribe to reservation events
// @Description Upgrades to a websocket. Every change to a reservation is pushed as {"event":"booking_updated"}.
// @Tags Realtime
// @Success 101 "Switching Protocols"
// @Failure 400 "Bad handshake"
// @Router /v1/ws [get]
func (handler *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	_, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Subscribe")
	defer scope.End()

	// The upgrader answers failed handshakes itself, so only the error is recorded.
	if err := handler.hub.HandleRequest(w, r); err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket session ended with error")
	}
}
