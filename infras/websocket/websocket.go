package websocket

//go:generate go run go.uber.org/mock/mockgen -source=./websocket.go -destination=./mocks/websocket_mock.go -package=mocks

import (
	"fmt"
	"net/http"
	"roombook/config"
	"time"

	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxMessageSize = 512
	defaultWriteWait      = 10 * time.Second
)

// Hub keeps the open websocket sessions and pushes messages to all of them.
type Hub interface {
	HandleRequest(writer http.ResponseWriter, request *http.Request) error
	Broadcast(message []byte) error
	Sessions() int
	Close() error
}

type hubImpl struct {
	melody *melody.Melody
}

func New(cfg *config.Config) Hub {
	m := melody.New()

	m.Config.MaxMessageSize = defaultMaxMessageSize
	if cfg.Websocket.MaxMessageSize > 0 {
		m.Config.MaxMessageSize = cfg.Websocket.MaxMessageSize
	}

	m.Config.WriteWait = defaultWriteWait
	if cfg.Websocket.WriteWaitSeconds > 0 {
		m.Config.WriteWait = time.Duration(cfg.Websocket.WriteWaitSeconds) * time.Second
	}

	m.HandleConnect(func(session *melody.Session) {
		log.Debug().Str("remote", session.Request.RemoteAddr).Msg("websocket session opened")
	})

	m.HandleDisconnect(func(session *melody.Session) {
		log.Debug().Str("remote", session.Request.RemoteAddr).Msg("websocket session closed")
	})

	m.HandleError(func(session *melody.Session, err error) {
		log.Warn().Err(err).Str("remote", session.Request.RemoteAddr).Msg("websocket session error")
	})

	log.Info().Msg("Websocket hub initialized")

	return &hubImpl{melody: m}
}

func (h *hubImpl) HandleRequest(writer http.ResponseWriter, request *http.Request) error {
	if err := h.melody.HandleRequest(writer, request); err != nil {
		return fmt.Errorf("failed to upgrade websocket: %w", err)
	}

	return nil
}

// Broadcast is a no-op when nobody is connected.
func (h *hubImpl) Broadcast(message []byte) error {
	if h.melody.Len() == 0 {
		return nil
	}

	if err := h.melody.Broadcast(message); err != nil {
		return fmt.Errorf("failed to broadcast message: %w", err)
	}

	return nil
}

func (h *hubImpl) Sessions() int {
	return h.melody.Len()
}

func (h *hubImpl) Close() error {
	if err := h.melody.Close(); err != nil {
		return fmt.Errorf("failed to close websocket hub: %w", err)
	}

	return nil
}
