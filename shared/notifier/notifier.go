// Package notifier emits change events to websocket clients, either straight
// to the local hub or through a broker that every API instance relays from.
package notifier

//go:generate go run go.uber.org/mock/mockgen -source=./notifier.go -destination=./mocks/notifier_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"roombook/config"
	"roombook/infras/kafka"
	"roombook/infras/rabbitmq"
	"roombook/infras/websocket"
	"roombook/shared/constant"
	"roombook/shared/timezone"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	BrokerNone     = "none"
	BrokerKafka    = "kafka"
	BrokerRabbitMQ = "rabbitmq"

	defaultTopic    = "roombook.events"
	defaultExchange = "roombook.events"
)

var ErrUnknownBroker = errors.New("unknown notifier broker")

// Event carries no payload besides its name. Clients refetch what they show.
type Event struct {
	Name string    `json:"event"`
	At   time.Time `json:"at"`
}

type Notifier interface {
	// Notify emits the named event. Delivery is best effort.
	Notify(ctx context.Context, name string) error
	// Relay forwards broker events to the local hub until ctx is done. It
	// returns at once when events go straight to the hub.
	Relay(ctx context.Context)
}

type Broker interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, handle func(Event))
}

type notifierImpl struct {
	hub    websocket.Hub
	broker Broker
}

func New(cfg *config.Config, hub websocket.Hub, kafkaClient kafka.Client, rabbitClient rabbitmq.Client) (Notifier, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Notifier.Broker))

	switch name {
	case constant.Empty, BrokerNone:
		log.Info().Msg("Notifier delivers events to the local hub")

		return NewWithBroker(hub, nil), nil
	case BrokerKafka:
		log.Info().Msg("Notifier delivers events through Kafka")

		return NewWithBroker(hub, newKafkaBroker(cfg, kafkaClient)), nil
	case BrokerRabbitMQ:
		log.Info().Msg("Notifier delivers events through RabbitMQ")

		return NewWithBroker(hub, newRabbitBroker(cfg, rabbitClient)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBroker, name)
	}
}

// NewWithBroker builds a notifier on broker, or on the hub alone when broker is nil.
func NewWithBroker(hub websocket.Hub, broker Broker) Notifier {
	return &notifierImpl{
		hub:    hub,
		broker: broker,
	}
}

func (n *notifierImpl) Notify(ctx context.Context, name string) error {
	event := Event{Name: name, At: timezone.Now()}

	if n.broker == nil {
		return n.deliver(event)
	}

	err := n.broker.Publish(ctx, event)
	if err == nil {
		return nil
	}

	log.Warn().Err(err).Str("event", name).Msg("broker unavailable, delivering event locally")

	if deliverErr := n.deliver(event); deliverErr != nil {
		return deliverErr
	}

	return errors.Wrap(err, "failed to publish event")
}

func (n *notifierImpl) Relay(ctx context.Context) {
	if n.broker == nil {
		return
	}

	n.broker.Subscribe(ctx, func(event Event) {
		if err := n.deliver(event); err != nil {
			log.Warn().Err(err).Str("event", event.Name).Msg("failed to relay event")
		}
	})
}

func (n *notifierImpl) deliver(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}

	if err = n.hub.Broadcast(payload); err != nil {
		return errors.Wrap(err, "failed to broadcast event")
	}

	return nil
}
