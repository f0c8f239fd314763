package notifier

import (
	"context"
	"encoding/json"
	"roombook/config"
	"roombook/infras/kafka"
	"roombook/infras/rabbitmq"
	"roombook/shared/constant"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

type kafkaBroker struct {
	client kafka.Client
	topic  string
	group  string
}

// newKafkaBroker gives every process its own consumer group so each API
// instance receives every event.
func newKafkaBroker(cfg *config.Config, client kafka.Client) *kafkaBroker {
	topic := cfg.Kafka.Topic
	if topic == constant.Empty {
		topic = defaultTopic
	}

	group := cfg.Kafka.ConsumerGroup
	if group == constant.Empty {
		group = cfg.App.Name
	}

	return &kafkaBroker{
		client: client,
		topic:  topic,
		group:  group + "-" + uuid.NewString(),
	}
}

func (b *kafkaBroker) Publish(ctx context.Context, event Event) error {
	return b.client.SendMessages(ctx, b.topic, kafka.Message{Key: event.Name, Value: event}) //nolint:wrapcheck
}

func (b *kafkaBroker) Subscribe(ctx context.Context, handle func(Event)) {
	err := b.client.Consume(ctx, b.group, b.topic, func(message kafkaGo.Message) {
		event, err := kafka.Decode[Event](message)
		if err != nil {
			log.Warn().Err(err).Str("topic", b.topic).Msg("dropping undecodable event")

			return
		}

		handle(event)
	})
	if err != nil {
		log.Error().Err(err).Str("topic", b.topic).Msg("kafka relay stopped")
	}
}

type rabbitBroker struct {
	client   rabbitmq.Client
	exchange string
}

func newRabbitBroker(cfg *config.Config, client rabbitmq.Client) *rabbitBroker {
	exchange := cfg.RabbitMQ.Exchange
	if exchange == constant.Empty {
		exchange = defaultExchange
	}

	return &rabbitBroker{
		client:   client,
		exchange: exchange,
	}
}

func (b *rabbitBroker) Publish(ctx context.Context, event Event) error {
	return b.client.Publish(ctx, b.exchange, event) //nolint:wrapcheck
}

func (b *rabbitBroker) Subscribe(ctx context.Context, handle func(Event)) {
	b.client.Subscribe(ctx, b.exchange, func(body []byte) {
		var event Event
		if err := json.Unmarshal(body, &event); err != nil {
			log.Warn().Err(errors.WithStack(err)).Str("exchange", b.exchange).Msg("dropping undecodable event")

			return
		}

		handle(event)
	})
}
