package rabbitmq

//go:generate go run go.uber.org/mock/mockgen -source=./rabbitmq.go -destination=./mocks/rabbitmq_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"roombook/config"
	"roombook/shared/constant"
	"roombook/shared/timezone"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	exchangeKind   = "fanout"
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

var errDeliveriesClosed = errors.New("deliveries channel closed")

// Client publishes to and consumes from fanout exchanges. Every subscriber
// gets its own exclusive queue, so each one sees every message.
type Client interface {
	Publish(ctx context.Context, exchange string, value any) error
	Subscribe(ctx context.Context, exchange string, handler func(body []byte))
	Close() error
}

type clientImpl struct {
	config *config.Config
	mu     sync.Mutex
	conn   *amqp.Connection
}

func New(config *config.Config) Client {
	log.Info().Msg("RabbitMQ client initialized")

	return &clientImpl{config: config}
}

func (c *clientImpl) connection() (*amqp.Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn, nil
	}

	conn, err := amqp.Dial(c.config.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	c.conn = conn

	return conn, nil
}

func (c *clientImpl) channel(exchange string) (*amqp.Channel, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	err = ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()

		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return ch, nil
}

func (c *clientImpl) Publish(ctx context.Context, exchange string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ch, err := c.channel(exchange)
	if err != nil {
		log.Error().Err(err).Str("exchange", exchange).Msg("Failed to prepare RabbitMQ channel.")

		return err
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx, exchange, constant.Empty, false, false, amqp.Publishing{
		ContentType:  constant.ContentTypeJSON,
		DeliveryMode: amqp.Transient,
		Timestamp:    timezone.Now(),
		Body:         body,
	})
	if err != nil {
		log.Error().Err(err).Str("exchange", exchange).Msg("Failed to publish message to RabbitMQ.")

		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Info().Str("exchange", exchange).Msg("Published message successfully.")

	return nil
}

// Subscribe blocks until ctx is done, reconnecting with backoff whenever the
// broker goes away.
func (c *clientImpl) Subscribe(ctx context.Context, exchange string, handler func(body []byte)) {
	backoff := initialBackoff

	for {
		err := c.consume(ctx, exchange, handler, func() { backoff = initialBackoff })
		if ctx.Err() != nil {
			log.Info().Str("exchange", exchange).Msg("Consumer context done.")

			return
		}

		log.Error().Err(err).Str("exchange", exchange).Dur("retry_in", backoff).Msg("RabbitMQ consumer stopped, reconnecting.")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, maxBackoff)
	}
}

func (c *clientImpl) consume(ctx context.Context, exchange string, handler func(body []byte), connected func()) error {
	ch, err := c.channel(exchange)
	if err != nil {
		return err
	}
	defer ch.Close()

	queue, err := ch.QueueDeclare(constant.Empty, false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err = ch.QueueBind(queue.Name, constant.Empty, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue.Name, err)
	}

	deliveries, err := ch.Consume(queue.Name, constant.Empty, true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", queue.Name, err)
	}

	connected()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck
		case delivery, ok := <-deliveries:
			if !ok {
				return errDeliveriesClosed
			}

			log.Info().Str("exchange", exchange).Msg("Received message from RabbitMQ.")

			go handler(delivery.Body)
		}
	}
}

func (c *clientImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}

	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close RabbitMQ connection: %w", err)
	}

	return nil
}
