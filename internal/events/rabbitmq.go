package events

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// DefaultExchange is the topic exchange events are published to.
const DefaultExchange = "kira.events"

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type dialFunc func(url, exchange string) (io.Closer, amqpChannel, error)

// RabbitMQPublisher publishes events to a durable topic exchange. A closed
// channel or a failed publish drops the connection; the next Publish dials
// again.
type RabbitMQPublisher struct {
	url      string
	exchange string
	dial     dialFunc
	logger   zerolog.Logger

	mu      sync.Mutex
	conn    io.Closer
	channel amqpChannel
}

func NewRabbitMQPublisher(url, exchange string, logger zerolog.Logger) (*RabbitMQPublisher, error) {
	return newRabbitMQPublisher(url, exchange, logger, dialRabbitMQ)
}

func newRabbitMQPublisher(url, exchange string, logger zerolog.Logger, dial dialFunc) (*RabbitMQPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &RabbitMQPublisher{url: url, exchange: exchange, dial: dial, logger: logger}
	if err := p.connect(); err != nil {
		return nil, err
	}
	logger.Info().Str("exchange", exchange).Msg("events: rabbitmq publisher connected")
	return p, nil
}

func dialRabbitMQ(url, exchange string) (io.Closer, amqpChannel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}
	return conn, ch, nil
}

// connect must be called with mu held or before the publisher is shared.
func (p *RabbitMQPublisher) connect() error {
	conn, ch, err := p.dial(p.url, p.exchange)
	if err != nil {
		return err
	}
	p.conn, p.channel = conn, ch
	return nil
}

func (p *RabbitMQPublisher) disconnect() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.channel = nil, nil
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil || p.channel.IsClosed() {
		p.disconnect()
		if err := p.connect(); err != nil {
			return fmt.Errorf("reconnect rabbitmq: %w", err)
		}
		p.logger.Info().Str("exchange", p.exchange).Msg("events: rabbitmq publisher reconnected")
	}

	err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	})
	if err != nil {
		p.disconnect()
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	p.logger.Debug().Str("routing_key", routingKey).Int("size", len(payload)).Msg("events: published")
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Warn().Err(err).Msg("events: close channel")
		}
	}
	var err error
	if p.conn != nil {
		err = p.conn.Close()
	}
	p.conn, p.channel = nil, nil
	return err
}
