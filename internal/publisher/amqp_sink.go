// internal/publisher/amqp_sink.go
package publisher

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPChannel is the subset of *amqp.Channel used to publish.
type AMQPChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSink publishes ledger events to a RabbitMQ exchange.
type AMQPSink struct {
	channel  AMQPChannel
	conn     *amqp.Connection
	exchange string
}

// NewAMQPSink wraps an open channel.
func NewAMQPSink(channel AMQPChannel, exchange string) *AMQPSink {
	return &AMQPSink{channel: channel, exchange: exchange}
}

// DialAMQP connects to url and declares a durable topic exchange.
func DialAMQP(url, exchange string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	sink := NewAMQPSink(ch, exchange)
	sink.conn = conn
	return sink, nil
}

// RoutingKey returns the topic routing key for msg, e.g. "ledger.transfer".
func RoutingKey(msg Message) string {
	return "ledger." + string(msg.Kind)
}

// Send implements Sink.
func (s *AMQPSink) Send(ctx context.Context, msg Message, payload []byte) error {
	return s.channel.PublishWithContext(ctx, s.exchange, RoutingKey(msg), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.Key(),
		Timestamp:    msg.At,
		Body:         payload,
	})
}

// Close implements Sink.
func (s *AMQPSink) Close() error {
	err := s.channel.Close()
	if s.conn != nil {
		err = errors.Join(err, s.conn.Close())
	}
	return err
}
