package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// Message is the envelope consumers receive: a routing pattern plus the
// event payload.
type Message struct {
	Pattern string `json:"pattern"`
	Data    any    `json:"data"`
	ID      string `json:"id,omitempty"`
}

func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, pattern string, data any) error {
	body, err := Encode(pattern, data)
	if err != nil {
		return err
	}

	slog.Debug("publishing message", "pattern", pattern, "exchange", p.exchange, "bytes", len(body))

	err = p.channel.Publish(
		p.exchange,
		pattern,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", pattern, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Encode builds the JSON envelope for one event with a fresh message id.
func Encode(pattern string, data any) ([]byte, error) {
	body, err := json.Marshal(Message{
		Pattern: pattern,
		Data:    data,
		ID:      uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	return body, nil
}

// NopPublisher drops events. It stands in when RabbitMQ is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
