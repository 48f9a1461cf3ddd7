// Package amqp forwards invalidation events to a RabbitMQ fanout exchange.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/events"
)

// channel is the subset of *amqp091.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type Publisher struct {
	conn         *amqp091.Connection
	channel      channel
	exchangeName string
	timeout      time.Duration
}

func NewPublisher(url, exchangeName string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchangeName, // name
		"fanout",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{
		conn:         conn,
		channel:      ch,
		exchangeName: exchangeName,
		timeout:      5 * time.Second,
	}, nil
}

// Message is the JSON body of a published event.
type Message struct {
	Topics []string  `json:"topics"`
	Cause  string    `json:"cause"`
	UserID string    `json:"userId,omitempty"`
	Failed bool      `json:"failed"`
	At     time.Time `json:"at"`
}

func encode(event events.Event) ([]byte, error) {
	msg := Message{
		Cause:  event.Cause,
		Failed: event.Failed,
		At:     event.At,
	}
	if !event.UserID.IsNil() {
		msg.UserID = event.UserID.String()
	}
	for _, t := range event.Topics {
		msg.Topics = append(msg.Topics, string(t))
	}
	return json.Marshal(msg)
}

// Publish sends event to the exchange.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	body, err := encode(event)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName, // exchange
		"",             // routing key, ignored by fanout
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   event.At,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Handle is an events.Handler. Delivery failures are logged and dropped.
func (p *Publisher) Handle(ctx context.Context, event events.Event) {
	if err := p.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithField("cause", event.Cause).Warn("AMQP.Publish.Error")
	}
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
