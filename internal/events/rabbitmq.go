package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPublishNacked is returned when the broker refuses a published event
var ErrPublishNacked = errors.New("publish NACK from broker")

// confirmation is the broker's answer for one publishing
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type confirmingChannel interface {
	publish(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error)
}

// amqpChannel publishes on a channel in confirm mode
type amqpChannel struct {
	ch *amqp.Channel
}

func (c amqpChannel) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
	dc, err := c.ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, errors.New("channel is not in confirm mode")
	}
	return dc, nil
}

// RabbitMQPublisher publishes order events to a topic exchange with publisher
// confirms. Each publishing waits on its own deferred confirmation.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	channel  confirmingChannel
	exchange string
}

// DialRabbitMQ connects, declares the exchange and enables confirms
func DialRabbitMQ(url, exchange string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &RabbitMQPublisher{conn: conn, ch: ch, channel: amqpChannel{ch: ch}, exchange: exchange}, nil
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, event OrderEvent) error {
	body, err := Encode(event)
	if err != nil {
		return err
	}

	conf, err := p.channel.publish(ctx, p.exchange, event.RoutingKey(), amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		Timestamp:     time.Now().UTC(),
		CorrelationId: strconv.FormatUint(uint64(event.OrderID), 10),
		Headers:       amqp.Table{"x-source": "trattoria-api"},
		Body:          body,
	})
	if err != nil {
		return err
	}

	acked, err := conf.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return fmt.Errorf("order %d: %w", event.OrderID, ErrPublishNacked)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
