package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Event types published over the order lifecycle
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderClosed        = "order.closed"
)

// OrderEvent is the payload sent to the kitchen and other listeners
type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     uint      `json:"order_id"`
	TableNumber uint      `json:"table_number,omitempty"`
	WaiterID    uint      `json:"waiter_id,omitempty"`
	Status      string    `json:"status"`
	Total       float64   `json:"total"`
	Lines       []Line    `json:"lines,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Line is a dish and quantity inside an OrderEvent
type Line struct {
	DishID   uint   `json:"dish_id"`
	DishName string `json:"dish_name"`
	Quantity uint   `json:"quantity"`
}

// RoutingKey builds the key listeners bind to, e.g. "order.closed"
func (e OrderEvent) RoutingKey() string {
	return e.Type
}

// Publisher delivers order events to a broker
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// Encode serializes an event for the wire
func Encode(event OrderEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	return body, nil
}

// LogPublisher writes events to the application log instead of a broker
type LogPublisher struct {
	logger *log.Logger
}

func NewLogPublisher(logger *log.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event OrderEvent) error {
	p.logger.WithFields(log.Fields{
		"event":    event.Type,
		"order_id": event.OrderID,
		"table":    event.TableNumber,
		"status":   event.Status,
		"total":    event.Total,
	}).Info("Order event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NopPublisher) Close() error                              { return nil }

// RecordingPublisher keeps published events in memory
type RecordingPublisher struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (p *RecordingPublisher) Publish(_ context.Context, event OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Events returns a copy of everything published so far
func (p *RecordingPublisher) Events() []OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]OrderEvent(nil), p.events...)
}
