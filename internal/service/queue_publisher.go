// Package service holds the side effects of an attendance change that are
// not part of the database write: event publishing and the per-game lock.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/hammers-calendar/internal/queue"
)

// EventPublisher publishes attendance events.  Handlers depend on this
// interface so tests can record events instead of dialling a broker.
type EventPublisher interface {
	PublishAttendanceChanged(ctx context.Context, ev q.AttendanceChangedEvent) error
}

// AMQPPublisher publishes to RabbitMQ, opening a connection per event.
// Attendance changes are rare enough that a pooled channel is not worth
// the reconnect handling.
type AMQPPublisher struct {
	URL string
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{URL: url} }

// PublishAttendanceChanged sends ev to the attendance queue as a persistent
// JSON message.  Errors are logged and returned; callers treat them as
// non-fatal.
func (p *AMQPPublisher) PublishAttendanceChanged(ctx context.Context, ev q.AttendanceChangedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(q.AttendanceQueue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.AttendanceQueue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// NopPublisher drops events.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishAttendanceChanged(context.Context, q.AttendanceChangedEvent) error {
	return nil
}
