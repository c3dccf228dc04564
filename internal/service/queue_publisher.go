package service

// Match events go to RabbitMQ.  Publishing never interrupts the request that
// triggered it: errors are logged and returned so the caller can ignore them.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/bola-na-rede/internal/logger"
	q "github.com/iliyamo/bola-na-rede/internal/queue"
)

// EventPublisher delivers match lifecycle events.  Events passed in one call
// are delivered together, in order.
type EventPublisher interface {
	Publish(ctx context.Context, evs ...q.MatchEvent) error
}

// NopPublisher drops every event.  It is used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...q.MatchEvent) error { return nil }

// AMQPPublisher publishes to the durable match.events queue, opening one
// connection per Publish call.  A sweep that expires several matches sends
// all its events over that single connection.
type AMQPPublisher struct {
	URL         string
	DialTimeout time.Duration
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url, DialTimeout: 2 * time.Second}
}

// Publish sends each event as a persistent JSON message with a fresh
// message id.  It stops at the first failure.
func (p *AMQPPublisher) Publish(ctx context.Context, evs ...q.MatchEvent) error {
	if len(evs) == 0 {
		return nil
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.DialTimeout)})
	if err != nil {
		logger.Warn("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Warn("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(q.MatchEventsQueue, true, false, false, false, nil); err != nil {
		logger.Warn("rabbitmq: queue declare failed: %v", err)
		return err
	}

	for _, ev := range evs {
		body, err := json.Marshal(ev)
		if err != nil {
			logger.Warn("rabbitmq: marshal event failed: %v", err)
			return err
		}
		pub := amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Type:         ev.Type,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		}
		if err := ch.PublishWithContext(ctx, "", q.MatchEventsQueue, false, false, pub); err != nil {
			logger.Warn("rabbitmq: publish %s failed: %v", ev.Type, err)
			return err
		}
	}
	return nil
}
