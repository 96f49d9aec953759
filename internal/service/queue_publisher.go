// Package service holds outbound integrations; currently the RabbitMQ
// publisher for domain events. Errors are logged and returned so callers can
// ignore failures without interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/agritrack/farm-records/internal/queue"
)

// Publisher pushes domain events to RabbitMQ. It dials per publish; farmer
// registrations are rare enough that holding a connection open buys nothing.
type Publisher struct {
	URL string
}

func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// FarmerRegistered publishes a FarmerRegisteredEvent to the
// farmer.registered queue. The function never panics; any error is logged
// and returned so the caller can choose to ignore it. Messages are marked
// persistent.
func (p *Publisher) FarmerRegistered(ctx context.Context, event q.FarmerRegisteredEvent) error {
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

	// Ensure the queue exists (idempotent). Durable so messages survive
	// broker restarts.
	if _, err := ch.QueueDeclare(
		q.FarmerQueueName, // name
		true,              // durable
		false,             // autoDelete
		false,             // exclusive
		false,             // noWait
		nil,               // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                // default exchange
		q.FarmerQueueName, // routing key = queue name
		false,             // mandatory
		false,             // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
