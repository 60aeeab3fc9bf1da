// Package queue_publisher publishes board events to RabbitMQ.  Errors are
// logged and returned so callers can ignore them without interrupting the
// request that produced the event.
package queue_publisher

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	q "github.com/iliyamo/arcade-reservation-board/internal/queue"
)

// Publisher dials the broker per publish.  Board events are rare (a
// handful per minute) so there is no connection to keep healthy.
type Publisher struct {
	url string
	log *zap.Logger
}

// New returns a Publisher for the broker at url.
func New(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// Publish sends ev to the board.events queue as a persistent message.
func (p *Publisher) Publish(ctx context.Context, ev q.BoardEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.BoardQueueName, // name
		true,             // durable
		false,            // autoDelete
		false,            // exclusive
		false,            // noWait
		nil,              // args
	); err != nil {
		p.log.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("rabbitmq: marshal event failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",               // default exchange
		q.BoardQueueName, // routing key = queue name
		false,            // mandatory
		false,            // immediate
		pub,
	); err != nil {
		p.log.Warn("rabbitmq: publish failed", zap.Error(err), zap.String("type", ev.Type))
		return err
	}
	return nil
}
