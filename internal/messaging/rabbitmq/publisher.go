// Package rabbitmq публикует outbox-события в очередь RabbitMQ.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
	"github.com/vladislavdragonenkov/roombooking/internal/messaging"
)

// channel описывает подмножество *amqp.Channel, которое нужно паблишеру.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher отправляет события в durable-очередь через default exchange.
type Publisher struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     channel
	queue  string
	logger *log.Entry
}

// Dial подключается к брокеру и объявляет очередь queue.
func Dial(url, queue string, logger *log.Entry) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open: %w", err)
	}

	publisher, err := newPublisher(ch, queue, logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	publisher.conn = conn
	return publisher, nil
}

func newPublisher(ch channel, queue string, logger *log.Entry) (*Publisher, error) {
	if queue == "" {
		queue = messaging.DefaultEventsTopic
	}
	if logger == nil {
		logger = log.WithField("component", "rabbitmq-publisher")
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("rabbitmq queue declare %q: %w", queue, err)
	}

	return &Publisher{ch: ch, queue: queue, logger: logger}, nil
}

// Publish отправляет событие как persistent JSON-сообщение.
func (p *Publisher) Publish(ctx context.Context, event domain.OutboxMessage) error {
	if p == nil || p.ch == nil {
		return errors.New("rabbitmq publisher is not initialized")
	}

	now := time.Now().UTC()
	body, err := json.Marshal(messaging.NewEnvelope(event, now))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         event.EventType,
		Timestamp:    now,
		Headers: amqp.Table{
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
		},
		Body: body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"queue":      p.queue,
			"event_type": event.EventType,
		}).Error("failed to publish message to rabbitmq")
		return fmt.Errorf("rabbitmq publish: %w", err)
	}

	p.logger.WithFields(log.Fields{
		"queue":      p.queue,
		"event_type": event.EventType,
		"outbox_id":  event.ID,
	}).Debug("message sent to rabbitmq")
	return nil
}

// Close закрывает канал и соединение.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

var _ domain.OutboxPublisher = (*Publisher)(nil)
