package app

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
	"github.com/vladislavdragonenkov/roombooking/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/roombooking/internal/messaging/rabbitmq"
)

// eventPublishers хранит основной и DLQ-паблишеры outbox вместе с функцией освобождения.
type eventPublishers struct {
	events domain.OutboxPublisher
	dlq    domain.OutboxPublisher
	close  func() error
}

// initPublishers подключается к брокеру событий. Для BrokerNone возвращает nil, nil:
// тогда сервисы работают без outbox.
func initPublishers(cfg Config, logger *log.Entry) (*eventPublishers, error) {
	switch cfg.EventsBroker {
	case "", BrokerNone:
		return nil, nil

	case BrokerKafka:
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return nil, err
		}
		logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		return &eventPublishers{
			events: kafka.NewOutboxPublisher(producer, cfg.EventsTopic),
			dlq:    kafka.NewOutboxPublisher(producer, cfg.DLQTopic),
			close:  producer.Close,
		}, nil

	case BrokerRabbitMQ:
		events, err := rabbitmq.Dial(cfg.AMQPURL, cfg.EventsTopic, logger.WithField("queue", cfg.EventsTopic))
		if err != nil {
			return nil, err
		}
		dlq, err := rabbitmq.Dial(cfg.AMQPURL, cfg.DLQTopic, logger.WithField("queue", cfg.DLQTopic))
		if err != nil {
			_ = events.Close()
			return nil, err
		}
		logger.Info("rabbitmq publisher initialized")
		return &eventPublishers{
			events: events,
			dlq:    dlq,
			close: func() error {
				return errors.Join(events.Close(), dlq.Close())
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported events broker %q", cfg.EventsBroker)
	}
}

// closePublishers освобождает соединения с брокером, если они есть.
func closePublishers(publishers *eventPublishers, logger *log.Entry) {
	if publishers == nil || publishers.close == nil {
		return
	}
	if err := publishers.close(); err != nil {
		logger.WithError(err).Warn("failed to close event publishers")
		return
	}
	logger.Info("event publishers closed")
}
