package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
	"github.com/vladislavdragonenkov/roombooking/internal/messaging"
)

// OutboxTopicPublisher публикует outbox-сообщения в заданный Kafka topic.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer, topic string) *OutboxTopicPublisher {
	if topic == "" {
		topic = messaging.DefaultEventsTopic
	}
	return &OutboxTopicPublisher{producer: producer, topic: topic}
}

// Publish отправляет событие; ключом партиционирования служит агрегат события.
func (p *OutboxTopicPublisher) Publish(ctx context.Context, event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return errors.New("kafka outbox publisher is not initialized")
	}

	headers := map[string]string{
		HeaderEventType:     event.EventType,
		HeaderAggregateType: event.AggregateType,
		HeaderMessageID:     event.ID,
	}
	return p.producer.Send(ctx, p.topic, messaging.PartitionKey(event), messaging.NewEnvelope(event, time.Now()), headers)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
