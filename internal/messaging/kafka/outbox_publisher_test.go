package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
	"github.com/vladislavdragonenkov/roombooking/internal/messaging"
)

func TestOutboxPublisher_Publish(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "reservation:res1" {
			t.Errorf("unexpected key %s", key)
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var env messaging.Envelope
		if err := json.Unmarshal(value, &env); err != nil {
			return err
		}
		if env.EventType != domain.EventReservationCreated || env.ID != "outbox-1" {
			t.Errorf("unexpected envelope %+v", env)
		}
		return nil
	})

	publisher := NewOutboxPublisher(newProducer(mockProducer, log.WithField("component", "kafka-outbox-publisher-test")), "")

	err := publisher.Publish(context.Background(), domain.OutboxMessage{
		ID:            "outbox-1",
		AggregateType: domain.AggregateReservation,
		AggregateID:   "res1",
		EventType:     domain.EventReservationCreated,
		Payload:       []byte(`{"id":"res1"}`),
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishProducerError(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewOutboxPublisher(newProducer(mockProducer, nil), messaging.DefaultDLQTopic)

	err := publisher.Publish(context.Background(), domain.OutboxMessage{
		ID:            "outbox-2",
		AggregateType: domain.AggregateRoom,
		AggregateID:   "r1",
		EventType:     domain.EventRoomDeleted,
	})
	if err == nil {
		t.Fatal("expected publish error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishNilProducer(t *testing.T) {
	t.Parallel()

	publisher := NewOutboxPublisher(nil, "")
	if err := publisher.Publish(context.Background(), domain.OutboxMessage{ID: "outbox-3"}); err == nil {
		t.Fatal("expected error for nil producer")
	}
}
