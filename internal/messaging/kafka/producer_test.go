package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roombooking/internal/version"
)

func TestProducer_Send(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, log.WithField("component", "kafka-producer-test"))

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "booking.events" {
			t.Errorf("unexpected topic %s", msg.Topic)
		}
		if len(msg.Headers) != 2 || string(msg.Headers[0].Key) != HeaderProducer || string(msg.Headers[1].Key) != HeaderEventType {
			t.Errorf("unexpected headers %+v", msg.Headers)
		}
		if string(msg.Headers[0].Value) != version.ServiceName {
			t.Errorf("unexpected producer header %s", msg.Headers[0].Value)
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var decoded map[string]string
		return json.Unmarshal(value, &decoded)
	})

	err := producer.Send(context.Background(), "booking.events", "room:r1", map[string]string{"id": "r1"}, map[string]string{
		HeaderEventType: "room.added",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_Send_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	if err := producer.Send(context.Background(), "booking.events", "key", struct{}{}, nil); err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_Send_CanceledContext(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := producer.Send(ctx, "booking.events", "key", struct{}{}, nil); err == nil {
		t.Fatal("expected context error, got nil")
	}

	// Ожиданий не было: сообщение не должно уйти в producer.
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}
