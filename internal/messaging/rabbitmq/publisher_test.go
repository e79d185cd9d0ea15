package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
	"github.com/vladislavdragonenkov/roombooking/internal/messaging"
)

type fakeChannel struct {
	declared   []string
	published  []amqp.Publishing
	keys       []string
	publishErr error
	declareErr error
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if f.declareErr != nil {
		return amqp.Queue{}, f.declareErr
	}
	if !durable {
		return amqp.Queue{}, errors.New("queue must be durable")
	}
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	publisher, err := newPublisher(ch, "", nil)
	if err != nil {
		t.Fatalf("newPublisher failed: %v", err)
	}
	if len(ch.declared) != 1 || ch.declared[0] != messaging.DefaultEventsTopic {
		t.Fatalf("expected default queue declared, got %v", ch.declared)
	}

	err = publisher.Publish(context.Background(), domain.OutboxMessage{
		ID:            "evt-1",
		AggregateType: domain.AggregateStudent,
		AggregateID:   "s1",
		EventType:     domain.EventStudentRegistered,
		Payload:       []byte(`{"id":"s1"}`),
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(ch.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(ch.published))
	}
	msg := ch.published[0]
	if ch.keys[0] != messaging.DefaultEventsTopic {
		t.Fatalf("expected routing key %s, got %s", messaging.DefaultEventsTopic, ch.keys[0])
	}
	if msg.DeliveryMode != amqp.Persistent {
		t.Fatal("expected persistent delivery")
	}
	if msg.MessageId != "evt-1" || msg.Type != domain.EventStudentRegistered {
		t.Fatalf("unexpected message properties: id=%s type=%s", msg.MessageId, msg.Type)
	}

	var env messaging.Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		t.Fatalf("body is not an envelope: %v", err)
	}
	if env.AggregateID != "s1" {
		t.Fatalf("unexpected aggregate id %s", env.AggregateID)
	}

	if err := publisher.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !ch.closed {
		t.Fatal("expected channel to be closed")
	}
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: amqp.ErrClosed}
	publisher, err := newPublisher(ch, messaging.DefaultDLQTopic, nil)
	if err != nil {
		t.Fatalf("newPublisher failed: %v", err)
	}

	err = publisher.Publish(context.Background(), domain.OutboxMessage{ID: "evt-2"})
	if !errors.Is(err, amqp.ErrClosed) {
		t.Fatalf("expected wrapped amqp.ErrClosed, got %v", err)
	}
}

func TestNewPublisher_DeclareError(t *testing.T) {
	if _, err := newPublisher(&fakeChannel{declareErr: errors.New("access refused")}, "q", nil); err == nil {
		t.Fatal("expected declare error")
	}
}

func TestPublisher_NilIsNotInitialized(t *testing.T) {
	var publisher *Publisher
	if err := publisher.Publish(context.Background(), domain.OutboxMessage{}); err == nil {
		t.Fatal("expected error for nil publisher")
	}
}
