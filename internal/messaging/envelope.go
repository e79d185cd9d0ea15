// Package messaging содержит формат сообщений, общий для брокеров событий.
package messaging

import (
	"encoding/json"
	"time"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

// Имена очередей и топиков событий бронирования.
const (
	DefaultEventsTopic = "booking.events"
	DefaultDLQTopic    = "booking.dlq"
)

// Envelope задаёт JSON-представление outbox-сообщения в брокере.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// NewEnvelope оборачивает outbox-сообщение. Пустой payload кодируется как null.
func NewEnvelope(msg domain.OutboxMessage, publishedAt time.Time) Envelope {
	payload := json.RawMessage(msg.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return Envelope{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       payload,
		PublishedAt:   publishedAt.UTC(),
	}
}

// PartitionKey возвращает ключ, сохраняющий порядок событий одного агрегата.
func PartitionKey(msg domain.OutboxMessage) string {
	if msg.AggregateID != "" {
		return msg.AggregateType + ":" + msg.AggregateID
	}
	return msg.ID
}
