package domain

import (
	"context"
	"time"
)

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(ctx context.Context, event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// HistoryRepository хранит события жизненного цикла бронирований.
type HistoryRepository interface {
	Append(ctx context.Context, entry HistoryEntry) error
	List(ctx context.Context, reservationID string) ([]HistoryEntry, error)
}

// Типы агрегатов и событий, которые попадают в outbox.
const (
	AggregateRoom        = "room"
	AggregateStudent     = "student"
	AggregateReservation = "reservation"

	EventRoomAdded          = "room.added"
	EventRoomDeleted        = "room.deleted"
	EventStudentRegistered  = "student.registered"
	EventStudentDeleted     = "student.deleted"
	EventReservationCreated = "reservation.created"
	EventReservationUpdated = "reservation.updated"
	EventReservationDeleted = "reservation.deleted"
)

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
