package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

func TestOutboxRepository_PostgresFlow(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOutboxRepository(store)
	ctx := context.Background()

	first, err := repo.Enqueue(ctx, domain.OutboxMessage{
		AggregateType: domain.AggregateRoom,
		AggregateID:   "room-1",
		EventType:     domain.EventRoomAdded,
		Payload:       []byte(`{"id":"room-1"}`),
	})
	if err != nil {
		t.Fatalf("enqueue msg without id: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated id for outbox message")
	}

	second, err := repo.Enqueue(ctx, domain.OutboxMessage{
		ID:            "outbox-fixed-id",
		AggregateType: domain.AggregateReservation,
		AggregateID:   "res-1",
		EventType:     domain.EventReservationCreated,
		Payload:       []byte(`{"id":"res-1"}`),
	})
	if err != nil {
		t.Fatalf("enqueue msg with id: %v", err)
	}
	if second.ID != "outbox-fixed-id" {
		t.Fatalf("expected fixed id, got %q", second.ID)
	}

	if _, err := repo.Enqueue(ctx, second); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for duplicate id, got %v", err)
	}

	pending, err := repo.PullPending(ctx, 0)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != first.ID || pending[1].ID != second.ID {
		t.Fatalf("expected pending messages in enqueue order, got %+v", pending)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats before marks: %v", err)
	}
	if stats.PendingCount != 2 || stats.OldestPendingAt.IsZero() {
		t.Fatalf("unexpected stats before marks: %+v", stats)
	}

	if err := repo.MarkSent(ctx, first.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if err := repo.MarkFailed(ctx, second.ID); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	after, err := repo.PullPending(ctx, 10)
	if err != nil {
		t.Fatalf("pull pending after marks: %v", err)
	}
	if len(after) != 0 {
		t.Fatalf("expected no pending after marks, got %d", len(after))
	}
}

func TestOutboxRepository_PostgresMissingRows(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOutboxRepository(store)
	ctx := context.Background()

	if err := repo.MarkSent(ctx, "missing-outbox"); !errors.Is(err, domain.ErrOutboxPublish) {
		t.Fatalf("expected ErrOutboxPublish on mark sent missing id, got %v", err)
	}
	if err := repo.MarkFailed(ctx, "missing-outbox"); !errors.Is(err, domain.ErrOutboxPublish) {
		t.Fatalf("expected ErrOutboxPublish on mark failed missing id, got %v", err)
	}
}

func TestHistoryRepository_PostgresOrdering(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewHistoryRepository(store)
	ctx := context.Background()
	base := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	entries := []domain.HistoryEntry{
		{ReservationID: "res-1", Type: domain.EventReservationUpdated, Occurred: base.Add(time.Minute)},
		{ReservationID: "res-1", Type: domain.EventReservationCreated, Occurred: base},
		{ReservationID: "res-2", Type: domain.EventReservationCreated, Occurred: base},
	}
	for _, entry := range entries {
		if err := repo.Append(ctx, entry); err != nil {
			t.Fatalf("append history: %v", err)
		}
	}

	got, err := repo.List(ctx, "res-1")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Type != domain.EventReservationCreated || !got[0].Occurred.Equal(base) {
		t.Fatalf("expected created entry first, got %+v", got[0])
	}

	empty, err := repo.List(ctx, "missing")
	if err != nil {
		t.Fatalf("list missing history: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty history, got %+v", empty)
	}
}
