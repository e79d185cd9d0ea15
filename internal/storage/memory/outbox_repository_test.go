package memory

import (
	"context"
	"testing"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

func TestOutboxRepository_EnqueueAndPull(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxRepository()

	msg := domain.OutboxMessage{
		AggregateType: domain.AggregateReservation,
		AggregateID:   "R1",
		EventType:     domain.EventReservationCreated,
		Payload:       []byte(`{"id":"R1"}`),
	}

	saved, err := repo.Enqueue(ctx, msg)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected generated id")
	}

	second, err := repo.Enqueue(ctx, domain.OutboxMessage{AggregateType: domain.AggregateRoom, EventType: domain.EventRoomAdded})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	pending, err := repo.PullPending(ctx, 10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending messages, got %d", len(pending))
	}
	if pending[0].ID != saved.ID || pending[1].ID != second.ID {
		t.Fatalf("expected enqueue order, got %s, %s", pending[0].ID, pending[1].ID)
	}

	limited, _ := repo.PullPending(ctx, 1)
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestOutboxRepository_MarkSentAndFailed(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxRepository()

	sent, _ := repo.Enqueue(ctx, domain.OutboxMessage{AggregateType: domain.AggregateRoom})
	failed, _ := repo.Enqueue(ctx, domain.OutboxMessage{AggregateType: domain.AggregateStudent})
	if _, err := repo.Enqueue(ctx, domain.OutboxMessage{AggregateType: domain.AggregateReservation}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	if err := repo.MarkSent(ctx, sent.ID); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}
	if err := repo.MarkFailed(ctx, failed.ID); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if err := repo.MarkFailed(ctx, "missing"); err == nil {
		t.Fatal("expected error for missing record")
	}

	if got := len(repo.AllPending()); got != 1 {
		t.Fatalf("expected 1 pending message, got %d", got)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 1 {
		t.Fatalf("expected pending count 1, got %d", stats.PendingCount)
	}
	if stats.OldestPendingAt.IsZero() {
		t.Fatal("expected oldest pending timestamp")
	}
}
