package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

// historyRepositoryInMemory хранит историю бронирований в памяти (для разработки/тестов).
type historyRepositoryInMemory struct {
	mu      sync.RWMutex
	entries map[string][]domain.HistoryEntry
}

// NewHistoryRepository создаёт in-memory реализацию HistoryRepository.
func NewHistoryRepository() domain.HistoryRepository {
	return &historyRepositoryInMemory{entries: make(map[string][]domain.HistoryEntry)}
}

// Append добавляет запись, сохраняя хронологический порядок.
func (r *historyRepositoryInMemory) Append(_ context.Context, entry domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := append(r.entries[entry.ReservationID], entry)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Occurred.Before(entries[j].Occurred)
	})
	r.entries[entry.ReservationID] = entries
	return nil
}

// List возвращает историю бронирования в хронологическом порядке.
func (r *historyRepositoryInMemory) List(_ context.Context, reservationID string) ([]domain.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entries[reservationID]
	result := make([]domain.HistoryEntry, len(entries))
	copy(result, entries)
	return result, nil
}

var _ domain.HistoryRepository = (*historyRepositoryInMemory)(nil)
