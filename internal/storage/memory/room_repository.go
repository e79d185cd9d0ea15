package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

// roomRepositoryInMemory реализует RoomRepository в памяти.
// Порядок FindAll совпадает с порядком первой вставки.
type roomRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Room
	order []string
}

// NewRoomRepository возвращает in-memory репозиторий комнат для локальной разработки и тестов.
func NewRoomRepository() domain.RoomRepository {
	return &roomRepositoryInMemory{items: make(map[string]domain.Room)}
}

func (r *roomRepositoryInMemory) Save(_ context.Context, room domain.Room) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[room.ID]; exists {
		return domain.Room{}, domain.ErrAlreadyExists
	}
	r.order = append(r.order, room.ID)
	r.items[room.ID] = room
	return room, nil
}

func (r *roomRepositoryInMemory) FindByID(_ context.Context, id string) (domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.items[id]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return room, nil
}

func (r *roomRepositoryInMemory) FindAll(_ context.Context) ([]domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Room, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.items[id])
	}
	return result, nil
}

func (r *roomRepositoryInMemory) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return nil
	}
	delete(r.items, id)
	r.order = removeID(r.order, id)
	return nil
}

func (r *roomRepositoryInMemory) ExistsByID(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[id]
	return ok, nil
}

// removeID удаляет id из упорядоченного списка ключей, сохраняя порядок остальных.
func removeID(ids []string, id string) []string {
	for i, current := range ids {
		if current == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

var _ domain.RoomRepository = (*roomRepositoryInMemory)(nil)
