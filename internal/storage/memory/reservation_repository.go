package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

// reservationRepositoryInMemory хранит бронирования и индекс участников.
// Все значения копируются на входе и выходе, чтобы вызывающий код
// не мог изменить состояние хранилища через общий слайс студентов.
type reservationRepositoryInMemory struct {
	mu        sync.RWMutex
	items     map[string]domain.Reservation
	order     []string
	byStudent map[string]map[string]struct{}
}

// NewReservationRepository возвращает in-memory репозиторий бронирований.
func NewReservationRepository() domain.ReservationRepository {
	return &reservationRepositoryInMemory{
		items:     make(map[string]domain.Reservation),
		byStudent: make(map[string]map[string]struct{}),
	}
}

// Save создаёт или перезаписывает бронирование и пересобирает индекс участников.
func (r *reservationRepositoryInMemory) Save(_ context.Context, reservation domain.Reservation) (domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, exists := r.items[reservation.ID]; exists {
		r.unindex(previous)
	} else {
		r.order = append(r.order, reservation.ID)
	}

	stored := reservation.Clone()
	r.items[reservation.ID] = stored
	for _, student := range stored.Students {
		ids, ok := r.byStudent[student.ID]
		if !ok {
			ids = make(map[string]struct{})
			r.byStudent[student.ID] = ids
		}
		ids[stored.ID] = struct{}{}
	}

	return stored.Clone(), nil
}

func (r *reservationRepositoryInMemory) FindAll(_ context.Context) ([]domain.Reservation, error) {
	return r.filter(func(domain.Reservation) bool { return true }), nil
}

func (r *reservationRepositoryInMemory) FindByID(_ context.Context, id string) (domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reservation, ok := r.items[id]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return reservation.Clone(), nil
}

func (r *reservationRepositoryInMemory) FindByStudentID(_ context.Context, studentID string) ([]domain.Reservation, error) {
	return r.filter(func(res domain.Reservation) bool {
		_, ok := r.byStudent[studentID][res.ID]
		return ok
	}), nil
}

func (r *reservationRepositoryInMemory) FindByRoomID(_ context.Context, roomID string) ([]domain.Reservation, error) {
	return r.filter(func(res domain.Reservation) bool { return res.Room.ID == roomID }), nil
}

// Delete удаляет бронирование по ID; отсутствие записи не является ошибкой.
func (r *reservationRepositoryInMemory) Delete(_ context.Context, reservation domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[reservation.ID]
	if !ok {
		return nil
	}
	r.unindex(existing)
	delete(r.items, reservation.ID)
	r.order = removeID(r.order, reservation.ID)
	return nil
}

func (r *reservationRepositoryInMemory) FindAfterDate(_ context.Context, date time.Time) ([]domain.Reservation, error) {
	return r.filter(func(res domain.Reservation) bool { return res.StartTime.After(date) }), nil
}

func (r *reservationRepositoryInMemory) FindBeforeDate(_ context.Context, date time.Time) ([]domain.Reservation, error) {
	return r.filter(func(res domain.Reservation) bool { return res.StartTime.Before(date) }), nil
}

// filter возвращает копии бронирований, удовлетворяющих match, в порядке вставки.
// match вызывается под read-блокировкой и не должен брать её повторно.
func (r *reservationRepositoryInMemory) filter(match func(domain.Reservation) bool) []domain.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Reservation, 0)
	for _, id := range r.order {
		reservation := r.items[id]
		if !match(reservation) {
			continue
		}
		result = append(result, reservation.Clone())
	}
	return result
}

func (r *reservationRepositoryInMemory) unindex(reservation domain.Reservation) {
	for _, student := range reservation.Students {
		ids := r.byStudent[student.ID]
		delete(ids, reservation.ID)
		if len(ids) == 0 {
			delete(r.byStudent, student.ID)
		}
	}
}

var _ domain.ReservationRepository = (*reservationRepositoryInMemory)(nil)
