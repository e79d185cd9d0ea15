package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

// studentRepositoryInMemory реализует StudentRepository в памяти.
type studentRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Student
	order []string
}

// NewStudentRepository возвращает in-memory репозиторий студентов.
func NewStudentRepository() domain.StudentRepository {
	return &studentRepositoryInMemory{items: make(map[string]domain.Student)}
}

func (r *studentRepositoryInMemory) Save(_ context.Context, student domain.Student) (domain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[student.ID]; exists {
		return domain.Student{}, domain.ErrAlreadyExists
	}
	r.order = append(r.order, student.ID)
	r.items[student.ID] = student
	return student, nil
}

func (r *studentRepositoryInMemory) FindByID(_ context.Context, id string) (domain.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	student, ok := r.items[id]
	if !ok {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	return student, nil
}

func (r *studentRepositoryInMemory) FindAll(_ context.Context) ([]domain.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Student, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.items[id])
	}
	return result, nil
}

func (r *studentRepositoryInMemory) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return nil
	}
	delete(r.items, id)
	r.order = removeID(r.order, id)
	return nil
}

func (r *studentRepositoryInMemory) ExistsByID(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[id]
	return ok, nil
}

var _ domain.StudentRepository = (*studentRepositoryInMemory)(nil)
