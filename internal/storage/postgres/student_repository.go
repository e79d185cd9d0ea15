package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

type studentRepository struct {
	db *sql.DB
}

// NewStudentRepository создаёт PostgreSQL-реализацию StudentRepository.
func NewStudentRepository(store *Store) domain.StudentRepository {
	return &studentRepository{db: store.DB()}
}

func (r *studentRepository) Save(ctx context.Context, student domain.Student) (domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (id, first_name, last_name) VALUES ($1, $2, $3)
	`, student.ID, student.FirstName, student.LastName)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Student{}, fmt.Errorf("insert student %s: %w", student.ID, domain.ErrAlreadyExists)
		}
		return domain.Student{}, fmt.Errorf("insert student: %w", err)
	}
	return student, nil
}

func (r *studentRepository) FindByID(ctx context.Context, id string) (domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var student domain.Student
	err := r.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name FROM students WHERE id = $1
	`, id).Scan(&student.ID, &student.FirstName, &student.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	if err != nil {
		return domain.Student{}, fmt.Errorf("select student: %w", err)
	}
	return student, nil
}

func (r *studentRepository) FindAll(ctx context.Context) ([]domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, first_name, last_name FROM students ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select students: %w", err)
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		var student domain.Student
		if err := rows.Scan(&student.ID, &student.FirstName, &student.LastName); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

func (r *studentRepository) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

func (r *studentRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM students WHERE id = $1)`, id)
}

var _ domain.StudentRepository = (*studentRepository)(nil)
