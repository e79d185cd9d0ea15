package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
)

// StudentService управляет регистрацией студентов.
type StudentService struct {
	students     domain.StudentRepository
	reservations domain.ReservationRepository
	rec          recorder
	logger       *log.Entry
}

// NewStudentService конструирует сервис студентов.
// reservations используется только для GetStudentBookings.
func NewStudentService(students domain.StudentRepository, reservations domain.ReservationRepository, options ...Option) *StudentService {
	opts := buildOptions("student-service", options)
	return &StudentService{
		students:     students,
		reservations: reservations,
		rec:          newRecorder(opts),
		logger:       opts.Logger,
	}
}

// RegisterStudent проверяет и сохраняет нового студента.
func (s *StudentService) RegisterStudent(ctx context.Context, student *domain.Student) (_ domain.Student, err error) {
	const op = "register_student"
	defer s.rec.observe(op, time.Now(), &err)

	if student == nil {
		return domain.Student{}, s.rec.reject(op, domain.InvalidArgument("student is null"))
	}
	if err := student.Validate(); err != nil {
		return domain.Student{}, s.rec.reject(op, err)
	}

	exists, err := s.students.ExistsByID(ctx, student.ID)
	if err != nil {
		s.logger.WithError(err).WithField("student_id", student.ID).Error("failed to check student existence")
		return domain.Student{}, fmt.Errorf("check student existence: %w", err)
	}
	if exists {
		return domain.Student{}, s.rec.reject(op, domain.InvalidArgument("student already exists"))
	}

	saved, err := s.students.Save(ctx, *student)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return domain.Student{}, s.rec.reject(op, domain.InvalidArgument("student already exists"))
		}
		s.logger.WithError(err).WithField("student_id", student.ID).Error("failed to save student")
		return domain.Student{}, fmt.Errorf("save student: %w", err)
	}

	s.logger.WithField("student_id", saved.ID).Info("student registered")
	s.rec.emit(ctx, domain.AggregateStudent, saved.ID, domain.EventStudentRegistered, studentPayload{
		ID:        saved.ID,
		FirstName: saved.FirstName,
		LastName:  saved.LastName,
	})
	return saved, nil
}

// DeleteStudent удаляет зарегистрированного студента.
func (s *StudentService) DeleteStudent(ctx context.Context, id string) (err error) {
	const op = "delete_student"
	defer s.rec.observe(op, time.Now(), &err)

	if strings.TrimSpace(id) == "" {
		return s.rec.reject(op, domain.InvalidArgument("student id is required"))
	}

	exists, err := s.students.ExistsByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).WithField("student_id", id).Error("failed to check student existence")
		return fmt.Errorf("check student existence: %w", err)
	}
	if !exists {
		return s.rec.reject(op, domain.InvalidArgument("student does not exist with id %s", id))
	}

	if err := s.students.DeleteByID(ctx, id); err != nil {
		s.logger.WithError(err).WithField("student_id", id).Error("failed to delete student")
		return fmt.Errorf("delete student: %w", err)
	}

	s.logger.WithField("student_id", id).Info("student deleted")
	s.rec.emit(ctx, domain.AggregateStudent, id, domain.EventStudentDeleted, studentPayload{ID: id})
	return nil
}

// GetAllStudents возвращает всех студентов в порядке хранилища.
func (s *StudentService) GetAllStudents(ctx context.Context) ([]domain.Student, error) {
	students, err := s.students.FindAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list students")
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// GetStudentByID возвращает студента; found=false, если его нет.
func (s *StudentService) GetStudentByID(ctx context.Context, id string) (domain.Student, bool, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Student{}, false, s.rec.reject("get_student", domain.InvalidArgument("student id is null"))
	}

	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrStudentNotFound) {
			return domain.Student{}, false, nil
		}
		s.logger.WithError(err).WithField("student_id", id).Error("failed to load student")
		return domain.Student{}, false, fmt.Errorf("find student: %w", err)
	}
	return student, true, nil
}

// GetStudentBookings возвращает бронирования, в которых участвует зарегистрированный студент.
func (s *StudentService) GetStudentBookings(ctx context.Context, id string) ([]domain.Reservation, error) {
	const op = "get_student_bookings"
	if strings.TrimSpace(id) == "" {
		return nil, s.rec.reject(op, domain.InvalidArgument("student id is null"))
	}

	exists, err := s.students.ExistsByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).WithField("student_id", id).Error("failed to check student existence")
		return nil, fmt.Errorf("check student existence: %w", err)
	}
	if !exists {
		return nil, s.rec.reject(op, domain.InvalidArgument("student does not exist with id %s", id))
	}

	bookings, err := s.reservations.FindByStudentID(ctx, id)
	if err != nil {
		s.logger.WithError(err).WithField("student_id", id).Error("failed to list student bookings")
		return nil, fmt.Errorf("list student bookings: %w", err)
	}
	return bookings, nil
}
