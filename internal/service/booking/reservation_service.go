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

// ReservationService реализует жизненный цикл бронирований.
//
// Каждое сохранённое бронирование проходит полную валидацию до обращения
// к хранилищу на запись. Проверка "начало не в прошлом" выполняется только
// при создании: обновление уже начавшегося бронирования допустимо.
type ReservationService struct {
	reservations domain.ReservationRepository
	rooms        domain.RoomRepository
	history      domain.HistoryRepository
	clock        domain.Clock
	rec          recorder
	logger       *log.Entry
}

// NewReservationService конструирует сервис бронирований.
func NewReservationService(reservations domain.ReservationRepository, options ...Option) *ReservationService {
	opts := buildOptions("reservation-service", options)
	return &ReservationService{
		reservations: reservations,
		rooms:        opts.Rooms,
		history:      opts.History,
		clock:        opts.Clock,
		rec:          newRecorder(opts),
		logger:       opts.Logger,
	}
}

// CreateReservation проверяет и сохраняет новое бронирование.
func (s *ReservationService) CreateReservation(ctx context.Context, reservation *domain.Reservation) (_ domain.Reservation, err error) {
	const op = "create_reservation"
	defer s.rec.observe(op, time.Now(), &err)

	if reservation == nil {
		return domain.Reservation{}, s.rec.reject(op, domain.InvalidArgument("reservation is null"))
	}
	if err := reservation.Validate(); err != nil {
		return domain.Reservation{}, s.rec.reject(op, err)
	}
	if reservation.StartTime.Before(s.clock.Now()) {
		return domain.Reservation{}, s.rec.reject(op, domain.InvalidArgument("start and end times can't be before now"))
	}

	found, err := s.exists(ctx, reservation.ID)
	if err != nil {
		return domain.Reservation{}, err
	}
	if found {
		return domain.Reservation{}, s.rec.reject(op, domain.InvalidArgument("reservation already exists with id: %s", reservation.ID))
	}

	if s.rooms != nil {
		roomExists, err := s.rooms.ExistsByID(ctx, reservation.Room.ID)
		if err != nil {
			s.logger.WithError(err).WithField("room_id", reservation.Room.ID).Error("failed to check room existence")
			return domain.Reservation{}, fmt.Errorf("check room existence: %w", err)
		}
		if !roomExists {
			return domain.Reservation{}, s.rec.reject(op, domain.InvalidArgument("room does not exist with id: %s", reservation.Room.ID))
		}
	}

	saved, err := s.reservations.Save(ctx, *reservation)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return domain.Reservation{}, s.rec.reject(op, domain.InvalidArgument("reservation already exists with id: %s", reservation.ID))
		}
		s.logger.WithError(err).WithField("reservation_id", reservation.ID).Error("failed to save reservation")
		return domain.Reservation{}, fmt.Errorf("save reservation: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"reservation_id": saved.ID,
		"room_id":        saved.Room.ID,
		"students":       len(saved.Students),
	}).Info("reservation created")
	s.rec.reservationChanged(ctx, saved, domain.EventReservationCreated, "")
	return saved, nil
}

// UpdateReservation перезаписывает существующее бронирование.
func (s *ReservationService) UpdateReservation(ctx context.Context, reservation *domain.Reservation) (_ domain.Reservation, err error) {
	const op = "update_reservation"
	defer s.rec.observe(op, time.Now(), &err)

	if reservation == nil || strings.TrimSpace(reservation.ID) == "" {
		return domain.Reservation{}, s.rec.reject(op, domain.InvalidArgument("reservation id is required for update"))
	}
	if err := reservation.Validate(); err != nil {
		return domain.Reservation{}, s.rec.reject(op, err)
	}

	found, err := s.exists(ctx, reservation.ID)
	if err != nil {
		return domain.Reservation{}, err
	}
	if !found {
		return domain.Reservation{}, s.rec.reject(op, domain.InvalidArgument("reservation does not exist with id: %s", reservation.ID))
	}

	saved, err := s.reservations.Save(ctx, *reservation)
	if err != nil {
		s.logger.WithError(err).WithField("reservation_id", reservation.ID).Error("failed to save reservation")
		return domain.Reservation{}, fmt.Errorf("save reservation: %w", err)
	}

	s.logger.WithField("reservation_id", saved.ID).Info("reservation updated")
	s.rec.reservationChanged(ctx, saved, domain.EventReservationUpdated, "")
	return saved, nil
}

// DeleteReservation удаляет существующее бронирование.
func (s *ReservationService) DeleteReservation(ctx context.Context, id string) (err error) {
	const op = "delete_reservation"
	defer s.rec.observe(op, time.Now(), &err)

	if strings.TrimSpace(id) == "" {
		return s.rec.reject(op, domain.InvalidArgument("reservation id is required"))
	}

	existing, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrReservationNotFound) {
			return s.rec.reject(op, domain.InvalidArgument("reservation does not exist with id: %s", id))
		}
		s.logger.WithError(err).WithField("reservation_id", id).Error("failed to load reservation")
		return fmt.Errorf("find reservation: %w", err)
	}

	if err := s.reservations.Delete(ctx, existing); err != nil {
		s.logger.WithError(err).WithField("reservation_id", id).Error("failed to delete reservation")
		return fmt.Errorf("delete reservation: %w", err)
	}

	s.logger.WithField("reservation_id", id).Info("reservation deleted")
	s.rec.reservationChanged(ctx, existing, domain.EventReservationDeleted, "")
	return nil
}

// GetAllReservations возвращает все бронирования в порядке хранилища.
func (s *ReservationService) GetAllReservations(ctx context.Context) ([]domain.Reservation, error) {
	reservations, err := s.reservations.FindAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list reservations")
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return reservations, nil
}

// GetReservationsByStudent возвращает бронирования с участием студента.
func (s *ReservationService) GetReservationsByStudent(ctx context.Context, studentID string) ([]domain.Reservation, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, s.rec.reject("get_reservations_by_student", domain.InvalidArgument("student id is required"))
	}

	reservations, err := s.reservations.FindByStudentID(ctx, studentID)
	if err != nil {
		s.logger.WithError(err).WithField("student_id", studentID).Error("failed to list reservations by student")
		return nil, fmt.Errorf("list reservations by student: %w", err)
	}
	return reservations, nil
}

// GetReservationsByRoom возвращает бронирования комнаты.
func (s *ReservationService) GetReservationsByRoom(ctx context.Context, roomID string) ([]domain.Reservation, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, s.rec.reject("get_reservations_by_room", domain.InvalidArgument("room id is required"))
	}

	reservations, err := s.reservations.FindByRoomID(ctx, roomID)
	if err != nil {
		s.logger.WithError(err).WithField("room_id", roomID).Error("failed to list reservations by room")
		return nil, fmt.Errorf("list reservations by room: %w", err)
	}
	return reservations, nil
}

// GetUpcomingReservations возвращает бронирования, начинающиеся строго после текущего момента.
func (s *ReservationService) GetUpcomingReservations(ctx context.Context) ([]domain.Reservation, error) {
	reservations, err := s.reservations.FindAfterDate(ctx, s.clock.Now())
	if err != nil {
		s.logger.WithError(err).Error("failed to list upcoming reservations")
		return nil, fmt.Errorf("list upcoming reservations: %w", err)
	}
	return reservations, nil
}

// GetPastReservations возвращает бронирования, начавшиеся строго до текущего момента.
func (s *ReservationService) GetPastReservations(ctx context.Context) ([]domain.Reservation, error) {
	reservations, err := s.reservations.FindBeforeDate(ctx, s.clock.Now())
	if err != nil {
		s.logger.WithError(err).Error("failed to list past reservations")
		return nil, fmt.Errorf("list past reservations: %w", err)
	}
	return reservations, nil
}

// GetReservationHistory возвращает журнал изменений бронирования в хронологическом порядке.
func (s *ReservationService) GetReservationHistory(ctx context.Context, id string) ([]domain.HistoryEntry, error) {
	if strings.TrimSpace(id) == "" {
		return nil, s.rec.reject("get_reservation_history", domain.InvalidArgument("reservation id is required"))
	}
	if s.history == nil {
		return []domain.HistoryEntry{}, nil
	}

	entries, err := s.history.List(ctx, id)
	if err != nil {
		s.logger.WithError(err).WithField("reservation_id", id).Error("failed to load reservation history")
		return nil, fmt.Errorf("list reservation history: %w", err)
	}
	return entries, nil
}

func (s *ReservationService) exists(ctx context.Context, id string) (bool, error) {
	_, err := s.reservations.FindByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrReservationNotFound):
		return false, nil
	default:
		s.logger.WithError(err).WithField("reservation_id", id).Error("failed to load reservation")
		return false, fmt.Errorf("find reservation: %w", err)
	}
}
