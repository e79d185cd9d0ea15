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

// RoomService управляет справочником аудиторий.
type RoomService struct {
	rooms  domain.RoomRepository
	rec    recorder
	logger *log.Entry
}

// NewRoomService конструирует сервис комнат поверх хранилища.
func NewRoomService(rooms domain.RoomRepository, options ...Option) *RoomService {
	opts := buildOptions("room-service", options)
	return &RoomService{
		rooms:  rooms,
		rec:    newRecorder(opts),
		logger: opts.Logger,
	}
}

// AddRoom проверяет и сохраняет новую комнату.
func (s *RoomService) AddRoom(ctx context.Context, room *domain.Room) (_ domain.Room, err error) {
	const op = "add_room"
	defer s.rec.observe(op, time.Now(), &err)

	if room == nil {
		return domain.Room{}, s.rec.reject(op, domain.InvalidArgument("room is null"))
	}
	if err := room.Validate(); err != nil {
		return domain.Room{}, s.rec.reject(op, err)
	}

	exists, err := s.rooms.ExistsByID(ctx, room.ID)
	if err != nil {
		s.logger.WithError(err).WithField("room_id", room.ID).Error("failed to check room existence")
		return domain.Room{}, fmt.Errorf("check room existence: %w", err)
	}
	if exists {
		return domain.Room{}, s.rec.reject(op, domain.InvalidArgument("room already exists with id %s", room.ID))
	}

	saved, err := s.rooms.Save(ctx, *room)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return domain.Room{}, s.rec.reject(op, domain.InvalidArgument("room already exists with id %s", room.ID))
		}
		s.logger.WithError(err).WithField("room_id", room.ID).Error("failed to save room")
		return domain.Room{}, fmt.Errorf("save room: %w", err)
	}

	s.logger.WithFields(log.Fields{"room_id": saved.ID, "capacity": saved.Capacity}).Info("room added")
	s.rec.emit(ctx, domain.AggregateRoom, saved.ID, domain.EventRoomAdded, roomPayload{
		ID:       saved.ID,
		Name:     saved.Name,
		Capacity: saved.Capacity,
	})
	return saved, nil
}

// DeleteRoom удаляет существующую комнату. Бронирования хранят снимок комнаты и не затрагиваются.
func (s *RoomService) DeleteRoom(ctx context.Context, id string) (err error) {
	const op = "delete_room"
	defer s.rec.observe(op, time.Now(), &err)

	if strings.TrimSpace(id) == "" {
		return s.rec.reject(op, domain.InvalidArgument("room id is null or empty"))
	}

	exists, err := s.rooms.ExistsByID(ctx, id)
	if err != nil {
		s.logger.WithError(err).WithField("room_id", id).Error("failed to check room existence")
		return fmt.Errorf("check room existence: %w", err)
	}
	if !exists {
		return s.rec.reject(op, domain.InvalidArgument("room does not exist with id %s", id))
	}

	if err := s.rooms.DeleteByID(ctx, id); err != nil {
		s.logger.WithError(err).WithField("room_id", id).Error("failed to delete room")
		return fmt.Errorf("delete room: %w", err)
	}

	s.logger.WithField("room_id", id).Info("room deleted")
	s.rec.emit(ctx, domain.AggregateRoom, id, domain.EventRoomDeleted, roomPayload{ID: id})
	return nil
}

// GetRoomByID возвращает комнату; found=false, если её нет.
func (s *RoomService) GetRoomByID(ctx context.Context, id string) (domain.Room, bool, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Room{}, false, s.rec.reject("get_room", domain.InvalidArgument("room id is null or empty"))
	}

	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return domain.Room{}, false, nil
		}
		s.logger.WithError(err).WithField("room_id", id).Error("failed to load room")
		return domain.Room{}, false, fmt.Errorf("find room: %w", err)
	}
	return room, true, nil
}

// GetAllRooms возвращает все комнаты в порядке хранилища.
func (s *RoomService) GetAllRooms(ctx context.Context) ([]domain.Room, error) {
	rooms, err := s.rooms.FindAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list rooms")
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}
