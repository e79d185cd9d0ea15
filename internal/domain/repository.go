package domain

import (
	"context"
	"time"
)

// RoomRepository описывает требования к хранилищу аудиторий.
type RoomRepository interface {
	// Save создаёт комнату; занятый идентификатор даёт ErrAlreadyExists.
	Save(ctx context.Context, room Room) (Room, error)
	// FindByID возвращает комнату или ErrRoomNotFound.
	FindByID(ctx context.Context, id string) (Room, error)
	// FindAll возвращает все комнаты в порядке хранилища.
	FindAll(ctx context.Context) ([]Room, error)
	// DeleteByID удаляет комнату; отсутствие записи не является ошибкой.
	DeleteByID(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// StudentRepository описывает требования к хранилищу студентов.
type StudentRepository interface {
	// Save создаёт студента; занятый идентификатор даёт ErrAlreadyExists.
	Save(ctx context.Context, student Student) (Student, error)
	// FindByID возвращает студента или ErrStudentNotFound.
	FindByID(ctx context.Context, id string) (Student, error)
	FindAll(ctx context.Context) ([]Student, error)
	DeleteByID(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// ReservationRepository описывает требования к хранилищу бронирований.
// Хранилище также ведёт индекс участников (бронирование → студенты),
// по которому работает FindByStudentID.
type ReservationRepository interface {
	// Save создаёт или перезаписывает бронирование вместе со списком участников.
	Save(ctx context.Context, reservation Reservation) (Reservation, error)
	// FindAll возвращает все бронирования в порядке хранилища.
	FindAll(ctx context.Context) ([]Reservation, error)
	// FindByID возвращает бронирование или ErrReservationNotFound.
	FindByID(ctx context.Context, id string) (Reservation, error)
	FindByStudentID(ctx context.Context, studentID string) ([]Reservation, error)
	FindByRoomID(ctx context.Context, roomID string) ([]Reservation, error)
	Delete(ctx context.Context, reservation Reservation) error
	// FindAfterDate возвращает бронирования, начинающиеся строго после date.
	FindAfterDate(ctx context.Context, date time.Time) ([]Reservation, error)
	// FindBeforeDate возвращает бронирования, начавшиеся строго до date.
	FindBeforeDate(ctx context.Context, date time.Time) ([]Reservation, error)
}
