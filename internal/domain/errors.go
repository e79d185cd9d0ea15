package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument означает единственный вид ошибки бизнес-правил: нарушен инвариант
	// сущности или предусловие существования (не найдено / уже существует).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrRoomNotFound возвращается хранилищем, если комнаты с таким ID нет.
	ErrRoomNotFound = errors.New("room not found")
	// ErrStudentNotFound возвращается хранилищем, если студента с таким ID нет.
	ErrStudentNotFound = errors.New("student not found")
	// ErrReservationNotFound возвращается хранилищем, если бронирования с таким ID нет.
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrAlreadyExists сообщает о нарушении уникальности идентификатора на уровне хранилища.
	ErrAlreadyExists = errors.New("already exists")
	// ErrOutboxPublish сообщает об ошибке публикации или обновления сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// InvalidArgument формирует ошибку вида ErrInvalidArgument с человекочитаемой причиной.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// IsInvalidArgument проверяет, является ли ошибка нарушением бизнес-правила.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsNotFound проверяет, сообщает ли хранилище об отсутствии сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrReservationNotFound)
}
