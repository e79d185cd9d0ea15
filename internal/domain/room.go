package domain

import "strings"

// Room описывает аудиторию, которую студенты могут бронировать.
type Room struct {
	ID       string
	Name     string
	// Capacity задаёт вместимость аудитории, всегда больше нуля.
	Capacity int
}

// NewRoom создаёт комнату и проверяет её инварианты.
func NewRoom(id, name string, capacity int) (Room, error) {
	room := Room{ID: id, Name: name, Capacity: capacity}
	if err := room.Validate(); err != nil {
		return Room{}, err
	}
	return room, nil
}

// Validate проверяет инварианты комнаты и возвращает первое нарушение.
func (r Room) Validate() error {
	if isBlank(r.ID) {
		return InvalidArgument("room id is null or empty")
	}
	if isBlank(r.Name) {
		return InvalidArgument("room name is null or empty")
	}
	if r.Capacity <= 0 {
		return InvalidArgument("room capacity must be positive integer")
	}
	return nil
}

// IsZero сообщает, что ссылка на комнату не задана.
func (r Room) IsZero() bool {
	return r == Room{}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
