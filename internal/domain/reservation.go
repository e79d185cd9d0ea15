package domain

import "time"

// Reservation описывает бронирование одной аудитории одним или несколькими
// студентами на фиксированный интервал времени.
type Reservation struct {
	ID       string
	Students []Student
	Room     Room
	// StartTime и EndTime задают полуинтервал бронирования; EndTime строго позже StartTime.
	StartTime time.Time
	EndTime   time.Time
}

// NewReservation создаёт бронирование и проверяет инварианты, не зависящие от текущего времени.
func NewReservation(id string, students []Student, room Room, start, end time.Time) (Reservation, error) {
	reservation := Reservation{
		ID:        id,
		Students:  cloneStudents(students),
		Room:      room,
		StartTime: start,
		EndTime:   end,
	}
	if err := reservation.Validate(); err != nil {
		return Reservation{}, err
	}
	return reservation, nil
}

// Validate проверяет инварианты бронирования в фиксированном порядке:
// идентификатор, комната, наличие обеих границ, порядок границ.
// Проверка "начало не в прошлом" выполняется сервисом, так как зависит от часов.
func (r Reservation) Validate() error {
	if isBlank(r.ID) {
		return InvalidArgument("reservation id is required")
	}
	if r.Room.IsZero() {
		return InvalidArgument("room is required")
	}
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return InvalidArgument("start time and end time are required")
	}
	if !r.EndTime.After(r.StartTime) {
		return InvalidArgument("end time must be after start time")
	}
	return nil
}

// StudentIDs возвращает идентификаторы участников в исходном порядке.
func (r Reservation) StudentIDs() []string {
	ids := make([]string, 0, len(r.Students))
	for _, student := range r.Students {
		ids = append(ids, student.ID)
	}
	return ids
}

// HasStudent проверяет, участвует ли студент в бронировании.
func (r Reservation) HasStudent(studentID string) bool {
	for _, student := range r.Students {
		if student.ID == studentID {
			return true
		}
	}
	return false
}

// Duration возвращает длительность бронирования.
func (r Reservation) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Clone возвращает копию бронирования с независимым списком студентов.
func (r Reservation) Clone() Reservation {
	r.Students = cloneStudents(r.Students)
	return r
}

func cloneStudents(students []Student) []Student {
	if students == nil {
		return nil
	}
	out := make([]Student, len(students))
	copy(out, students)
	return out
}
