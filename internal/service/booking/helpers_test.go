package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
	"github.com/vladislavdragonenkov/roombooking/internal/metrics"
	"github.com/vladislavdragonenkov/roombooking/internal/storage/memory"
)

var (
	testNow    = time.Date(2030, time.June, 1, 12, 0, 0, 0, time.UTC)
	errStorage = errors.New("storage unavailable")
)

// fixture собирает все три сервиса над общими in-memory хранилищами.
type fixture struct {
	rooms        domain.RoomRepository
	students     domain.StudentRepository
	reservations domain.ReservationRepository
	history      domain.HistoryRepository
	outbox       *memory.OutboxRepository
	metrics      *metrics.BookingMetrics

	roomService        *RoomService
	studentService     *StudentService
	reservationService *ReservationService
}

func newFixture(t *testing.T, extra ...Option) *fixture {
	t.Helper()

	f := &fixture{
		rooms:        memory.NewRoomRepository(),
		students:     memory.NewStudentRepository(),
		reservations: memory.NewReservationRepository(),
		history:      memory.NewHistoryRepository(),
		outbox:       memory.NewOutboxRepository(),
		metrics:      metrics.NewBookingMetricsWithRegisterer(prometheus.NewRegistry()),
	}

	options := append([]Option{
		WithLogger(testLogger()),
		WithClock(fixedClock(testNow)),
		WithMetrics(f.metrics),
		WithOutbox(f.outbox),
		WithHistory(f.history),
	}, extra...)

	f.roomService = NewRoomService(f.rooms, options...)
	f.studentService = NewStudentService(f.students, f.reservations, options...)
	f.reservationService = NewReservationService(f.reservations, options...)
	return f
}

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.WarnLevel)
	return logger.WithField("component", "booking-test")
}

func fixedClock(now time.Time) domain.Clock {
	return domain.ClockFunc(func() time.Time { return now })
}

func sampleRoom() domain.Room {
	return domain.Room{ID: "r1", Name: "Room A", Capacity: 30}
}

func sampleStudent() domain.Student {
	return domain.Student{ID: "s1", FirstName: "John", LastName: "Doe"}
}

func futureReservation(id string, offset time.Duration) domain.Reservation {
	start := testNow.Add(offset)
	return domain.Reservation{
		ID:        id,
		Students:  []domain.Student{sampleStudent()},
		Room:      sampleRoom(),
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	}
}

// failingReservations имитирует недоступное хранилище бронирований.
type failingReservations struct {
	domain.ReservationRepository
}

func (failingReservations) FindByID(context.Context, string) (domain.Reservation, error) {
	return domain.Reservation{}, errStorage
}

func (failingReservations) FindAll(context.Context) ([]domain.Reservation, error) {
	return nil, errStorage
}

// failingRooms имитирует недоступное хранилище комнат.
type failingRooms struct {
	domain.RoomRepository
}

func (failingRooms) ExistsByID(context.Context, string) (bool, error) {
	return false, errStorage
}

func (failingRooms) FindByID(context.Context, string) (domain.Room, error) {
	return domain.Room{}, errStorage
}

// conflictingRooms воспроизводит гонку check-then-save: ExistsByID видит пустоту,
// а первичный ключ отклоняет вставку.
type conflictingRooms struct {
	domain.RoomRepository
}

func (conflictingRooms) ExistsByID(context.Context, string) (bool, error) {
	return false, nil
}

func (conflictingRooms) Save(context.Context, domain.Room) (domain.Room, error) {
	return domain.Room{}, domain.ErrAlreadyExists
}
