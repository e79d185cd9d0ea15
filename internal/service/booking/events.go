package booking

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
	"github.com/vladislavdragonenkov/roombooking/internal/metrics"
)

// recorder публикует побочные эффекты успешной операции: событие outbox,
// запись истории и метрики. Ошибки здесь не отменяют уже сохранённое изменение.
type recorder struct {
	outbox  domain.OutboxRepository
	history domain.HistoryRepository
	metrics *metrics.BookingMetrics
	clock   domain.Clock
	logger  *log.Entry
}

func newRecorder(opts Options) recorder {
	return recorder{
		outbox:  opts.Outbox,
		history: opts.History,
		metrics: opts.Metrics,
		clock:   opts.Clock,
		logger:  opts.Logger,
	}
}

type roomPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}

type studentPayload struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type reservationPayload struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	StudentIDs []string  `json:"student_ids"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

func newReservationPayload(r domain.Reservation) reservationPayload {
	return reservationPayload{
		ID:         r.ID,
		RoomID:     r.Room.ID,
		StudentIDs: r.StudentIDs(),
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
	}
}

// emit кладёт событие в outbox, если он настроен.
func (r recorder) emit(ctx context.Context, aggregateType, aggregateID, eventType string, payload any) {
	if r.outbox == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.WithError(err).WithFields(log.Fields{
			"aggregate_id": aggregateID,
			"event":        eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       data,
	}
	if _, err := r.outbox.Enqueue(ctx, msg); err != nil {
		r.logger.WithError(err).WithFields(log.Fields{
			"aggregate_id": aggregateID,
			"event":        eventType,
		}).Error("enqueue event failed")
		return
	}
	r.metrics.RecordOutboxEvent()
}

// reservationChanged фиксирует событие бронирования в outbox и истории.
func (r recorder) reservationChanged(ctx context.Context, reservation domain.Reservation, eventType, reason string) {
	r.emit(ctx, domain.AggregateReservation, reservation.ID, eventType, newReservationPayload(reservation))

	if r.history == nil {
		return
	}
	entry := domain.HistoryEntry{
		ReservationID: reservation.ID,
		Type:          eventType,
		Reason:        reason,
		Occurred:      r.clock.Now(),
	}
	if err := r.history.Append(ctx, entry); err != nil {
		r.logger.WithError(err).WithFields(log.Fields{
			"reservation_id": reservation.ID,
			"event":          eventType,
		}).Warn("append history entry failed")
		return
	}
	r.metrics.RecordHistoryEntry()
}

// observe записывает исход операции в метрики. Использование:
//
//	defer r.observe("add_room", time.Now(), &err)
func (r recorder) observe(operation string, started time.Time, err *error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case *err == nil:
	case domain.IsInvalidArgument(*err):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
	}
	r.metrics.RecordOperation(operation, outcome, time.Since(started))
}

// reject логирует отклонённый ввод и возвращает err без изменений.
func (r recorder) reject(operation string, err error) error {
	r.logger.WithError(err).WithField("operation", operation).Debug("request rejected")
	return err
}
