package domain

import "time"

// HistoryEntry описывает событие в жизненном цикле бронирования.
type HistoryEntry struct {
	ReservationID string
	// Type совпадает с типом события outbox (например, reservation.created).
	Type     string
	Reason   string
	Occurred time.Time
}
