// Package booking содержит бизнес-правила бронирования аудиторий:
// сервисы комнат, студентов и бронирований.
package booking

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roombooking/internal/domain"
	"github.com/vladislavdragonenkov/roombooking/internal/metrics"
)

// Options задаёт необязательные зависимости сервисов.
type Options struct {
	Logger  *log.Entry
	Clock   domain.Clock
	Metrics *metrics.BookingMetrics
	Outbox  domain.OutboxRepository
	History domain.HistoryRepository
	// Rooms используется ReservationService для проверки, что комната существует.
	Rooms domain.RoomRepository
}

// Option настраивает сервис.
type Option func(*Options)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithClock задаёт источник текущего времени.
func WithClock(clock domain.Clock) Option {
	return func(opts *Options) {
		opts.Clock = clock
	}
}

// WithMetrics включает Prometheus-метрики операций.
func WithMetrics(m *metrics.BookingMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithOutbox включает запись доменных событий в transactional outbox.
func WithOutbox(repo domain.OutboxRepository) Option {
	return func(opts *Options) {
		opts.Outbox = repo
	}
}

// WithHistory включает журнал жизненного цикла бронирований.
func WithHistory(repo domain.HistoryRepository) Option {
	return func(opts *Options) {
		opts.History = repo
	}
}

// WithRoomLookup требует, чтобы комната нового бронирования существовала в хранилище.
func WithRoomLookup(rooms domain.RoomRepository) Option {
	return func(opts *Options) {
		opts.Rooms = rooms
	}
}

func buildOptions(component string, options []Option) Options {
	var opts Options
	for _, option := range options {
		option(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = log.WithField("component", component)
	}
	if opts.Clock == nil {
		opts.Clock = domain.SystemClock{}
	}
	return opts
}
