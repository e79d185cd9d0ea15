package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы операций бронирования.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// BookingMetrics содержит метрики операций над комнатами, студентами и бронированиями.
type BookingMetrics struct {
	// operations считает вызовы по операции и исходу.
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	historyEntries prometheus.Counter
	outboxEvents   prometheus.Counter
}

// NewBookingMetrics создаёт метрики в prometheus.DefaultRegisterer.
func NewBookingMetrics() *BookingMetrics {
	return NewBookingMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewBookingMetricsWithRegisterer создаёт метрики в указанном registerer.
// Повторная регистрация возвращает уже зарегистрированные коллекторы.
func NewBookingMetricsWithRegisterer(registerer prometheus.Registerer) *BookingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &BookingMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Total number of booking operations grouped by operation and outcome",
		}, []string{"operation", "outcome"}),
		operationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "booking_operation_duration_seconds",
			Help:    "Duration of booking operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"operation"}),
		historyEntries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "booking_history_entries_total",
			Help: "Total number of reservation history entries recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "booking_outbox_events_total",
			Help: "Total number of events enqueued to the outbox",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOperation фиксирует исход и длительность операции.
func (m *BookingMetrics) RecordOperation(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHistoryEntry увеличивает счётчик записей истории.
func (m *BookingMetrics) RecordHistoryEntry() {
	if m == nil {
		return
	}
	m.historyEntries.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *BookingMetrics) RecordOutboxEvent() {
	if m == nil {
		return
	}
	m.outboxEvents.Inc()
}
