package domain

import "time"

// Clock абстрагирует источник текущего времени, чтобы проверки "не в прошлом"
// были детерминированы в тестах.
type Clock interface {
	Now() time.Time
}

// SystemClock возвращает реальное время в UTC.
type SystemClock struct{}

// Now возвращает текущее время.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClockFunc адаптирует функцию к интерфейсу Clock.
type ClockFunc func() time.Time

// Now вызывает обёрнутую функцию.
func (f ClockFunc) Now() time.Time { return f() }
