package debounce

import "time"

// Clock источник таймеров (подменяется в тестах)
type Clock interface {
	// AfterFunc вызывает f в отдельной горутине через d
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer отменяемый таймер
type Timer interface {
	// Stop отменяет таймер; false, если он уже сработал или остановлен
	Stop() bool
}

// RealClock реализует Clock через time.AfterFunc
type RealClock struct{}

// AfterFunc запускает time.AfterFunc
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
