package pipeline

import "time"

// Scheduler defers a task by a delay and allows it to be cancelled. The
// indirection keeps the debounce window testable without wall-clock waits.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) (cancel func())
}

// TimerScheduler schedules tasks on real timers.
type TimerScheduler struct{}

// Schedule runs fn after delay unless the returned cancel func fires first.
func (TimerScheduler) Schedule(delay time.Duration, fn func()) func() {
	timer := time.AfterFunc(delay, fn)
	return func() { timer.Stop() }
}
