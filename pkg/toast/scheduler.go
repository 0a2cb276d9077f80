package toast

import "time"

// Task is a scheduled one-shot action.
type Task interface {
	// Stop cancels the task. It reports false if the task already ran or
	// was already stopped.
	Stop() bool
}

// Scheduler runs fn once after d. Implementations decide which goroutine
// fn runs on.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(d time.Duration, fn func()) Task

// AfterFunc calls f(d, fn).
func (f SchedulerFunc) AfterFunc(d time.Duration, fn func()) Task {
	return f(d, fn)
}

// WallClock schedules with time.AfterFunc; fn runs on its own goroutine.
type WallClock struct{}

// AfterFunc implements Scheduler.
func (WallClock) AfterFunc(d time.Duration, fn func()) Task {
	return time.AfterFunc(d, fn)
}
