package clock

import "time"

// Schedule arms a one-shot timer that invokes fn once the absolute deadline
// has been reached. A deadline that already passed fires fn almost
// immediately on the timer goroutine, never synchronously from Schedule.
//
// The returned cancel function disarms the timer; it is safe to call more
// than once and safe to call after the timer has fired (fn may still run if
// the race was lost, callers are expected to make fn idempotent).
func Schedule(deadline time.Time, fn func()) (cancel func()) {
	delay := deadline.Sub(Now())
	if delay < 0 {
		delay = 0
	}
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}
