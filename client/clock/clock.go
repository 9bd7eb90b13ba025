// Package clock abstracts time so client timers can be driven by tests.
package clock

import "time"

// Clock tells time and schedules callbacks.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f on its own goroutine once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer.
	Stop() bool
}

// Real is the wall clock.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Sleep blocks for d on clk or until done is closed. It reports whether the
// full duration elapsed.
func Sleep(clk Clock, d time.Duration, done <-chan struct{}) bool {
	fired := make(chan struct{})
	t := clk.AfterFunc(d, func() { close(fired) })

	select {
	case <-fired:
		return true
	case <-done:
		t.Stop()
		return false
	}
}
