// Package clock provides an injectable time source so timer-driven code
// (the deploy log poller in particular) can be tested deterministically.
//
// Production code holds a Clock and uses Real(). Tests use Fake() and move
// time forward with Advance:
//
//	c := clock.Fake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
//	poller := logging.NewDeployPoller(logging.DeployPollerConfig{Clock: c, ...})
//	poller.Start(ctx)
//	c.Advance(1500 * time.Millisecond) // runs the next scheduled tick
package clock

import "time"

// Clock is the subset of the time package the pollers depend on.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc calls f after d elapses and returns a Timer that can
	// cancel the call. If d <= 0 the real clock runs f on a new goroutine,
	// the fake clock runs it synchronously before returning.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a handle to a scheduled AfterFunc call.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the timer from firing. It returns false if the timer
// already fired or was already stopped.
func (t *Timer) Stop() bool {
	if t == nil || t.stopFunc == nil {
		return false
	}
	return t.stopFunc()
}
