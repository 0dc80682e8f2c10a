package ao

import "time"

// Clock is the timebase behind Now, Sleep and After. Swapping it lets
// gesture timing run against a manual clock in tests; firmware and host
// builds keep the system clock.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
	AfterFunc(d time.Duration, fn func())
}

// systemClock delegates to the time package. AfterFunc is a goroutine
// sleep rather than a runtime timer so it stays portable to every
// TinyGo target.
type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

func (systemClock) AfterFunc(d time.Duration, fn func()) {
	go func() {
		time.Sleep(d)
		fn()
	}()
}

// clock is read by every actor goroutine. Replace it only before actors
// start; there is no synchronization on the variable itself.
var clock Clock = systemClock{}

// SetClock replaces the package timebase. Passing nil restores the
// system clock.
func SetClock(c Clock) {
	if c == nil {
		clock = systemClock{}
		return
	}
	clock = c
}

// Now returns the current time on the configured clock.
func Now() time.Time { return clock.Now() }

// Sleep suspends the calling goroutine on the configured clock.
func Sleep(d time.Duration) { clock.Sleep(d) }

// After runs fn once d has elapsed on the configured clock.
func After(d time.Duration, fn func()) { clock.AfterFunc(d, fn) }

// Since returns the time elapsed from t on the configured clock.
func Since(t time.Time) time.Duration { return clock.Now().Sub(t) }
