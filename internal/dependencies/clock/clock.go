package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// Unix returns the clock's current time as unix seconds, the resolution
// used by the accounts table
func Unix(c Clock) int64 {
	return c.Now().Unix()
}

// Expired reports whether deadline has passed according to c.
// A zero deadline never expires.
func Expired(c Clock, deadline time.Time) bool {
	if deadline.IsZero() {
		return false
	}
	return c.Now().After(deadline)
}
