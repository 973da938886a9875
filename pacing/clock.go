package pacing

import (
	"time"
)

// Clock reports monotonic time as an offset from an arbitrary epoch.
type Clock interface {
	Now() time.Duration
}

// MonotonicClock reads the runtime's monotonic clock.
type MonotonicClock struct {
	epoch time.Time
}

// NewMonotonicClock returns a clock whose epoch is the time of the call.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{epoch: time.Now()}
}

func (c *MonotonicClock) Now() time.Duration {
	return time.Since(c.epoch)
}
