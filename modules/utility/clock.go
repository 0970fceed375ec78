package utility

import "time"

// Clock measures process uptime from the moment it was created.
type Clock struct {
	start time.Time
}

// NewClock starts the clock.
func NewClock() *Clock {
	return &Clock{start: time.Now()}
}

// Uptime is the time elapsed since the clock started.
func (c *Clock) Uptime() time.Duration {
	return time.Since(c.start)
}
