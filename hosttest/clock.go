package hosttest

import "time"

// Clock is a manual clock for tests that inject a now func.
type Clock struct {
	t time.Time
}

// NewClock starts a clock at the given instant.
func NewClock(start time.Time) *Clock { return &Clock{t: start} }

// Now returns the current fake instant.
func (c *Clock) Now() time.Time { return c.t }

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) { c.t = c.t.Add(d) }
