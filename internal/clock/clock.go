// Package clock stamps operations with the operator's local event time.
package clock

import (
	"fmt"
	"time"
)

// Clock provides the current time so tests can pin operation timestamps.
type Clock interface {
	// Now returns the current time in the event's time zone.
	Now() time.Time
}

// RealClock reads the system time and converts it to a fixed location.
type RealClock struct {
	loc *time.Location
}

// NewRealClock creates a RealClock reporting times in loc (UTC when nil).
func NewRealClock(loc *time.Location) *RealClock {
	if loc == nil {
		loc = time.UTC
	}
	return &RealClock{loc: loc}
}

// Now returns the current system time in the clock's location.
func (c *RealClock) Now() time.Time {
	loc := c.loc
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// FakeClock implements Clock with a settable time for testing.
type FakeClock struct {
	current time.Time
}

// NewFakeClock creates a new FakeClock with the given time.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

// Now returns the fixed time.
func (c *FakeClock) Now() time.Time {
	return c.current
}

// Set updates the fixed time.
func (c *FakeClock) Set(t time.Time) {
	c.current = t
}

// Advance moves the fixed time forward by the given duration.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// OffsetZone returns a fixed zone for a whole-hour UTC offset, e.g. 9 -> "UTC+09".
func OffsetZone(hours int) *time.Location {
	if hours == 0 {
		return time.UTC
	}
	return time.FixedZone(fmt.Sprintf("UTC%+03d", hours), hours*3600)
}
