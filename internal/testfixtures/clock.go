package testfixtures

import (
	"sync"
	"time"
)

// Clock is a frozen time source for tests. It only moves when told to, so
// timestamps stamped through it are stable across a test run.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock pins a clock to start. A zero start pins it to ReferenceTime.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

// Now reports the pinned instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc adapts the clock to the func() time.Time shape the repositories and
// the scheduler take. A nil clock falls back to the real time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set repins the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	moved := c.now
	c.mu.Unlock()
	return moved
}
