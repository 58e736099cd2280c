package hal

import "time"

// frameClock measures wall time between scheduler steps.
type frameClock struct {
	now  func() time.Time
	last time.Time
}

func newFrameClock() *frameClock {
	return &frameClock{now: time.Now}
}

// step returns the time since the previous step; the first step returns
// zero.
func (c *frameClock) step() time.Duration {
	now := c.now()
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	dt := now.Sub(c.last)
	c.last = now
	if dt < 0 {
		return 0
	}
	return dt
}
