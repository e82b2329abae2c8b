package anim

import "time"

// State reports whether the clock advances.
func (c *Clock) State() State { return c.state }

// Running is shorthand for State() == Running.
func (c *Clock) Running() bool { return c.state == Running }

// Phase returns the accumulated animation time.
func (c *Clock) Phase() time.Duration { return c.phase }

// HasSample reports whether a previous sample is recorded.
func (c *Clock) HasSample() bool { return c.hasLast }

// Advance samples the clock at now and returns the elapsed time since the
// previous sample. A stopped clock returns 0 and leaves the phase untouched.
// The first sample after a (re)start has no previous sample and yields 0, so
// a pause never shows up as a phase jump.
func (c *Clock) Advance(now time.Time) time.Duration {
	if c.state != Running {
		return 0
	}
	var elapsed time.Duration
	if c.hasLast {
		elapsed = now.Sub(c.last)
		// wall clock stepped back; keep phase monotonic
		if elapsed < 0 {
			elapsed = 0
		}
	}
	c.last = now
	c.hasLast = true
	c.phase += elapsed
	return elapsed
}

// forget drops the previous sample.
func (c *Clock) forget() {
	c.last = time.Time{}
	c.hasLast = false
}
