// Package fps measures frame throughput over fixed sampling windows.
package fps

import (
	"time"

	"github.com/coreman2200/glyphloop/internal/sched"
)

// DefaultInterval is the sampling window used when none is configured.
const DefaultInterval = 5 * time.Second

// Report is one sampling window's result.
type Report struct {
	Rate   float64 // frames per second
	Frames uint64
	Window time.Duration
	At     time.Time
}

// Counter counts frames since the window start.
type Counter struct {
	frames      uint64
	windowStart time.Time
}

// Reset starts a new window at now.
func (c *Counter) Reset(now time.Time) {
	c.frames = 0
	c.windowStart = now
}

// Frame counts one frame.
func (c *Counter) Frame() { c.frames++ }

// Frames returns the frames counted in the current window.
func (c *Counter) Frames() uint64 { return c.frames }

// WindowStart returns when the current window began.
func (c *Counter) WindowStart() time.Time { return c.windowStart }

// Rate returns frames per second over [windowStart, now]. An empty or
// negative window reports 0.
func (c *Counter) Rate(now time.Time) float64 {
	window := now.Sub(c.windowStart)
	if window <= 0 {
		return 0
	}
	return float64(c.frames) / window.Seconds()
}

// Timer is the scheduling primitive the sampler re-arms itself with.
type Timer interface {
	After(d time.Duration, fn sched.Func)
}

// Sampler periodically reports the frame rate while animation is active.
// At most one sampling callback is pending at any time: Start only arms a
// callback when none is latched, and the callback clears the latch when it
// finds the animation stopped.
type Sampler struct {
	Interval time.Duration

	counter Counter
	latch   bool

	timer  Timer
	active func() bool
	emit   func(Report)
}

// NewSampler builds a sampler. active reports whether animation is running;
// emit receives every report. A non-positive interval uses DefaultInterval.
func NewSampler(interval time.Duration, timer Timer, active func() bool, emit func(Report)) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{Interval: interval, timer: timer, active: active, emit: emit}
}

// Start begins a fresh window at now and arms the sampling callback unless
// one is already pending.
func (s *Sampler) Start(now time.Time) {
	s.counter.Reset(now)
	if s.latch {
		return
	}
	s.latch = true
	s.timer.After(s.Interval, s.fire)
}

// Frame counts one frame in the current window.
func (s *Sampler) Frame() { s.counter.Frame() }

// Armed reports whether a sampling callback is pending.
func (s *Sampler) Armed() bool { return s.latch }

// Counter exposes the current window.
func (s *Sampler) Counter() *Counter { return &s.counter }

func (s *Sampler) fire(now time.Time) {
	if s.active == nil || !s.active() {
		s.latch = false
		return
	}
	s.timer.After(s.Interval, s.fire)
	r := Report{
		Rate:   s.counter.Rate(now),
		Frames: s.counter.frames,
		Window: now.Sub(s.counter.windowStart),
		At:     now,
	}
	s.counter.Reset(now)
	if s.emit != nil {
		s.emit(r)
	}
}
