// Package sched provides the single-threaded dispatch loop the render loop
// runs on: one-shot timers, a one-shot idle slot, a coalescing redisplay
// flag and a goroutine-safe post queue.
//
// Everything except Post, Stop and Stopped must be called from the loop
// thread (the goroutine calling Dispatch/Step/Run).
package sched

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Func is a scheduled callback. now is the loop time it was dispatched at.
type Func func(now time.Time)

// Loop is a cooperative callback scheduler.
type Loop struct {
	now     func() time.Time
	display Func

	timers timerQueue
	seq    uint64
	idle   Func
	redraw bool

	mu      sync.Mutex
	posted  []Func
	stopped bool
	done    chan struct{}
}

// New creates a Loop. If now is nil, time.Now is used.
func New(now func() time.Time) *Loop {
	if now == nil {
		now = time.Now
	}
	return &Loop{now: now, done: make(chan struct{})}
}

// Now returns the loop clock.
func (l *Loop) Now() time.Time { return l.now() }

// SetDisplay installs the redraw callback used by Step and Run.
func (l *Loop) SetDisplay(fn Func) { l.display = fn }

// After schedules fn to run once, d after now.
func (l *Loop) After(d time.Duration, fn Func) {
	l.seq++
	heap.Push(&l.timers, &timer{due: l.now().Add(d), seq: l.seq, fn: fn})
}

// Idle sets the callback for the next idle slot. The slot is one-shot: a
// callback that wants to run again must call Idle itself.
func (l *Loop) Idle(fn Func) { l.idle = fn }

// PostRedisplay requests a redraw. Requests coalesce until the next display.
func (l *Loop) PostRedisplay() { l.redraw = true }

// RedisplayPending reports whether a redraw has been requested.
func (l *Loop) RedisplayPending() bool { return l.redraw }

// TakeRedisplay consumes the pending redraw request.
func (l *Loop) TakeRedisplay() bool {
	r := l.redraw
	l.redraw = false
	return r
}

// Post queues fn to run on the loop thread. Safe from any goroutine.
func (l *Loop) Post(fn Func) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
}

// Stop asks Run to return. Safe from any goroutine.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.stopped {
		l.stopped = true
		close(l.done)
	}
}

// Stopped reports whether Stop was called.
func (l *Loop) Stopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

// Done is closed by Stop.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Pending returns the number of armed timers.
func (l *Loop) Pending() int { return l.timers.Len() }

// Dispatch runs posted events, then every timer due at now in due order,
// then the idle callback. It does not display.
func (l *Loop) Dispatch(now time.Time) {
	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()
	for _, fn := range posted {
		fn(now)
	}

	for l.timers.Len() > 0 && !l.timers[0].due.After(now) {
		t := heap.Pop(&l.timers).(*timer)
		t.fn(now)
	}

	if fn := l.idle; fn != nil {
		l.idle = nil
		fn(now)
	}
}

// Step dispatches and then displays at most once if a redraw is pending.
// It reports whether a frame was displayed.
func (l *Loop) Step(now time.Time) bool {
	l.Dispatch(now)
	if !l.TakeRedisplay() || l.display == nil {
		return false
	}
	l.display(now)
	return true
}

// Run steps the loop every tick until Stop is called or ctx is done.
func (l *Loop) Run(ctx context.Context, tick time.Duration) error {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-t.C:
			l.Step(l.now())
			if l.Stopped() {
				return nil
			}
		}
	}
}
