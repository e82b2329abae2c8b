package sched

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time                { return c.t }
func (c *fakeClock) add(d time.Duration) time.Time { c.t = c.t.Add(d); return c.t }

func newTestLoop() (*Loop, *fakeClock) {
	c := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(c.now), c
}

func TestTimersFireInDueOrder(t *testing.T) {
	l, c := newTestLoop()
	var got []string
	l.After(30*time.Millisecond, func(time.Time) { got = append(got, "c") })
	l.After(10*time.Millisecond, func(time.Time) { got = append(got, "a") })
	l.After(20*time.Millisecond, func(time.Time) { got = append(got, "b") })
	l.After(10*time.Millisecond, func(time.Time) { got = append(got, "a2") })

	l.Dispatch(c.add(5 * time.Millisecond))
	assert.Empty(t, got)
	assert.Equal(t, 4, l.Pending())

	l.Dispatch(c.add(20 * time.Millisecond))
	assert.Equal(t, []string{"a", "a2", "b"}, got)

	l.Dispatch(c.add(time.Second))
	assert.Equal(t, []string{"a", "a2", "b", "c"}, got)
	assert.Equal(t, 0, l.Pending())
}

func TestIdleIsOneShot(t *testing.T) {
	l, c := newTestLoop()
	n := 0
	l.Idle(func(time.Time) { n++ })
	l.Dispatch(c.add(time.Millisecond))
	l.Dispatch(c.add(time.Millisecond))
	assert.Equal(t, 1, n)

	var rearm Func
	rearm = func(time.Time) {
		n++
		if n < 5 {
			l.Idle(rearm)
		}
	}
	l.Idle(rearm)
	for i := 0; i < 10; i++ {
		l.Dispatch(c.add(time.Millisecond))
	}
	assert.Equal(t, 5, n)
}

func TestRedisplayCoalesces(t *testing.T) {
	l, c := newTestLoop()
	frames := 0
	l.SetDisplay(func(time.Time) { frames++ })

	assert.False(t, l.Step(c.add(time.Millisecond)))

	l.PostRedisplay()
	l.PostRedisplay()
	l.Idle(func(time.Time) { l.PostRedisplay() })
	l.After(0, func(time.Time) { l.PostRedisplay() })

	assert.True(t, l.Step(c.add(time.Millisecond)))
	assert.Equal(t, 1, frames)
	assert.False(t, l.RedisplayPending())
	assert.False(t, l.Step(c.add(time.Millisecond)))
	assert.Equal(t, 1, frames)
}

func TestPostRunsOnDispatch(t *testing.T) {
	l, c := newTestLoop()
	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Post(func(time.Time) {
				mu.Lock()
				got = append(got, i)
				mu.Unlock()
			})
		}(i)
	}
	wg.Wait()
	assert.Empty(t, got)
	l.Dispatch(c.add(time.Millisecond))
	assert.Len(t, got, 8)
}

func TestRunReturnsOnStop(t *testing.T) {
	l := New(nil)
	steps := 0
	l.SetDisplay(func(time.Time) {
		steps++
		if steps == 3 {
			l.Stop()
		}
	})
	var tick Func
	tick = func(time.Time) {
		l.PostRedisplay()
		l.Idle(tick)
	}
	l.Idle(tick)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, l.Run(ctx, time.Millisecond))
	assert.Equal(t, 3, steps)
	assert.True(t, l.Stopped())
	l.Stop()
}

func TestRunReturnsOnContext(t *testing.T) {
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Run(ctx, time.Millisecond), context.Canceled)
}
