package app

import (
	"image/color"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/glyphloop/internal/anim"
	"github.com/coreman2200/glyphloop/internal/fps"
	"github.com/coreman2200/glyphloop/internal/params"
	"github.com/coreman2200/glyphloop/internal/render"
	"github.com/coreman2200/glyphloop/internal/sched"
	"github.com/coreman2200/glyphloop/internal/view"
)

// Key codes beyond printable runes.
const KeyEscape rune = 0x1b

// Window is the windowing collaborator. It owns the viewport.
type Window interface {
	Viewport() view.Viewport
	Swap()
	Fullscreen()
}

// Observer receives loop events. Any field may be nil.
type Observer struct {
	OnFPS   func(fps.Report)
	OnParam func(params.Parameter)
	OnState func(anim.State, time.Time)
	OnQuit  func()
}

// Conductor drives one window: input, pacing and per-frame display.
// All methods run on the loop thread.
type Conductor struct {
	Loop   *sched.Loop
	Anim   *anim.Machine
	FPS    *fps.Sampler
	Params *params.Store
	Bound  render.Boundary
	Win    Window
	Buf    render.Drawable

	// FrameInterval > 0 paces animation with a timer instead of the idle slot.
	FrameInterval time.Duration

	obs     Observer
	quit    bool
	stepped bool // a timed step is pending

	Metrics *Metrics

	// last displayed frame
	Last struct {
		Phase  time.Duration
		Frames uint64
	}
}

// Key handles one keyboard input. Unknown keys are ignored.
func (c *Conductor) Key(r rune) {
	var err error
	switch r {
	case KeyEscape, 'q':
		c.Quit()
	case ' ':
		c.Anim.Toggle(c.Loop.Now())
		c.Loop.PostRedisplay()
	case 'f':
		c.Win.Fullscreen()
	case 'd':
		err = c.Params.Toggle(params.Debug)
	case 'a':
		err = c.Params.Increase(params.Contrast)
	case 'z':
		err = c.Params.Decrease(params.Contrast)
	case 'g':
		err = c.Params.Increase(params.Gamma)
	case 'b':
		err = c.Params.Decrease(params.Gamma)
	}
	if err != nil {
		log.Error().Err(err).Str("key", string(r)).Msg("key binding")
	}
}

// Resize is called after the window has updated its viewport.
func (c *Conductor) Resize(w, h int) {
	log.Debug().Int("w", w).Int("h", h).Msg("resize")
	c.Loop.PostRedisplay()
}

// Quit stops the loop. The process exits with status 0.
func (c *Conductor) Quit() {
	if c.quit {
		return
	}
	c.quit = true
	c.Loop.Stop()
	if c.obs.OnQuit != nil {
		c.obs.OnQuit()
	}
}

func (c *Conductor) Quitting() bool { return c.quit }

// Display renders one frame at now.
func (c *Conductor) Display(now time.Time) {
	start := time.Now()
	vp := c.Win.Viewport()

	clk := c.Anim.Clock()
	clk.Advance(now)
	m := view.Transform(clk.Phase(), vp)

	c.Bound.Clear(color.White)
	c.Bound.SetMatrix(m)
	drawStart := time.Now()
	if err := c.Bound.Draw(c.Buf); err != nil {
		log.Error().Err(err).Msg("draw")
		return
	}
	c.Metrics.DrawMS.Add(msSince(drawStart))
	c.Win.Swap()

	c.Last.Phase = clk.Phase()
	c.Last.Frames++
	c.Metrics.Frames.Add(1)
	c.Metrics.FrameMS.Add(msSince(start))
}

func (c *Conductor) onStart(now time.Time) {
	c.FPS.Start(now)
	if c.FrameInterval > 0 {
		if !c.stepped {
			c.stepped = true
			c.Loop.After(c.FrameInterval, c.timedStep)
		}
	} else {
		c.Loop.Idle(c.idleStep)
	}
	c.notifyState(anim.Running, now)
}

func (c *Conductor) onStop(now time.Time) {
	c.notifyState(anim.Stopped, now)
}

func (c *Conductor) notifyState(s anim.State, now time.Time) {
	log.Debug().Stringer("state", s).Msg("animation")
	if c.obs.OnState != nil {
		c.obs.OnState(s, now)
	}
}

// idleStep counts a frame and requests a redraw on every idle pass while
// running. Once stopped it declines to re-arm.
func (c *Conductor) idleStep(time.Time) {
	if !c.Anim.Running() {
		return
	}
	c.Loop.Idle(c.idleStep)
	c.FPS.Frame()
	c.Loop.PostRedisplay()
}

func (c *Conductor) timedStep(time.Time) {
	if !c.Anim.Running() {
		c.stepped = false
		return
	}
	c.Loop.After(c.FrameInterval, c.timedStep)
	c.FPS.Frame()
	c.Loop.PostRedisplay()
}

func (c *Conductor) report(r fps.Report) {
	log.Info().Float64("fps", r.Rate).Uint64("frames", r.Frames).Msgf("%gfps", r.Rate)
	c.Metrics.FPS.Add(r.Rate)
	if c.obs.OnFPS != nil {
		c.obs.OnFPS(r)
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
