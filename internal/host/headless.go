package host

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/glyphloop/internal/render/soft"
	"github.com/coreman2200/glyphloop/internal/view"
)

// Offscreen is a fixed-size window backed by a software canvas.
type Offscreen struct {
	Canvas *soft.Canvas
	Sink   FrameSink

	Swaps int
	// Limit stops the loop once Swaps reaches it; 0 means no limit.
	Limit      int
	stop       func()
	fullscreen bool
}

func NewOffscreen(w, h int, sink FrameSink) *Offscreen {
	return &Offscreen{Canvas: soft.New(w, h), Sink: sink}
}

func (o *Offscreen) Viewport() view.Viewport { return o.Canvas.Viewport() }

func (o *Offscreen) Swap() {
	o.Swaps++
	if o.Sink != nil {
		if err := o.Sink.WriteFrame(o.Canvas.Image()); err != nil {
			log.Warn().Err(err).Msg("frame sink")
		}
	}
	if o.Limit > 0 && o.Swaps == o.Limit && o.stop != nil {
		log.Info().Int("frames", o.Swaps).Msg("frame limit reached")
		o.stop()
	}
}

func (o *Offscreen) Fullscreen() {
	if !o.fullscreen {
		o.fullscreen = true
		log.Info().Msg("fullscreen ignored offscreen")
	}
}

// RunHeadless renders without a window at cfg.Headless.Hz until ctx is
// cancelled, the conductor quits or the frame limit is reached.
func RunHeadless(ctx context.Context, s Setup) (*Offscreen, error) {
	cfg := s.Config
	hz := cfg.Headless.Hz
	if hz <= 0 {
		hz = 60
	}
	d := time.Second / time.Duration(hz)
	if d <= 0 {
		return nil, fmt.Errorf("invalid headless hz: %d", hz)
	}

	off := NewOffscreen(cfg.Window.Width, cfg.Window.Height, s.Sink)
	off.Limit = cfg.Headless.Frames
	loop, c, err := start(s, off.Canvas, off)
	if err != nil {
		return nil, err
	}
	off.stop = loop.Stop
	if cfg.Headless.Animate {
		c.Key(' ')
	}
	log.Info().Int("hz", hz).Int("frames", cfg.Headless.Frames).
		Int("w", cfg.Window.Width).Int("h", cfg.Window.Height).Msg("headless")

	return off, loop.Run(ctx, d)
}
