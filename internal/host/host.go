// Package host runs the conductor against a real window or offscreen.
package host

import (
	"image"

	"github.com/coreman2200/glyphloop/internal/app"
	"github.com/coreman2200/glyphloop/internal/config"
	"github.com/coreman2200/glyphloop/internal/render"
	"github.com/coreman2200/glyphloop/internal/sched"
)

// Setup is what every host needs to start the loop.
type Setup struct {
	Config   *config.Config
	Buffer   render.Drawable
	Observer app.Observer
	Metrics  *app.Metrics

	// Ready runs on the loop thread once the conductor exists.
	Ready func(c *app.Conductor)

	// Sink receives every headless frame. Optional.
	Sink FrameSink
}

// FrameSink consumes displayed frames. The image is reused by the caller.
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
}

func start(s Setup, b render.Boundary, w app.Window) (*sched.Loop, *app.Conductor, error) {
	loop := sched.New(nil)
	o := app.OptionsFrom(s.Config)
	o.Loop = loop
	o.Boundary = b
	o.Window = w
	o.Buffer = s.Buffer
	o.Observer = s.Observer
	o.Metrics = s.Metrics
	c, err := app.InitCore(o)
	if err != nil {
		return nil, nil, err
	}
	if s.Ready != nil {
		s.Ready(c)
	}
	return loop, c, nil
}
