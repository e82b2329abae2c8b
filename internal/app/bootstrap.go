package app

import (
	"fmt"
	"time"

	"github.com/coreman2200/glyphloop/internal/anim"
	"github.com/coreman2200/glyphloop/internal/config"
	"github.com/coreman2200/glyphloop/internal/fps"
	"github.com/coreman2200/glyphloop/internal/params"
	"github.com/coreman2200/glyphloop/internal/render"
	"github.com/coreman2200/glyphloop/internal/sched"
)

// Options are the collaborators InitCore wires together.
type Options struct {
	Loop     *sched.Loop
	Boundary render.Boundary
	Window   Window
	Buffer   render.Drawable

	FPSInterval   time.Duration
	FrameInterval time.Duration
	Params        config.Params
	Observer      Observer

	// Metrics defaults to a fresh, unpublished set.
	Metrics *Metrics
}

// OptionsFrom fills timing and parameter defaults from cfg.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		FPSInterval:   cfg.FPSInterval(),
		FrameInterval: time.Duration(cfg.FrameMS) * time.Millisecond,
		Params:        cfg.Params,
	}
}

var bindings = []struct {
	name    string
	uniform string
}{
	{params.Debug, render.UniformDebug},
	{params.Contrast, render.UniformContrast},
	{params.Gamma, render.UniformGamma},
}

// InitCore resolves uniforms, defines the parameters, builds the animation
// machine and sampler, and registers the display callback. The first frame
// is requested immediately; animation starts stopped.
func InitCore(o Options) (*Conductor, error) {
	if o.Loop == nil || o.Boundary == nil || o.Window == nil || o.Buffer == nil {
		return nil, fmt.Errorf("init: missing collaborator")
	}

	c := &Conductor{
		Loop:          o.Loop,
		Bound:         o.Boundary,
		Win:           o.Window,
		Buf:           o.Buffer,
		FrameInterval: o.FrameInterval,
		Metrics:       o.Metrics,
		obs:           o.Observer,
	}
	if c.Metrics == nil {
		c.Metrics = NewMetrics()
	}

	initial := map[string]float64{
		params.Debug:    o.Params.Debug,
		params.Contrast: o.Params.Contrast,
		params.Gamma:    o.Params.Gamma,
	}
	c.Params = params.NewStore(o.Boundary, o.Loop.PostRedisplay)
	for _, b := range bindings {
		slot, err := o.Boundary.Uniform(b.uniform)
		if err != nil {
			return nil, fmt.Errorf("init: parameter %s: %w", b.name, err)
		}
		c.Params.Define(b.name, slot, initial[b.name])
	}
	c.Params.OnChange = o.Observer.OnParam

	c.Anim = anim.NewMachine(anim.Hooks{OnStart: c.onStart, OnStop: c.onStop})
	c.FPS = fps.NewSampler(o.FPSInterval, o.Loop, c.Anim.Running, c.report)

	o.Loop.SetDisplay(c.Display)
	o.Loop.PostRedisplay()
	return c, nil
}
