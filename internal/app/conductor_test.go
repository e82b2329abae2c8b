package app

import (
	"encoding/json"
	"errors"
	"expvar"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/glyphloop/internal/anim"
	"github.com/coreman2200/glyphloop/internal/config"
	"github.com/coreman2200/glyphloop/internal/fps"
	"github.com/coreman2200/glyphloop/internal/params"
	"github.com/coreman2200/glyphloop/internal/render"
	"github.com/coreman2200/glyphloop/internal/render/fake"
	"github.com/coreman2200/glyphloop/internal/sched"
	"github.com/coreman2200/glyphloop/internal/view"
)

type window struct {
	vp         view.Viewport
	swaps      int
	fullscreen int
}

func (w *window) Viewport() view.Viewport { return w.vp }
func (w *window) Swap()                   { w.swaps++ }
func (w *window) Fullscreen()             { w.fullscreen++ }

type text struct{}

func (text) Origin() image.Point    { return image.Pt(-200, -200) }
func (text) Coverage() *image.Alpha { return image.NewAlpha(image.Rect(0, 0, 4, 4)) }

type rig struct {
	clock   time.Time
	loop    *sched.Loop
	bound   *fake.Boundary
	win     *window
	c       *Conductor
	reports []fps.Report
	states  []anim.State
	changes []params.Parameter
	quits   int
}

func newRig(t *testing.T, mod func(*Options)) *rig {
	t.Helper()
	r := &rig{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	r.loop = sched.New(func() time.Time { return r.clock })
	r.bound = fake.New()
	r.win = &window{vp: view.Viewport{Width: 700, Height: 700}}

	o := OptionsFrom(config.Default())
	o.Loop = r.loop
	o.Boundary = r.bound
	o.Window = r.win
	o.Buffer = text{}
	o.Observer = Observer{
		OnFPS:   func(rep fps.Report) { r.reports = append(r.reports, rep) },
		OnParam: func(p params.Parameter) { r.changes = append(r.changes, p) },
		OnState: func(s anim.State, _ time.Time) { r.states = append(r.states, s) },
		OnQuit:  func() { r.quits++ },
	}
	if mod != nil {
		mod(&o)
	}
	c, err := InitCore(o)
	require.NoError(t, err)
	r.c = c
	return r
}

// step advances the clock and runs one loop iteration.
func (r *rig) step(d time.Duration) bool {
	r.clock = r.clock.Add(d)
	return r.loop.Step(r.clock)
}

func TestInitCoreDefinesParamsAndRequestsFirstFrame(t *testing.T) {
	r := newRig(t, nil)
	assert.Equal(t, map[string]float64{"debug": 0, "contrast": 1, "gamma": 1}, r.c.Params.Values())
	assert.Equal(t, 1.0, r.bound.Value(render.UniformContrast))
	assert.Equal(t, anim.Stopped, r.c.Anim.State())

	assert.True(t, r.step(0))
	assert.Equal(t, 1, r.win.swaps)
	assert.Equal(t, 1, r.bound.Clears)
	assert.Equal(t, color.White, r.bound.LastClr)
	assert.False(t, r.step(time.Millisecond), "no redraw without a request")
}

type noSlots struct{ *fake.Boundary }

func (noSlots) Uniform(name string) (render.Slot, error) {
	return render.NoSlot, render.ErrUnknownUniform
}

func TestInitCoreUniformFailure(t *testing.T) {
	_, err := InitCore(Options{
		Loop:     sched.New(nil),
		Boundary: noSlots{fake.New()},
		Window:   &window{},
		Buffer:   text{},
	})
	assert.ErrorIs(t, err, render.ErrUnknownUniform)

	_, err = InitCore(Options{})
	assert.Error(t, err)
}

func TestDisplayAtRestMatchesTransform(t *testing.T) {
	r := newRig(t, nil)
	r.step(0)
	require.Len(t, r.bound.Matrices, 1)
	m := r.bound.Matrices[0]
	assert.InDelta(t, 2.0/700, m[0], 1e-7)
	assert.InDelta(t, -2.0/700, m[5], 1e-7)
	assert.Equal(t, r.c.Buf, r.bound.Last)
}

func TestSpaceStartsAnimationAndCountsIdleFrames(t *testing.T) {
	r := newRig(t, nil)
	r.step(0)

	r.c.Key(' ')
	assert.Equal(t, anim.Running, r.c.Anim.State())
	assert.Equal(t, []anim.State{anim.Running}, r.states)
	assert.True(t, r.c.FPS.Armed())

	// First running frame: no previous sample, phase stays 0.
	assert.True(t, r.step(0))
	assert.Equal(t, time.Duration(0), r.c.Last.Phase)

	for i := 0; i < 10; i++ {
		assert.True(t, r.step(16*time.Millisecond))
	}
	assert.Equal(t, 160*time.Millisecond, r.c.Last.Phase)
	assert.Equal(t, uint64(11), r.c.FPS.Counter().Frames())
}

func TestPauseFreezesPhaseAndResumesWithoutJump(t *testing.T) {
	r := newRig(t, nil)
	r.c.Key(' ')
	r.step(0)
	r.step(100 * time.Millisecond)
	r.step(100 * time.Millisecond)
	require.Equal(t, 200*time.Millisecond, r.c.Last.Phase)

	r.c.Key(' ')
	assert.True(t, r.step(0), "toggle requests a redraw")
	assert.False(t, r.step(time.Second), "idle declines to re-arm once stopped")
	assert.Equal(t, 200*time.Millisecond, r.c.Last.Phase)

	// Ten seconds later: resume, no jump.
	r.clock = r.clock.Add(10 * time.Second)
	r.c.Key(' ')
	r.step(0)
	assert.Equal(t, 200*time.Millisecond, r.c.Last.Phase)
	r.step(50 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, r.c.Last.Phase)
}

func TestFPSReportAfterInterval(t *testing.T) {
	r := newRig(t, nil)
	r.c.Key(' ')
	for i := 0; i < 100; i++ {
		r.step(50 * time.Millisecond)
	}
	require.Len(t, r.reports, 1)
	assert.InDelta(t, 20.0, r.reports[0].Rate, 0.5)
	assert.Equal(t, 5*time.Second, r.reports[0].Window)
}

func TestFPSLatchAcrossRapidToggles(t *testing.T) {
	r := newRig(t, nil)
	for i := 0; i < 7; i++ {
		r.c.Key(' ')
		r.step(10 * time.Millisecond)
	}
	assert.Equal(t, anim.Running, r.c.Anim.State())
	assert.Equal(t, 1, r.loop.Pending(), "one sampling callback in flight")
}

func TestParameterKeys(t *testing.T) {
	r := newRig(t, nil)
	r.step(0)
	swaps := r.win.swaps

	r.c.Key('d')
	r.c.Key('a')
	r.c.Key('a')
	r.c.Key('z')
	r.c.Key('g')
	r.c.Key('b')
	r.c.Key('b')

	v := r.c.Params.Values()
	assert.Equal(t, 1.0, v[params.Debug])
	assert.InDelta(t, 1/0.9, v[params.Contrast], 1e-9)
	assert.InDelta(t, 0.9, v[params.Gamma], 1e-9)
	assert.InDelta(t, 0.9, r.bound.Value(render.UniformGamma), 1e-9)
	assert.Len(t, r.changes, 7)

	// All seven requests coalesce into one frame.
	assert.True(t, r.step(0))
	assert.False(t, r.step(0))
	assert.Equal(t, swaps+1, r.win.swaps)
}

func TestUnknownKeyIgnored(t *testing.T) {
	r := newRig(t, nil)
	r.step(0)
	before := r.c.Params.Values()
	r.c.Key('x')
	assert.Equal(t, before, r.c.Params.Values())
	assert.False(t, r.step(0))
	assert.Equal(t, anim.Stopped, r.c.Anim.State())
}

func TestFullscreenAndResize(t *testing.T) {
	r := newRig(t, nil)
	r.step(0)
	r.c.Key('f')
	assert.Equal(t, 1, r.win.fullscreen)

	r.win.vp = view.Viewport{Width: 350, Height: 700}
	r.c.Resize(350, 700)
	assert.True(t, r.step(0))
	m := r.bound.Matrices[len(r.bound.Matrices)-1]
	assert.InDelta(t, 2.0/350, m[0], 1e-7)
	assert.InDelta(t, -2.0/700, m[5], 1e-7)
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []rune{KeyEscape, 'q'} {
		r := newRig(t, nil)
		r.c.Key(k)
		r.c.Key(k)
		assert.True(t, r.c.Quitting())
		assert.True(t, r.loop.Stopped())
		assert.Equal(t, 1, r.quits)
	}
}

func TestDrawErrorSkipsSwap(t *testing.T) {
	r := newRig(t, nil)
	r.bound.DrawErr = errors.New("lost context")
	r.step(0)
	assert.Equal(t, 0, r.win.swaps)
	assert.Equal(t, uint64(0), r.c.Last.Frames)
}

func TestTimedPacing(t *testing.T) {
	r := newRig(t, func(o *Options) { o.FrameInterval = 20 * time.Millisecond })
	r.step(0)
	r.c.Key(' ')
	r.step(0)
	frames := r.win.swaps

	for i := 0; i < 5; i++ {
		assert.True(t, r.step(20*time.Millisecond))
	}
	assert.Equal(t, frames+5, r.win.swaps)
	assert.Equal(t, uint64(5), r.c.FPS.Counter().Frames())

	// Rapid stop/start keeps a single step timer alongside the sampler.
	r.c.Key(' ')
	r.c.Key(' ')
	assert.Equal(t, 2, r.loop.Pending())
}

func TestDisplayFeedsMetrics(t *testing.T) {
	r := newRig(t, nil)
	r.step(0)
	r.c.Key(' ')
	for i := 0; i < 4; i++ {
		r.step(16 * time.Millisecond)
	}
	require.NotZero(t, r.c.Last.Frames)

	fresh := NewMetrics()
	for name, pair := range map[string][2]string{
		"frames":  {fresh.Frames.String(), r.c.Metrics.Frames.String()},
		"draw":    {fresh.DrawMS.String(), r.c.Metrics.DrawMS.String()},
		"frameMs": {fresh.FrameMS.String(), r.c.Metrics.FrameMS.String()},
	} {
		assert.True(t, json.Valid([]byte(pair[1])), name)
		assert.NotEqual(t, pair[0], pair[1], name)
	}
}

func TestMetricsPublishOnce(t *testing.T) {
	m := NewMetrics()
	require.NoError(t, m.Publish("apptest."))
	assert.NotNil(t, expvar.Get("apptest.DrawMs"))
	assert.ErrorIs(t, NewMetrics().Publish("apptest."), ErrPublished)
}
