//go:build cgo

package host

import (
	"errors"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/glyphloop/internal/app"
	"github.com/coreman2200/glyphloop/internal/render"
	"github.com/coreman2200/glyphloop/internal/sched"
	"github.com/coreman2200/glyphloop/internal/view"
)

// RunWindow opens a desktop window and blocks until it closes or the
// conductor quits.
func RunWindow(s Setup) error {
	cfg := s.Config
	g := &game{b: &boundary{Uniforms: render.DefaultUniforms()}}
	g.w, g.h = cfg.Window.Width, cfg.Window.Height

	loop, c, err := start(s, g.b, g)
	if err != nil {
		return err
	}
	g.loop, g.c = loop, c

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetScreenClearedEveryFrame(false)
	ebiten.SetTPS(ebiten.SyncWithFPS)
	if cfg.Window.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	err = ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type game struct {
	loop  *sched.Loop
	c     *app.Conductor
	b     *boundary
	w, h  int
	chars []rune
}

func (g *game) Update() error {
	g.chars = ebiten.AppendInputChars(g.chars[:0])
	for _, r := range g.chars {
		g.c.Key(r)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.c.Key(app.KeyEscape)
	}
	g.loop.Dispatch(g.loop.Now())
	if g.c.Quitting() || g.loop.Stopped() {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if !g.loop.TakeRedisplay() {
		return
	}
	g.b.screen = screen
	g.c.Display(g.loop.Now())
	g.b.screen = nil
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		if g.c != nil {
			g.c.Resize(g.w, g.h)
		}
	}
	return g.w, g.h
}

func (g *game) Viewport() view.Viewport { return view.Viewport{Width: g.w, Height: g.h} }

// Swap is a no-op: ebiten presents after Draw returns.
func (g *game) Swap() {}

func (g *game) Fullscreen() { ebiten.SetFullscreen(true) }

// boundary draws the shaded buffer as a texture through GeoM.
type boundary struct {
	*render.Uniforms
	screen *ebiten.Image

	tex    *ebiten.Image
	texFor render.Drawable
	texGen uint64
}

func (b *boundary) Clear(c color.Color) {
	if b.screen != nil {
		b.screen.Fill(c)
	}
}

func (b *boundary) Draw(d render.Drawable) error {
	if b.screen == nil {
		return errors.New("draw outside frame")
	}
	cov := d.Coverage()
	if cov == nil {
		return errors.New("drawable has no coverage")
	}
	s := b.screen.Bounds().Size()
	vp := view.Viewport{Width: s.X, Height: s.Y}
	if vp.Empty() || cov.Bounds().Empty() {
		return nil
	}
	b.upload(d, cov)

	o := d.Origin().Sub(cov.Bounds().Min)
	a := view.PixelAffine(b.Matrix(), vp, [2]float64{float64(o.X), float64(o.Y)})
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.SetElement(0, 0, a[0])
	op.GeoM.SetElement(0, 1, a[1])
	op.GeoM.SetElement(0, 2, a[2])
	op.GeoM.SetElement(1, 0, a[3])
	op.GeoM.SetElement(1, 1, a[4])
	op.GeoM.SetElement(1, 2, a[5])
	b.screen.DrawImage(b.tex, op)
	return nil
}

func (b *boundary) upload(d render.Drawable, cov *image.Alpha) {
	if b.tex != nil && b.texFor == d && b.texGen == b.Generation() {
		return
	}
	if b.tex != nil {
		b.tex.Deallocate()
	}
	b.tex = ebiten.NewImageFromImage(render.Shade(cov, b.Shading()))
	b.texFor = d
	b.texGen = b.Generation()
	log.Debug().Uint64("gen", b.texGen).Msg("texture upload")
}
