// Package soft is a CPU render boundary backed by an *image.RGBA.
package soft

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/coreman2200/glyphloop/internal/render"
	"github.com/coreman2200/glyphloop/internal/view"
)

var ErrNoCoverage = errors.New("drawable has no coverage")

// Canvas rasterizes shaded glyph buffers through the current matrix.
type Canvas struct {
	*render.Uniforms

	img    *image.RGBA
	interp draw.Transformer

	// shaded image cache, valid while the drawable and uniforms are unchanged
	shaded    *image.RGBA
	shadedFor render.Drawable
	shadedGen uint64

	Draws int
}

func New(w, h int) *Canvas {
	c := &Canvas{Uniforms: render.DefaultUniforms(), interp: draw.BiLinear}
	c.Resize(w, h)
	return c
}

// Resize reallocates the target; the previous image is dropped.
func (c *Canvas) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

func (c *Canvas) Viewport() view.Viewport {
	s := c.img.Bounds().Size()
	return view.Viewport{Width: s.X, Height: s.Y}
}

// Image returns the render target. It is reused across frames.
func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *Canvas) Draw(d render.Drawable) error {
	cov := d.Coverage()
	if cov == nil {
		return ErrNoCoverage
	}
	vp := c.Viewport()
	if vp.Empty() {
		return nil
	}
	src := c.shade(d, cov)
	b := src.Bounds()
	o := d.Origin()
	origin := [2]float64{float64(o.X - b.Min.X), float64(o.Y - b.Min.Y)}
	s2d := view.PixelAffine(c.Matrix(), vp, origin)
	c.interp.Transform(c.img, s2d, src, b, draw.Over, nil)
	c.Draws++
	return nil
}

func (c *Canvas) shade(d render.Drawable, cov *image.Alpha) *image.RGBA {
	if c.shaded != nil && c.shadedFor == d && c.shadedGen == c.Generation() {
		return c.shaded
	}
	c.shaded = render.Shade(cov, c.Shading())
	c.shadedFor = d
	c.shadedGen = c.Generation()
	return c.shaded
}
