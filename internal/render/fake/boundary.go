// Package fake provides a render boundary that records calls, for tests and
// for running the loop without any output.
package fake

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/coreman2200/glyphloop/internal/render"
)

// Boundary records every frame it is asked to draw.
type Boundary struct {
	*render.Uniforms

	Clears   int
	Draws    int
	Matrices []mgl32.Mat4
	LastClr  color.Color
	Last     render.Drawable

	// DrawErr, if set, is returned from Draw.
	DrawErr error
}

func New() *Boundary { return &Boundary{Uniforms: render.DefaultUniforms()} }

func (b *Boundary) SetMatrix(m mgl32.Mat4) {
	b.Uniforms.SetMatrix(m)
	b.Matrices = append(b.Matrices, m)
}

func (b *Boundary) Clear(c color.Color) {
	b.Clears++
	b.LastClr = c
}

func (b *Boundary) Draw(d render.Drawable) error {
	if b.DrawErr != nil {
		return b.DrawErr
	}
	b.Draws++
	b.Last = d
	return nil
}
