package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// Uniform names understood by every boundary.
const (
	UniformDebug    = "u_debug"
	UniformContrast = "u_contrast"
	UniformGamma    = "u_gamma"
	UniformMatrix   = "u_matViewProjection"
)

// ErrUnknownUniform is returned when a boundary has no slot for a name.
var ErrUnknownUniform = errors.New("unknown uniform")

// Slot is a resolved uniform location.
type Slot int

// NoSlot is the zero-value sentinel for an unresolved slot.
const NoSlot Slot = -1

// Drawable is a prepared glyph buffer. Coverage is laid out in buffer
// units with its top-left corner at Origin.
type Drawable interface {
	Origin() image.Point
	Coverage() *image.Alpha
}

// Boundary is the render target the loop drives once per frame.
type Boundary interface {
	Uniform(name string) (Slot, error)
	Set1f(s Slot, v float64)
	SetMatrix(m mgl32.Mat4)
	Clear(c color.Color)
	Draw(d Drawable) error
}

// Uniforms is a slot table shared by boundary implementations.
type Uniforms struct {
	slots  map[string]Slot
	names  []string
	values []float64
	matrix mgl32.Mat4
	gen    uint64
}

// NewUniforms declares the float uniforms a boundary accepts.
func NewUniforms(names ...string) *Uniforms {
	u := &Uniforms{slots: map[string]Slot{}}
	for _, n := range names {
		if _, ok := u.slots[n]; ok {
			continue
		}
		u.slots[n] = Slot(len(u.names))
		u.names = append(u.names, n)
		u.values = append(u.values, 0)
	}
	return u
}

// DefaultUniforms declares the glyph shading uniforms.
func DefaultUniforms() *Uniforms {
	return NewUniforms(UniformDebug, UniformContrast, UniformGamma)
}

func (u *Uniforms) Uniform(name string) (Slot, error) {
	s, ok := u.slots[name]
	if !ok {
		return NoSlot, fmt.Errorf("%w: %s", ErrUnknownUniform, name)
	}
	return s, nil
}

// Set1f stores v in slot s. Unresolved slots are ignored, like a GL
// uniform write to location -1.
func (u *Uniforms) Set1f(s Slot, v float64) {
	if s < 0 || int(s) >= len(u.values) {
		return
	}
	if u.values[s] != v {
		u.values[s] = v
		u.gen++
	}
}

func (u *Uniforms) Get1f(s Slot) float64 {
	if s < 0 || int(s) >= len(u.values) {
		return 0
	}
	return u.values[s]
}

// Value returns the value stored under name, 0 when undeclared.
func (u *Uniforms) Value(name string) float64 {
	s, ok := u.slots[name]
	if !ok {
		return 0
	}
	return u.values[s]
}

func (u *Uniforms) SetMatrix(m mgl32.Mat4) { u.matrix = m }
func (u *Uniforms) Matrix() mgl32.Mat4     { return u.matrix }

// Generation changes whenever a float uniform changes value.
func (u *Uniforms) Generation() uint64 { return u.gen }

// Shading returns the shading parameters currently held by the table.
func (u *Uniforms) Shading() ShadeParams {
	return ShadeParams{
		Debug:    u.Value(UniformDebug),
		Contrast: u.Value(UniformContrast),
		Gamma:    u.Value(UniformGamma),
	}
}
