// Package view builds the per-frame view-projection matrix that spins the
// text about the window centre.
package view

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/math/f64"
)

// SpinRate scales animation milliseconds into half-degrees of rotation.
const SpinRate = 0.05

// Viewport is the drawable size in pixels.
type Viewport struct {
	Width, Height int
}

func (v Viewport) Empty() bool { return v.Width <= 0 || v.Height <= 0 }

// Angle returns the rotation in radians for an animation phase.
func Angle(phase time.Duration) float64 {
	ms := float64(phase) / float64(time.Millisecond)
	return math.Pi / 360 * ms * SpinRate
}

// Transform maps buffer units to clip space: one unit per pixel, y down,
// rotated by Angle(phase). A zero-sized axis gets zero scale.
func Transform(phase time.Duration, vp Viewport) mgl32.Mat4 {
	theta := Angle(phase)
	c, s := math.Cos(theta), math.Sin(theta)
	sx, sy := inv2(vp.Width), inv2(vp.Height)

	var m mgl32.Mat4
	m[0] = float32(c * sx)
	m[1] = float32(-s * sy)
	m[4] = float32(-s * sx)
	m[5] = float32(-c * sy)
	m[15] = 1
	return m
}

func inv2(n int) float64 {
	if n <= 0 {
		return 0
	}
	return 2 / float64(n)
}

// PixelAffine composes m with the clip-to-pixel mapping of vp, for a buffer
// whose pixel (0,0) sits at origin in buffer units. The result maps source
// pixels to destination pixels with y pointing down.
func PixelAffine(m mgl32.Mat4, vp Viewport, origin [2]float64) f64.Aff3 {
	hw, hh := float64(vp.Width)/2, float64(vp.Height)/2
	m0, m1 := float64(m[0]), float64(m[1])
	m4, m5 := float64(m[4]), float64(m[5])
	m12, m13 := float64(m[12]), float64(m[13])
	ox, oy := origin[0], origin[1]

	return f64.Aff3{
		m0 * hw, m4 * hw, (m0*ox + m4*oy + m12 + 1) * hw,
		-m1 * hh, -m5 * hh, (1 - (m1*ox + m5*oy + m13)) * hh,
	}
}
