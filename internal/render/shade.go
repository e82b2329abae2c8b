package render

import (
	"image"
	"image/color"
	"math"
)

// ShadeParams controls how glyph coverage becomes ink.
//   - Contrast stretches coverage around one half.
//   - Gamma is applied as coverage^(1/Gamma); non-positive means 1.
//   - Debug > 0.5 tints partial coverage red and fills the box faint blue.
type ShadeParams struct {
	Debug    float64
	Contrast float64
	Gamma    float64
}

var (
	ink      = color.RGBA{0, 0, 0, 0xff}
	edgeTint = color.RGBA{0xff, 0, 0, 0xff}
	boxTint  = color.RGBA{0, 0, 0x30, 0x30}
)

// Shade converts coverage into a premultiplied RGBA image with the same bounds.
func Shade(cov *image.Alpha, p ShadeParams) *image.RGBA {
	b := cov.Bounds()
	dst := image.NewRGBA(b)
	lut := shadeLUT(p)
	debug := p.Debug > 0.5

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := cov.AlphaAt(x, y).A
			out := lut[a]
			c := scale(ink, out)
			if debug {
				if a > 0 && a < 0xff {
					c = scale(edgeTint, out)
				}
				c = over(c, boxTint)
			}
			dst.SetRGBA(x, y, c)
		}
	}
	return dst
}

// ShadeCoverage applies contrast and gamma to a single coverage value in [0,1].
func ShadeCoverage(a float64, p ShadeParams) float64 {
	a = clamp01((a-0.5)*p.Contrast + 0.5)
	g := p.Gamma
	if g <= 0 {
		g = 1
	}
	if g != 1 {
		a = math.Pow(a, 1/g)
	}
	return clamp01(a)
}

func shadeLUT(p ShadeParams) (lut [256]uint8) {
	for i := range lut {
		lut[i] = uint8(math.Round(ShadeCoverage(float64(i)/0xff, p) * 0xff))
	}
	return lut
}

func scale(c color.RGBA, a uint8) color.RGBA {
	m := func(v uint8) uint8 { return uint8((uint16(v)*uint16(a) + 0x7f) / 0xff) }
	return color.RGBA{m(c.R), m(c.G), m(c.B), m(c.A)}
}

// over composites premultiplied src over dst.
func over(src, dst color.RGBA) color.RGBA {
	k := uint16(0xff - src.A)
	m := func(s, d uint8) uint8 { return s + uint8((uint16(d)*k+0x7f)/0xff) }
	return color.RGBA{m(src.R, dst.R), m(src.G, dst.G), m(src.B, dst.B), m(src.A, dst.A)}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
