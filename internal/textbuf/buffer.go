// Package textbuf lays out text into a glyph coverage buffer.
package textbuf

import (
	"errors"
	"image"
	"strings"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var ErrNoFace = errors.New("textbuf: nil face")

// Buffer is laid-out text ready to draw. It implements render.Drawable.
type Buffer struct {
	Text   string
	Lines  int
	anchor image.Point
	cov    *image.Alpha
}

// Build lays out text, one line per '\n', with the top-left corner at anchor.
func Build(text string, face xfont.Face, anchor image.Point) (*Buffer, error) {
	if face == nil {
		return nil, ErrNoFace
	}
	lines := strings.Split(text, "\n")
	m := face.Metrics()
	lineH := m.Height.Ceil()
	if lineH <= 0 {
		lineH = (m.Ascent + m.Descent).Ceil()
	}

	var w fixed.Int26_6
	for _, l := range lines {
		if lw := xfont.MeasureString(face, l); lw > w {
			w = lw
		}
	}

	cov := image.NewAlpha(image.Rect(0, 0, w.Ceil(), lineH*len(lines)))
	d := &xfont.Drawer{Dst: cov, Src: image.Opaque, Face: face}
	for i, l := range lines {
		d.Dot = fixed.Point26_6{X: 0, Y: m.Ascent + fixed.I(i*lineH)}
		d.DrawString(l)
	}
	return &Buffer{Text: text, Lines: len(lines), anchor: anchor, cov: cov}, nil
}

func (b *Buffer) Origin() image.Point { return b.anchor }

// Coverage is nil after Dispose.
func (b *Buffer) Coverage() *image.Alpha { return b.cov }

// Extents is the buffer's rectangle in buffer units.
func (b *Buffer) Extents() image.Rectangle {
	if b.cov == nil {
		return image.Rectangle{}
	}
	return b.cov.Bounds().Add(b.anchor)
}

func (b *Buffer) Dispose() { b.cov = nil }
