// Package font loads OpenType/TrueType fonts, including collections.
package font

import (
	"errors"
	"fmt"
	"os"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// DefaultSize is the glyph size in pixels.
const DefaultSize = 100

var ErrFaceIndex = errors.New("face index out of range")

type Font struct {
	Path  string
	Index int

	f *opentype.Font
}

// Load reads path and selects face index from it.
func Load(path string, index int) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := Parse(data, index)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse accepts a single font or a collection.
func Parse(data []byte, index int) (*Font, error) {
	c, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if index < 0 || index >= c.NumFonts() {
		return nil, fmt.Errorf("%w: %d of %d", ErrFaceIndex, index, c.NumFonts())
	}
	f, err := c.Font(index)
	if err != nil {
		return nil, fmt.Errorf("face %d: %w", index, err)
	}
	return &Font{Index: index, f: f}, nil
}

// Face returns a face at size pixels. Callers close it when done.
func (f *Font) Face(size float64) (xfont.Face, error) {
	if size <= 0 {
		size = DefaultSize
	}
	return opentype.NewFace(f.f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: xfont.HintingNone,
	})
}
