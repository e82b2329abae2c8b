package font

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestParseSingleFont(t *testing.T) {
	f, err := Parse(goregular.TTF, 0)
	require.NoError(t, err)

	face, err := f.Face(DefaultSize)
	require.NoError(t, err)
	defer face.Close()

	m := face.Metrics()
	assert.Greater(t, m.Height.Ceil(), 90)
	adv, ok := face.GlyphAdvance('A')
	assert.True(t, ok)
	assert.Greater(t, adv.Ceil(), 0)
}

func TestParseBadIndex(t *testing.T) {
	_, err := Parse(goregular.TTF, 1)
	assert.ErrorIs(t, err, ErrFaceIndex)
	_, err = Parse(goregular.TTF, -1)
	assert.ErrorIs(t, err, ErrFaceIndex)
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse([]byte("not a font"), 0)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "goregular.ttf")
	require.NoError(t, os.WriteFile(path, goregular.TTF, 0o644))

	f, err := Load(path, 0)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)

	_, err = Load(filepath.Join(dir, "missing.ttf"), 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
