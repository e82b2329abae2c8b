package config

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, 5*time.Second, c.FPSInterval())
	assert.Equal(t, "GLyphy Demo", c.Window.Title)
	assert.Equal(t, 700, c.Window.Width)
}

func TestLoadOverridesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glyph.yaml")
	yml := `
window:
  width: 320
  height: -4
fps_interval_ms: 1000
params:
  contrast: 1.5
  gamma: 0
  debug: 0.9
headless:
  frames: -1
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 320, c.Window.Width)
	assert.Equal(t, 700, c.Window.Height)
	assert.Equal(t, "GLyphy Demo", c.Window.Title)
	assert.Equal(t, time.Second, c.FPSInterval())
	assert.Equal(t, 1.5, c.Params.Contrast)
	assert.Equal(t, 1.0, c.Params.Gamma)
	assert.Equal(t, 1.0, c.Params.Debug)
	assert.Equal(t, 0, c.Headless.Frames)
	assert.Equal(t, 60, c.Headless.Hz)

	lvl, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
}

func TestLoadBadLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glyph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: shouty\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glyph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: [1, 2\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	c := Default()
	c.Diag.Addr = ":9000"
	c.LED.Enabled = true
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestDefaultAnchor(t *testing.T) {
	assert.Equal(t, image.Pt(-200, -200), Default().Font.Anchor())
}
