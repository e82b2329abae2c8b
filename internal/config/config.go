package config

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Window struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	Fullscreen bool   `yaml:"fullscreen"`
}

type Font struct {
	Face    int     `yaml:"face"` // index into a collection
	Size    float64 `yaml:"size"`
	AnchorX int     `yaml:"anchor_x"`
	AnchorY int     `yaml:"anchor_y"`
}

// Anchor is the buffer-space position of the text's top-left corner.
func (f Font) Anchor() image.Point { return image.Pt(f.AnchorX, f.AnchorY) }

// Params are the initial shading parameter values.
type Params struct {
	Debug    float64 `yaml:"debug"`
	Contrast float64 `yaml:"contrast"`
	Gamma    float64 `yaml:"gamma"`
}

type Headless struct {
	Enabled bool `yaml:"enabled"`
	Animate bool `yaml:"animate"` // start spinning immediately
	Hz      int  `yaml:"hz"`
	Frames  int  `yaml:"frames"` // 0 = unlimited
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0; empty = first port
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2400000
}

// LED is the optional strip preview of headless frames.
type LED struct {
	Enabled    bool    `yaml:"enabled"`
	Pixels     int     `yaml:"pixels"`
	Brightness float64 `yaml:"brightness"` // 0..1
	WhiteCap   float64 `yaml:"white_cap"`  // per-pixel r+g+b cap, fraction of full white
	SPI        SPI     `yaml:"spi,omitempty"`
}

type Diag struct {
	Addr string `yaml:"addr"` // e.g. :8080; empty disables
}

type Config struct {
	Window        Window   `yaml:"window"`
	FPSIntervalMS int      `yaml:"fps_interval_ms"`
	FrameMS       int      `yaml:"frame_ms"` // 0 = pace on idle
	Font          Font     `yaml:"font"`
	Params        Params   `yaml:"params"`
	Headless      Headless `yaml:"headless"`
	LED           LED      `yaml:"led"`
	Diag          Diag     `yaml:"diag"`
	LogLevel      string   `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Window:        Window{Width: 700, Height: 700, Title: "GLyphy Demo"},
		FPSIntervalMS: 5000,
		Font:          Font{Size: 100, AnchorX: -200, AnchorY: -200},
		Params:        Params{Debug: 0, Contrast: 1, Gamma: 1},
		Headless:      Headless{Animate: true, Hz: 60},
		LED:           LED{Pixels: 64, Brightness: 0.5, WhiteCap: 0.85, SPI: SPI{SpeedHz: 2400000}},
		LogLevel:      "info",
	}
}

// FPSInterval is the sampling window as a duration.
func (c *Config) FPSInterval() time.Duration {
	return time.Duration(c.FPSIntervalMS) * time.Millisecond
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	return zerolog.ParseLevel(c.LogLevel)
}

// Validate replaces out-of-range values with defaults. Only an unparsable
// log level is an error.
func (c *Config) Validate() error {
	d := Default()
	if c.Window.Width <= 0 {
		c.Window.Width = d.Window.Width
	}
	if c.Window.Height <= 0 {
		c.Window.Height = d.Window.Height
	}
	if c.Window.Title == "" {
		c.Window.Title = d.Window.Title
	}
	if c.FPSIntervalMS <= 0 {
		c.FPSIntervalMS = d.FPSIntervalMS
	}
	if c.FrameMS < 0 {
		c.FrameMS = 0
	}
	if c.Font.Face < 0 {
		c.Font.Face = 0
	}
	if c.Font.Size <= 0 {
		c.Font.Size = d.Font.Size
	}
	if c.Params.Debug > 0.5 {
		c.Params.Debug = 1
	} else {
		c.Params.Debug = 0
	}
	if c.Params.Contrast <= 0 {
		c.Params.Contrast = d.Params.Contrast
	}
	if c.Params.Gamma <= 0 {
		c.Params.Gamma = d.Params.Gamma
	}
	if c.Headless.Hz <= 0 {
		c.Headless.Hz = d.Headless.Hz
	}
	if c.Headless.Frames < 0 {
		c.Headless.Frames = 0
	}
	if c.LED.Pixels <= 0 {
		c.LED.Pixels = d.LED.Pixels
	}
	if c.LED.Brightness <= 0 || c.LED.Brightness > 1 {
		c.LED.Brightness = d.LED.Brightness
	}
	if c.LED.WhiteCap <= 0 || c.LED.WhiteCap > 1 {
		c.LED.WhiteCap = d.LED.WhiteCap
	}
	if c.LED.SPI.SpeedHz <= 0 {
		c.LED.SPI.SpeedHz = d.LED.SPI.SpeedHz
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Load reads a yaml file over the defaults. A missing file yields defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
