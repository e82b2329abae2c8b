// Package led mirrors rendered frames onto an addressable LED strip, or onto
// the terminal when no SPI port is available.
package led

import (
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/devices/v3/screen1d"
	"periph.io/x/host/v3"

	"github.com/coreman2200/glyphloop/internal/config"
)

// MinInterval throttles strip updates; strips can't keep up with the loop.
const MinInterval = 50 * time.Millisecond

// Strip down-samples a horizontal band through the middle of each frame.
type Strip struct {
	drawer display.Drawer
	port   spi.PortCloser
	SPI    bool

	// Brightness and WhiteCap feed Limit before every write.
	Brightness float64
	WhiteCap   float64

	row  *image.RGBA
	last time.Time
	now  func() time.Time

	Written int
	Skipped int
}

// New wraps an already opened drawer.
func New(d display.Drawer, pixels int) *Strip {
	if pixels <= 0 {
		pixels = d.Bounds().Dx()
	}
	return &Strip{
		drawer: d,
		row:    image.NewRGBA(image.Rect(0, 0, pixels, 1)),
		now:    time.Now,
	}
}

// Open initialises periph and drives an nrzled strip on the configured SPI
// port, falling back to a console strip.
func Open(cfg config.LED) (*Strip, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph init: %w", err)
	}
	p, err := spireg.Open(cfg.SPI.Dev)
	if err != nil {
		log.Warn().Err(err).Msg("no SPI port, previewing on the console")
		s := New(screen1d.New(&screen1d.Opts{X: cfg.Pixels}), cfg.Pixels)
		s.Brightness, s.WhiteCap = cfg.Brightness, cfg.WhiteCap
		return s, nil
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: cfg.Pixels,
		Channels:  3,
		Freq:      physic.Frequency(cfg.SPI.SpeedHz) * physic.Hertz,
	})
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	if err := d.Halt(); err != nil {
		log.Warn().Err(err).Msg("nrzled halt")
	}
	s := New(d, cfg.Pixels)
	s.Brightness, s.WhiteCap = cfg.Brightness, cfg.WhiteCap
	s.port = p
	s.SPI = true
	log.Info().Str("port", p.String()).Int("pixels", cfg.Pixels).Msg("led strip")
	return s, nil
}

// WriteFrame implements host.FrameSink.
func (s *Strip) WriteFrame(img *image.RGBA) error { return s.Write(img) }

// Write pushes one frame unless the previous write was under MinInterval ago.
func (s *Strip) Write(img image.Image) error {
	now := s.now()
	if !s.last.IsZero() && now.Sub(s.last) < MinInterval {
		s.Skipped++
		return nil
	}
	s.last = now

	b := img.Bounds()
	band := b.Dy() / 8
	if band < 1 {
		band = 1
	}
	mid := b.Min.Y + b.Dy()/2
	src := image.Rect(b.Min.X, mid-band/2, b.Max.X, mid-band/2+band).Intersect(b)
	draw.ApproxBiLinear.Scale(s.row, s.row.Bounds(), img, src, draw.Src, nil)
	Limit(s.row, s.Brightness, s.WhiteCap)

	if err := s.drawer.Draw(s.drawer.Bounds(), s.row, image.Point{}); err != nil {
		return err
	}
	s.Written++
	return nil
}

// Row is the most recently written strip image.
func (s *Strip) Row() *image.RGBA { return s.row }

func (s *Strip) Close() error {
	err := s.drawer.Halt()
	if s.port != nil {
		if cerr := s.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
