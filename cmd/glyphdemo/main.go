package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/glyphloop/internal/app"
	"github.com/coreman2200/glyphloop/internal/config"
	"github.com/coreman2200/glyphloop/internal/diag"
	"github.com/coreman2200/glyphloop/internal/font"
	"github.com/coreman2200/glyphloop/internal/host"
	"github.com/coreman2200/glyphloop/internal/led"
	"github.com/coreman2200/glyphloop/internal/textbuf"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a yaml config (optional)")
		headless   = flag.Bool("headless", false, "render offscreen instead of opening a window")
		frames     = flag.Int("frames", 0, "stop after N frames in headless mode (0 = run forever)")
		logLevel   = flag.String("log-level", "", "trace | debug | info | warn | error")
		diagAddr   = flag.String("diag-addr", "", "diagnostics listen address, e.g. :8080")
		ledPreview = flag.Bool("led", false, "mirror headless frames to an LED strip")
		saveConfig = flag.String("save-config", "", "write the effective config to this path and exit")
	)
	flag.Usage = usage
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	// ---- Config (flags override the file) ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "headless":
			cfg.Headless.Enabled = *headless
		case "frames":
			cfg.Headless.Frames = *frames
		case "log-level":
			cfg.LogLevel = *logLevel
		case "diag-addr":
			cfg.Diag.Addr = *diagAddr
		case "led":
			cfg.LED.Enabled = *ledPreview
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	lvl, _ := cfg.Level()
	zerolog.SetGlobalLevel(lvl)

	if *saveConfig != "" {
		if err := config.Save(*saveConfig, cfg); err != nil {
			log.Fatal().Err(err).Str("path", *saveConfig).Msg("config save failed")
		}
		log.Info().Str("path", *saveConfig).Msg("config saved")
		return
	}
	if flag.NArg() != 2 {
		usage()
		os.Exit(1)
	}
	fontPath, text := flag.Arg(0), flag.Arg(1)

	// ---- Font & text ----
	f, err := font.Load(fontPath, cfg.Font.Face)
	if err != nil {
		log.Fatal().Err(err).Msg("font")
	}
	face, err := f.Face(cfg.Font.Size)
	if err != nil {
		log.Fatal().Err(err).Msg("font face")
	}
	defer face.Close()
	buf, err := textbuf.Build(text, face, cfg.Font.Anchor())
	if err != nil {
		log.Fatal().Err(err).Msg("text buffer")
	}
	defer buf.Dispose()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Diagnostics ----
	hub := diag.NewHub()
	metrics := app.NewMetrics()
	setup := host.Setup{
		Config:  cfg,
		Buffer:  buf,
		Metrics: metrics,
		Ready: func(c *app.Conductor) {
			hub.SetControl(func(r rune) {
				c.Loop.Post(func(time.Time) { c.Key(r) })
			})
		},
	}
	if cfg.Diag.Addr != "" {
		setup.Observer = hub.Observer()
		if err := metrics.Publish("glyphdemo."); err != nil {
			log.Warn().Err(err).Msg("metrics")
		}
		go func() {
			if err := hub.Serve(ctx, cfg.Diag.Addr); err != nil {
				log.Error().Err(err).Msg("diagnostics server")
			}
		}()
	}

	// ---- Run ----
	if cfg.Headless.Enabled {
		if cfg.LED.Enabled {
			strip, err := led.Open(cfg.LED)
			if err != nil {
				log.Warn().Err(err).Msg("led preview disabled")
			} else {
				setup.Sink = strip
				defer strip.Close()
			}
		}
		off, err := host.RunHeadless(ctx, setup)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("headless")
		}
		if off != nil {
			log.Info().Int("frames", off.Swaps).Msg("done")
		}
		return
	}

	if cfg.LED.Enabled {
		log.Warn().Msg("led preview only runs headless")
	}
	if err := host.RunWindow(setup); err != nil {
		log.Fatal().Err(err).Msg("window")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: glyphdemo [flags] FONT_FILE TEXT\n       glyphdemo [flags] -save-config PATH")
	flag.PrintDefaults()
}
