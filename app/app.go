// Package app wires one renderer run: config, host surface, compositor,
// driver, vector feed and scheduler.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"meaningfield/field/driver"
	"meaningfield/field/feed"
	"meaningfield/field/meaning"
	"meaningfield/hal"
	"meaningfield/internal/config"
)

// Mode selects the scheduler.
type Mode string

const (
	ModeWindow   Mode = "window"
	ModeHeadless Mode = "headless"
	// ModeRender steps a fixed clock as fast as possible and writes every
	// frame to Out.
	ModeRender Mode = "render"
)

type Options struct {
	Config config.Config
	Mode   Mode
	// Frames stops the run after N frames; zero runs until ctx is done.
	// Render mode requires a positive count.
	Frames uint64
	// Out is a directory for PNG frames or a path ending in .gif.
	Out string
}

// Run executes one renderer run and blocks until it ends. Window mode
// must be called from the main goroutine.
func Run(ctx context.Context, opts Options) (err error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if opts.Mode == "" {
		opts.Mode = ModeWindow
	}
	if opts.Mode == ModeRender && (opts.Frames == 0 || opts.Out == "") {
		return errors.New("render mode needs a frame count and an output path")
	}
	logger := log.With().Str("component", "app").Logger()

	host := hal.NewHost(cfg.PixelFormat(), cfg.Driver.MaxPixels)

	if opts.Out != "" {
		var sink hal.Sink
		if sink, err = newSink(opts.Out, cfg); err != nil {
			return err
		}
		host.SetSink(sink)
		defer func() {
			if cerr := sink.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing %s: %w", opts.Out, cerr)
			}
		}()
	}

	comp, err := cfg.NewCompositor()
	if err != nil {
		return err
	}
	dcfg := cfg.DriverConfig()
	if opts.Mode == ModeRender && dcfg.FixedStep <= 0 {
		dcfg.FixedStep = time.Second / time.Duration(cfg.Driver.Hz)
	}
	d, err := driver.Mount(host, comp, dcfg)
	if err != nil {
		return err
	}
	defer d.Unmount()
	defer recoverPanic(host, &err)

	script, err := initialInput(cfg.Feed, d)
	if err != nil {
		return err
	}

	logger.Info().
		Str("mode", string(opts.Mode)).
		Str("strategy", cfg.Compositor.Strategy).
		Int("width", cfg.Surface.Width).
		Int("height", cfg.Surface.Height).
		Str("format", cfg.PixelFormat().String()).
		Uint64("frames", opts.Frames).
		Msg("starting")

	var sched hal.Scheduler
	switch opts.Mode {
	case ModeRender:
		sched = hal.Offline{Frames: opts.Frames, Step: dcfg.FixedStep}
		if script != nil {
			// Offline renders read the script on the driver's clock so the
			// output does not depend on wall time.
			sched = scripted{Scheduler: sched, script: script, d: d}
			script = nil
		}
	case ModeHeadless:
		sched = hal.Ticker{Hz: cfg.Driver.Hz, Frames: opts.Frames}
	case ModeWindow:
		sched = newWindow(host, d, cfg, opts.Frames)
	default:
		return fmt.Errorf("unknown mode %q", opts.Mode)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if script != nil {
		g.Go(func() error {
			if err := script.Play(gctx, d); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Debug().Msg("script finished")
			return nil
		})
	}

	runErr := d.Run(ctx, sched)
	cancel()
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}

	st := d.State()
	logger.Info().Uint64("frames", st.Frame).Float64("t", st.T).Msg("stopped")
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// initialInput sets the starting vector and returns the script to replay,
// if any.
func initialInput(f config.Feed, d *driver.Driver) (*feed.Script, error) {
	if f.Vector != "" {
		v, err := meaning.LoadVector(f.Vector)
		if err != nil {
			return nil, err
		}
		d.SetMeaningVector(v)
	}
	if f.Script != "" {
		s, err := feed.Load(f.Script)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	if f.Vector == "" && f.Calm {
		calm := meaning.Calm()
		d.SetMeaningVector(&calm)
	}
	return nil, nil
}

func newSink(out string, cfg config.Config) (hal.Sink, error) {
	if strings.EqualFold(filepath.Ext(out), ".gif") {
		delay := max(100/cfg.Driver.Hz, 2)
		return hal.NewGIFSink(out, cfg.Surface.Scale, delay), nil
	}
	return hal.NewPNGSink(out, cfg.Surface.Scale)
}

// scripted applies a feed script from the driver's clock before each frame.
type scripted struct {
	hal.Scheduler
	script *feed.Script
	d      *driver.Driver
}

func (s scripted) Run(ctx context.Context, step hal.StepFunc) error {
	return s.Scheduler.Run(ctx, func(dt time.Duration) error {
		elapsed := time.Duration(s.d.State().T * float64(time.Second))
		s.script.Apply(elapsed, s.d)
		return step(dt)
	})
}

func newWindow(host *hal.MemHost, d *driver.Driver, cfg config.Config, frames uint64) *hal.Window {
	logger := log.With().Str("component", "window").Logger()
	return &hal.Window{
		Host:   host,
		Title:  "meaningfield",
		Width:  cfg.Surface.Width,
		Height: cfg.Surface.Height,
		Scale:  cfg.Surface.Scale,
		Hz:     cfg.Driver.Hz,
		Frames: frames,
		OnResize: func(w, h int) {
			if err := d.Resize(w, h); err != nil {
				logger.Warn().Err(err).Int("width", w).Int("height", h).Msg("resize rejected")
			}
		},
		OnKey: func(ev hal.KeyEvent) { handleKey(d, ev) },
	}
}

// handleKey maps window keys to collaborator calls: space toggles the
// analyzing state, c shows the calm vector and x clears it.
func handleKey(d *driver.Driver, ev hal.KeyEvent) {
	switch {
	case ev.Code == hal.KeySpace:
		d.SetAnalyzing(!d.Analyzing())
	case ev.Rune == 'c':
		calm := meaning.Calm()
		d.SetMeaningVector(&calm)
	case ev.Rune == 'x':
		d.SetMeaningVector(nil)
	}
}
