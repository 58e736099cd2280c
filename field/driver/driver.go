// Package driver owns the animation loop: it holds the surface, the clock
// and the latest meaning vector, and renders one compositor frame per
// scheduler step into a hal framebuffer.
package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"meaningfield/field/canvas"
	"meaningfield/field/compositor"
	"meaningfield/field/meaning"
	"meaningfield/field/primitives"
	"meaningfield/hal"
)

var (
	ErrInvalidSize     = errors.New("driver: invalid surface size")
	ErrSurfaceTooLarge = errors.New("driver: surface too large")
	ErrUnmounted       = errors.New("driver: unmounted")
	ErrRunning         = errors.New("driver: already running")
)

// errStopped ends a scheduler run from inside a step.
var errStopped = errors.New("driver: stopped")

// Config tunes a mounted driver.
type Config struct {
	Width, Height int
	// MaxPixels bounds Width*Height for mount and resize; zero is unbounded.
	MaxPixels int
	// FixedStep advances the clock by a constant per frame. Zero uses the
	// scheduler's measured delta instead.
	FixedStep time.Duration
	// MaxStep clamps measured deltas.
	MaxStep time.Duration
	// Seed feeds the primitives' hash randomness.
	Seed uint64
	// Salience options applied whenever a new vector arrives.
	Salience []meaning.SalienceOption
}

func DefaultConfig() Config {
	return Config{
		Width:     400,
		Height:    400,
		MaxPixels: 4096 * 4096,
		FixedStep: time.Second / 60,
		MaxStep:   100 * time.Millisecond,
	}
}

// FrameState is a snapshot of the driver's per-frame state.
type FrameState struct {
	// T is seconds since mount.
	T             float64
	Width, Height int
	// Frame counts presented frames.
	Frame     uint64
	Vector    *meaning.Vector
	Analyzing bool
}

type size struct{ w, h int }

// Driver renders a compositor into a host framebuffer. The setters are
// safe from any goroutine; frames run one at a time.
type Driver struct {
	host hal.Host
	comp compositor.Compositor
	cfg  Config
	log  zerolog.Logger

	vec       atomic.Pointer[meaning.Vector]
	analyzing atomic.Bool
	stopped   atomic.Bool

	resizeMu sync.Mutex
	pending  *size

	// mu serialises frames, resize application and unmount.
	mu        sync.Mutex
	fb        hal.Framebuffer
	cv        *canvas.Canvas
	w, h      int
	t         float64
	frame     uint64
	salFor    *meaning.Vector
	sal       *meaning.Salience
	unmounted bool

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	runErr error
}

func validSize(w, h, maxPixels int) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	if maxPixels > 0 && w*h > maxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrSurfaceTooLarge, w, h, maxPixels)
	}
	return nil
}

// Mount allocates the surface through host. On error nothing stays
// allocated.
func Mount(host hal.Host, comp compositor.Compositor, cfg Config) (*Driver, error) {
	if host == nil || comp == nil {
		return nil, errors.New("driver: mount needs a host and a compositor")
	}
	if cfg.MaxStep <= 0 {
		cfg.MaxStep = DefaultConfig().MaxStep
	}
	if err := validSize(cfg.Width, cfg.Height, cfg.MaxPixels); err != nil {
		return nil, err
	}
	fb, err := allocate(host, cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	d := &Driver{
		host: host,
		comp: comp,
		cfg:  cfg,
		log:  log.With().Str("component", "driver").Logger(),
		fb:   fb,
		cv:   canvas.New(cfg.Width, cfg.Height),
		w:    cfg.Width,
		h:    cfg.Height,
	}
	d.log.Debug().Int("width", d.w).Int("height", d.h).Str("format", fb.Format().String()).Msg("mounted")
	return d, nil
}

func allocate(host hal.Host, w, h int) (hal.Framebuffer, error) {
	fb, err := host.NewFramebuffer(w, h)
	if err != nil {
		if errors.Is(err, hal.ErrTooLarge) {
			return nil, fmt.Errorf("%w: %w", ErrSurfaceTooLarge, err)
		}
		return nil, fmt.Errorf("allocating %dx%d surface: %w", w, h, err)
	}
	if fb == nil {
		return nil, fmt.Errorf("allocating %dx%d surface: host returned no framebuffer", w, h)
	}
	return fb, nil
}

// SetMeaningVector replaces the current vector with a copy of v. A nil v
// clears it and the field returns to idle.
func (d *Driver) SetMeaningVector(v *meaning.Vector) {
	if v == nil {
		d.vec.Store(nil)
		return
	}
	cp := *v
	d.vec.Store(&cp)
}

func (d *Driver) SetAnalyzing(on bool) { d.analyzing.Store(on) }

// Analyzing reports the current analyzing flag.
func (d *Driver) Analyzing() bool { return d.analyzing.Load() }

// Resize requests a new surface size, applied at the start of the next
// frame. Zero-area sizes are accepted; frames are skipped while they last.
func (d *Driver) Resize(w, h int) error {
	if err := validSize(w, h, d.cfg.MaxPixels); err != nil {
		return err
	}
	d.resizeMu.Lock()
	d.pending = &size{w, h}
	d.resizeMu.Unlock()
	return nil
}

// applyResize must be called with mu held. A failed reallocation keeps the
// current surface.
func (d *Driver) applyResize() {
	d.resizeMu.Lock()
	p := d.pending
	d.pending = nil
	d.resizeMu.Unlock()
	if p == nil || (p.w == d.w && p.h == d.h) {
		return
	}
	fb, err := allocate(d.host, p.w, p.h)
	if err != nil {
		d.log.Warn().Err(err).Int("width", p.w).Int("height", p.h).
			Int("keep_width", d.w).Int("keep_height", d.h).Msg("resize failed, keeping surface")
		return
	}
	d.host.Release(d.fb)
	d.fb = fb
	d.cv.Resize(p.w, p.h)
	d.log.Debug().Int("width", p.w).Int("height", p.h).Msg("resized")
	d.w, d.h = p.w, p.h
}

// salience must be called with mu held.
func (d *Driver) salience(v *meaning.Vector) *meaning.Salience {
	if v == nil {
		d.salFor, d.sal = nil, nil
		return nil
	}
	if v != d.salFor {
		s := meaning.ComputeSalience(*v, d.cfg.Salience...)
		d.salFor, d.sal = v, &s
		top := make([]string, 0, s.Keep)
		for _, dim := range s.Top(s.Keep) {
			top = append(top, dim.String())
		}
		d.log.Debug().Stringer("vector", v).Strs("top", top).Msg("salience updated")
	}
	return d.sal
}

// advance must be called with mu held.
func (d *Driver) advance(dt time.Duration) {
	step := d.cfg.FixedStep
	if step <= 0 {
		step = min(max(dt, 0), d.cfg.MaxStep)
	}
	d.t += step.Seconds()
}

// Frame runs one frame: apply a pending resize, render at the current time,
// present, then advance the clock by dt. It does nothing after Stop or
// Unmount. Compositor errors are logged and skip the present, except
// recovered generator panics, whose frame is still shown. Errors returned
// come from the host and stop a scheduler.
func (d *Driver) Frame(dt time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped.Load() || d.unmounted {
		return nil
	}
	d.applyResize()
	t := d.t
	d.advance(dt)

	if d.w == 0 || d.h == 0 {
		d.log.Debug().Int("width", d.w).Int("height", d.h).Msg("zero-area surface, frame skipped")
		return nil
	}

	f := compositor.Frame{
		T:         t,
		Salience:  d.salience(d.vec.Load()),
		Analyzing: d.analyzing.Load(),
		Seed:      d.cfg.Seed,
	}
	if err := d.comp.Render(d.cv, f); err != nil {
		var pe *primitives.PanicError
		if !errors.As(err, &pe) {
			d.log.Warn().Err(err).Uint64("frame", d.frame).Msg("render failed, frame skipped")
			return nil
		}
		d.log.Error().Err(err).Uint64("frame", d.frame).Str("dimension", pe.Dimension.String()).Msg("generator panicked")
	}

	buf, stride := d.fb.Buffer(), d.fb.StrideBytes()
	switch d.fb.Format() {
	case hal.PixelFormatRGB565:
		d.cv.EncodeRGB565(buf, stride)
	default:
		d.cv.EncodeRGBA(buf, stride)
	}
	if err := d.fb.Present(); err != nil {
		return fmt.Errorf("presenting frame %d: %w", d.frame, err)
	}
	d.frame++
	return nil
}

// State returns a snapshot of the frame state.
func (d *Driver) State() FrameState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return FrameState{
		T:         d.t,
		Width:     d.w,
		Height:    d.h,
		Frame:     d.frame,
		Vector:    d.vec.Load(),
		Analyzing: d.analyzing.Load(),
	}
}

// Run drives frames from sched on the calling goroutine until ctx is done,
// Stop is called, or sched finishes.
func (d *Driver) Run(ctx context.Context, sched hal.Scheduler) error {
	if d.isUnmounted() {
		return ErrUnmounted
	}
	d.runMu.Lock()
	ctx, cancel := d.beginLocked(ctx)
	d.runMu.Unlock()
	defer cancel()
	return d.loop(ctx, sched)
}

func (d *Driver) isUnmounted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unmounted
}

// beginLocked registers a cancelable context for a new loop and clears the
// stopped flag. runMu must be held, so a Stop either precedes it entirely
// or sees the new cancel func.
func (d *Driver) beginLocked(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	d.stopped.Store(false)
	return ctx, cancel
}

func (d *Driver) loop(ctx context.Context, sched hal.Scheduler) error {
	err := sched.Run(ctx, func(dt time.Duration) error {
		if d.stopped.Load() {
			return errStopped
		}
		return d.Frame(dt)
	})
	if errors.Is(err, errStopped) || (d.stopped.Load() && errors.Is(err, context.Canceled)) {
		return nil
	}
	return err
}

// Start runs the loop on its own goroutine. Its outcome is available from
// Err once Done is closed.
func (d *Driver) Start(ctx context.Context, sched hal.Scheduler) error {
	if d.isUnmounted() {
		return ErrUnmounted
	}
	d.runMu.Lock()
	if d.done != nil {
		d.runMu.Unlock()
		return ErrRunning
	}
	done := make(chan struct{})
	d.done = done
	d.runErr = nil
	ctx, cancel := d.beginLocked(ctx)
	d.runMu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		err := d.loop(ctx, sched)
		if err != nil && !errors.Is(err, context.Canceled) {
			d.log.Error().Err(err).Msg("render loop stopped")
		}
		d.runMu.Lock()
		d.runErr = err
		d.runMu.Unlock()
	}()
	return nil
}

// Done is closed when the loop started by Start exits. It is nil when no
// loop was started.
func (d *Driver) Done() <-chan struct{} {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	return d.done
}

// Err returns the result of the last Start loop.
func (d *Driver) Err() error {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	return d.runErr
}

// Stop halts the loop. When it returns no frame is executing and none will
// run until the next Start or Run. Safe to call repeatedly.
func (d *Driver) Stop() {
	d.runMu.Lock()
	d.stopped.Store(true)
	cancel, done := d.cancel, d.done
	d.cancel = nil
	d.runMu.Unlock()
	if cancel != nil {
		cancel()
	}

	// Wait out a frame already in progress.
	d.mu.Lock()
	frames := d.frame
	d.mu.Unlock()
	d.log.Debug().Uint64("frames", frames).Msg("stopped")

	if done != nil {
		<-done
		d.runMu.Lock()
		if d.done == done {
			d.done = nil
		}
		d.runMu.Unlock()
	}
}

// Unmount stops the driver and releases its framebuffer. Safe to call
// repeatedly.
func (d *Driver) Unmount() error {
	d.Stop()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unmounted {
		return nil
	}
	d.unmounted = true
	if d.fb != nil {
		d.host.Release(d.fb)
		d.fb = nil
	}
	d.log.Debug().Uint64("frames", d.frame).Msg("unmounted")
	return nil
}
