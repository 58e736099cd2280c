// Package primitives holds the eight generative drawing routines, one per
// meaning dimension. Each routine paints onto a shared canvas at a given
// intensity and time; none of them keep state between calls.
package primitives

import (
	"errors"
	"fmt"
	"math"
	"runtime/debug"

	"meaningfield/field/canvas"
	"meaningfield/field/meaning"
)

// ErrUnknownDimension is returned by Draw for a dimension with no generator.
var ErrUnknownDimension = errors.New("primitives: unknown dimension")

// Context is everything a generator may read.
type Context struct {
	Canvas *canvas.Canvas

	Width, Height    int
	CenterX, CenterY float64

	// Time is seconds since mount.
	Time float64
	// Intensity is the salience-weighted strength; generators clamp it.
	Intensity float64
	// Seed feeds Hash01 for branch decisions.
	Seed uint64

	Params Params
	Blend  canvas.BlendMode
}

// NewContext fills in the size and centre from c.
func NewContext(c *canvas.Canvas, t, intensity float64) Context {
	w, h := c.Size()
	return Context{
		Canvas:    c,
		Width:     w,
		Height:    h,
		CenterX:   float64(w) / 2,
		CenterY:   float64(h) / 2,
		Time:      t,
		Intensity: intensity,
		Params:    DefaultParams(),
	}
}

// Func draws one primitive.
type Func func(ctx Context)

var generators = [meaning.NumDimensions]Func{
	meaning.TemporalFlow:            SpiralTimeline,
	meaning.IneffableQuality:        IridescentShimmer,
	meaning.EmotionalSubstrate:      ThermalGradient,
	meaning.RelationalDynamics:      TetherFilaments,
	meaning.ConsciousnessLevel:      LuminosityHalo,
	meaning.ParadoxTension:          InterferenceWaves,
	meaning.ArchetypalResonance:     SymmetryBloom,
	meaning.TransformativePotential: MorphingShape,
}

var blends = [meaning.NumDimensions]canvas.BlendMode{
	meaning.TemporalFlow:       canvas.BlendLighter,
	meaning.ConsciousnessLevel: canvas.BlendScreen,
	meaning.ParadoxTension:     canvas.BlendMultiply,
}

// For returns the generator bound to d, or nil.
func For(d meaning.Dimension) Func {
	if !d.Valid() {
		return nil
	}
	return generators[d]
}

// DefaultBlend is the blend mode d's generator composites with.
func DefaultBlend(d meaning.Dimension) canvas.BlendMode {
	if !d.Valid() {
		return canvas.BlendNormal
	}
	return blends[d]
}

// PanicError reports a generator that panicked.
type PanicError struct {
	Dimension meaning.Dimension
	Value     any
	Stack     []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("primitive %s panicked: %v", e.Dimension, e.Value)
}

// Draw runs fn for d, converting a panic into a *PanicError.
func Draw(ctx Context, d meaning.Dimension, fn Func) (err error) {
	if fn == nil {
		fn = For(d)
	}
	if fn == nil {
		return fmt.Errorf("%w: %d", ErrUnknownDimension, uint8(d))
	}
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Dimension: d, Value: r, Stack: debug.Stack()}
		}
	}()
	fn(ctx)
	return nil
}

// Clamp maps NaN and negatives to 0 and caps at 1.
func Clamp(intensity float64) float64 {
	return meaning.Clamp01(intensity)
}

// Hash01 returns a uniform value in [0,1) derived from seed and the
// coordinates a, b and c.
func Hash01(seed, a, b, c uint64) float64 {
	h := splitmix(seed ^ splitmix(a^splitmix(b^splitmix(c))))
	return float64(h>>11) / (1 << 53)
}

func splitmix(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// usable reports whether ctx can be drawn into and returns the clamped
// intensity.
func usable(ctx Context) (float64, bool) {
	if ctx.Canvas.Empty() {
		return 0, false
	}
	in := Clamp(ctx.Intensity)
	if in <= 0 {
		return 0, false
	}
	if !finite(ctx.Time) || !finite(ctx.CenterX) || !finite(ctx.CenterY) {
		return 0, false
	}
	return in, true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func hsla(h, s, l, a float64) canvas.Color { return canvas.HSLA(h, s, l, a) }
