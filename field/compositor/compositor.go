// Package compositor turns weighted meaning intensities into a finished
// frame. Two strategies are provided: Unified evaluates one continuous
// per-pixel field, Layered runs every primitive generator with its blend
// mode. Both fall back to the idle pulse when there is nothing to show.
package compositor

import (
	"math"

	"meaningfield/field/canvas"
	"meaningfield/field/meaning"
)

// Frame is the per-frame snapshot a compositor renders from.
type Frame struct {
	// T is seconds since mount.
	T float64
	// Salience is nil when no vector is present.
	Salience *meaning.Salience
	// Analyzing forces the idle pulse.
	Analyzing bool
	// Seed feeds the generators' hash randomness.
	Seed uint64
}

// Idle reports whether f should render the breathing pulse.
func (f Frame) Idle() bool { return f.Salience == nil || f.Analyzing }

// Compositor renders one frame into dst, overwriting every pixel.
type Compositor interface {
	Render(dst *canvas.Canvas, f Frame) error
}

var (
	idleCenter = canvas.RGB8(120, 100, 255, 1)
	idleEdge   = canvas.RGB8(30, 30, 60, 1)
)

// IdlePulse is the luminance factor of the breathing state at t, in
// [0.7, 1] with a period of 4π/3 seconds.
func IdlePulse(t float64) float64 {
	return 0.85 + 0.15*math.Sin(1.5*t)
}

// RenderIdle draws the breathing radial pulse over black.
func RenderIdle(dst *canvas.Canvas, t float64) {
	if dst.Empty() {
		return
	}
	w, h := dst.Size()
	p := float32(IdlePulse(t))
	g := canvas.RadialGradient{
		CX: float64(w) / 2,
		CY: float64(h) / 2,
		R0: 0,
		R1: 0.7 * math.Max(float64(w), float64(h)),
		Stops: canvas.Stops{
			{Offset: 0, Color: idleCenter.WithAlpha(0.5 * p)},
			{Offset: 1, Color: idleEdge.WithAlpha(0.8 * p)},
		},
	}
	dst.Clear(canvas.RGB(0, 0, 0))
	dst.Fill(g, canvas.BlendNormal)
}

func smoothstep(e0, e1, x float64) float64 {
	if e1 <= e0 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := (x - e0) / (e1 - e0)
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

func clampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
