package compositor

import (
	"fmt"
	"math"
	"runtime"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"meaningfield/field/canvas"
	"meaningfield/field/meaning"
)

// UnifiedConfig tunes the unified field.
type UnifiedConfig struct {
	// Workers bounds the goroutines evaluating row bands. Zero means
	// GOMAXPROCS.
	Workers int
	// BandRows is the height of one work unit. Zero means 16.
	BandRows int
	// Overlays enables the geometry strokes drawn above the field.
	Overlays bool
	// OverlayRamp is the intensity span over which an overlay fades in past
	// its threshold. Zero means 0.1.
	OverlayRamp float64
}

func DefaultUnifiedConfig() UnifiedConfig {
	return UnifiedConfig{Overlays: true, OverlayRamp: 0.1}
}

// Unified renders a continuous per-pixel field in one pass.
type Unified struct {
	cfg  UnifiedConfig
	eval func(x, y, w, h int, t float64, in [meaning.NumDimensions]float64) canvas.Color
}

// FieldPanicError reports a panic while evaluating rows [Y0, Y1) of the
// field, or while drawing overlays when Overlay is set. The frame is
// incomplete.
type FieldPanicError struct {
	Y0, Y1  int
	Overlay bool
	Value   any
	Stack   []byte
}

func (e *FieldPanicError) Error() string {
	if e.Overlay {
		return fmt.Sprintf("unified overlays panicked: %v", e.Value)
	}
	return fmt.Sprintf("unified field rows %d-%d panicked: %v", e.Y0, e.Y1, e.Value)
}

func recoverField(err *error, y0, y1 int, overlay bool) {
	if r := recover(); r != nil {
		*err = &FieldPanicError{Y0: y0, Y1: y1, Overlay: overlay, Value: r, Stack: debug.Stack()}
	}
}

func NewUnified(cfg UnifiedConfig) *Unified {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.BandRows <= 0 {
		cfg.BandRows = 16
	}
	if !(cfg.OverlayRamp > 0) {
		cfg.OverlayRamp = 0.1
	}
	return &Unified{cfg: cfg, eval: Field}
}

func (u *Unified) Render(dst *canvas.Canvas, f Frame) error {
	if dst.Empty() {
		return nil
	}
	if f.Idle() {
		RenderIdle(dst, f.T)
		return nil
	}
	in := f.Salience.Intensities
	w, h := dst.Size()

	var g errgroup.Group
	g.SetLimit(u.cfg.Workers)
	for y0 := 0; y0 < h; y0 += u.cfg.BandRows {
		y0 := y0
		y1 := min(y0+u.cfg.BandRows, h)
		g.Go(func() (err error) {
			defer recoverField(&err, y0, y1, false)
			for y := y0; y < y1; y++ {
				row := dst.Row(y)
				for x := 0; x < w; x++ {
					c := u.eval(x, y, w, h, f.T, in)
					row[x*3] = c.R
					row[x*3+1] = c.G
					row[x*3+2] = c.B
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if u.cfg.Overlays {
		return u.overlays(dst, f.T, in)
	}
	return nil
}

func (u *Unified) overlays(dst *canvas.Canvas, t float64, in [meaning.NumDimensions]float64) (err error) {
	defer recoverField(&err, 0, 0, true)
	drawOverlays(dst, t, in, u.cfg.OverlayRamp)
	return nil
}

// Field is the colour of pixel (x, y) in a w×h frame at time t. Every term
// is a continuous function of position and time; dimension gates use
// smoothstep. Field is pure and safe for concurrent use.
func Field(x, y, w, h int, t float64, in [meaning.NumDimensions]float64) canvas.Color {
	if w <= 0 || h <= 0 {
		return canvas.RGB(0, 0, 0)
	}
	for i, v := range in {
		in[i] = meaning.Clamp01(v)
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		t = 0
	}
	var (
		temporal   = in[meaning.TemporalFlow]
		ineffable  = in[meaning.IneffableQuality]
		emotional  = in[meaning.EmotionalSubstrate]
		relational = in[meaning.RelationalDynamics]
		conscious  = in[meaning.ConsciousnessLevel]
		paradox    = in[meaning.ParadoxTension]
		archetypal = in[meaning.ArchetypalResonance]
		transform  = in[meaning.TransformativePotential]
	)

	fx, fy := float64(x), float64(y)
	nx := fx/float64(w) - 0.5
	ny := fy/float64(h) - 0.5
	dist := math.Hypot(nx, ny)
	angle := math.Atan2(ny, nx)
	// Angular terms use whole harmonics so atan2's wrap leaves no seam, and
	// fade out at the centre where the angle is undefined.
	swirl := smoothstep(0, 0.04, dist)

	emergence := math.Sin(angle*2+t*0.6-dist*6) * transform
	embrace := math.Cos(dist*4+t*0.4) * math.Sin(angle*2+t*0.2) * relational
	sacred := math.Sin(angle*4+t*archetypal*0.3) * math.Cos(dist*8) * archetypal
	flow := math.Sin(angle*2+t*0.5+dist*3) * conscious
	base := (emergence + embrace + sacred + flow) * 0.25 * swirl

	wave := temporal * math.Sin(fx*0.015+t*temporal) * math.Cos(fy*0.012-t*temporal*0.7)
	phase := t*ineffable*0.3 + fx*0.006 + fy*0.005
	shimmer := math.Sin(phase) * math.Cos(phase*1.2) * ineffable
	heat := emotional * math.Sin(fx*0.008+t*emotional*0.8) * math.Cos(fy*0.01-t*emotional*0.6)
	glow := conscious * math.Exp(-dist*1.5) * (1 + math.Sin(t*1.2+dist*3)*0.15)
	interference := smoothstep(0.2, 0.4, paradox) * paradox *
		math.Sin(fx*0.02+t*paradox*1.5) * math.Cos(fy*0.018-t*paradox*1.2)

	hue := 30*transform + 120*relational + 270*archetypal + 200*conscious +
		45*(1-math.Cos(angle))*swirl + t*6
	hue += shimmer*20 + heat*15 + wave*12 + base*18 + interference*8

	light := clampRange(0.3+transform*0.2+glow*0.15+math.Abs(base)*0.1+math.Abs(wave)*0.08+ineffable*0.12, 0.15, 0.75)
	sat := clampRange(0.5+ineffable*0.15+emotional*0.1+math.Abs(base)*0.08+archetypal*0.12, 0.3, 0.85)

	r, g, b := canvas.HSLToRGB(hue, sat, light)
	mod := (base + wave) * 0.01
	return canvas.RGB(float32(r+mod), float32(g+mod), float32(b+mod)).Clamped()
}
