package compositor

import (
	"errors"
	"math"
	"testing"

	"meaningfield/field/canvas"
	"meaningfield/field/meaning"
	"meaningfield/field/primitives"
)

func mixedSalience() *meaning.Salience {
	s := meaning.ComputeSalience(meaning.Vector{
		meaning.TemporalFlow:            0.9,
		meaning.IneffableQuality:        0.2,
		meaning.EmotionalSubstrate:      0.1,
		meaning.RelationalDynamics:      0.05,
		meaning.ConsciousnessLevel:      0.8,
		meaning.ParadoxTension:          0,
		meaning.ArchetypalResonance:     0.85,
		meaning.TransformativePotential: 0.1,
	})
	return &s
}

func uniform(v float64) *meaning.Salience {
	var vec meaning.Vector
	for i := range vec {
		vec[i] = v
	}
	s := meaning.ComputeSalience(vec, meaning.WithFadeFactor(1))
	for i := range s.Intensities {
		s.Intensities[i] = v
	}
	return &s
}

func sameCanvas(a, b *canvas.Canvas) bool {
	w, h := a.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if a.At(x, y) != b.At(x, y) {
				return false
			}
		}
	}
	return true
}

type counter struct {
	calls map[meaning.Dimension]int
	order []meaning.Dimension
}

func (c *counter) lookup(d meaning.Dimension) primitives.Func {
	return func(primitives.Context) {
		if c.calls == nil {
			c.calls = map[meaning.Dimension]int{}
		}
		c.calls[d]++
		c.order = append(c.order, d)
	}
}

func TestIdlePulse(t *testing.T) {
	for i := 0; i < 100; i++ {
		p := IdlePulse(float64(i) * 0.1)
		if p < 0.7-1e-12 || p > 1+1e-12 {
			t.Fatalf("pulse %v out of range", p)
		}
	}
	period := 4 * math.Pi / 3
	if math.Abs(IdlePulse(1.3)-IdlePulse(1.3+period)) > 1e-9 {
		t.Fatal("pulse is not periodic")
	}
}

func TestRenderIdle(t *testing.T) {
	c := canvas.New(40, 30)
	RenderIdle(c, 0)
	center, corner := c.At(20, 15), c.At(0, 0)
	if center.B <= corner.B || center.R <= corner.R {
		t.Fatalf("centre %v should be brighter than corner %v", center, corner)
	}

	d := canvas.New(40, 30)
	RenderIdle(d, math.Pi/3)
	if sameCanvas(c, d) {
		t.Fatal("idle state does not breathe")
	}
}

func TestLayeredAbsentVectorNeverCallsPrimitives(t *testing.T) {
	var cnt counter
	l := NewLayered(DefaultLayeredConfig())
	l.Lookup = cnt.lookup

	c := canvas.New(32, 32)
	if err := l.Render(c, Frame{T: 1}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := l.Render(c, Frame{T: 1, Salience: mixedSalience(), Analyzing: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(cnt.order) != 0 {
		t.Fatalf("primitives called in idle state: %v", cnt.order)
	}

	want := canvas.New(32, 32)
	RenderIdle(want, 1)
	if !sameCanvas(c, want) {
		t.Fatal("idle frame differs from RenderIdle")
	}
}

func TestLayeredDrawsHaloFirst(t *testing.T) {
	var cnt counter
	l := NewLayered(DefaultLayeredConfig())
	l.Lookup = cnt.lookup
	if err := l.Render(canvas.New(16, 16), Frame{Salience: uniform(0.5)}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(cnt.order) != meaning.NumDimensions {
		t.Fatalf("calls = %v", cnt.order)
	}
	if cnt.order[0] != meaning.ConsciousnessLevel {
		t.Fatalf("first = %s", cnt.order[0])
	}
	if cnt.order[1] != meaning.TemporalFlow || cnt.order[7] != meaning.TransformativePotential {
		t.Fatalf("order = %v", cnt.order)
	}
}

func TestLayeredSkipsFaintDimensions(t *testing.T) {
	var cnt counter
	l := NewLayered(DefaultLayeredConfig())
	l.Lookup = cnt.lookup
	s := mixedSalience()
	s.Intensities[meaning.ParadoxTension] = 0.01
	if err := l.Render(canvas.New(16, 16), Frame{Salience: s}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if cnt.calls[meaning.ParadoxTension] != 0 {
		t.Fatal("intensity 0.01 should be skipped")
	}
	if cnt.calls[meaning.TemporalFlow] != 1 {
		t.Fatal("salient dimension not drawn")
	}
}

func TestLayeredIsDeterministic(t *testing.T) {
	l := NewLayered(DefaultLayeredConfig())
	f := Frame{T: 3.7, Salience: uniform(0.9), Seed: 11}
	a, b := canvas.New(64, 48), canvas.New(64, 48)
	if err := l.Render(a, f); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := l.Render(b, f); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !sameCanvas(a, b) {
		t.Fatal("layered frames differ")
	}
}

func TestLayeredContinuesAfterPanic(t *testing.T) {
	var cnt counter
	l := NewLayered(DefaultLayeredConfig())
	l.Lookup = func(d meaning.Dimension) primitives.Func {
		if d == meaning.ParadoxTension {
			return func(primitives.Context) { panic("bad generator") }
		}
		return cnt.lookup(d)
	}
	err := l.Render(canvas.New(16, 16), Frame{Salience: uniform(0.5)})
	var pe *primitives.PanicError
	if !errors.As(err, &pe) || pe.Dimension != meaning.ParadoxTension {
		t.Fatalf("err = %v", err)
	}
	if len(cnt.order) != meaning.NumDimensions-1 {
		t.Fatalf("other generators not drawn: %v", cnt.order)
	}
}

func TestLayeredBlendOverride(t *testing.T) {
	cfg := DefaultLayeredConfig()
	cfg.Blend = map[meaning.Dimension]canvas.BlendMode{meaning.TemporalFlow: canvas.BlendScreen}
	l := NewLayered(cfg)
	var got canvas.BlendMode
	l.Lookup = func(d meaning.Dimension) primitives.Func {
		return func(ctx primitives.Context) {
			if d == meaning.TemporalFlow {
				got = ctx.Blend
			}
		}
	}
	if err := l.Render(canvas.New(8, 8), Frame{Salience: uniform(0.5)}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != canvas.BlendScreen {
		t.Fatalf("blend = %s", got)
	}
}

func TestFieldIsDeterministicAndInRange(t *testing.T) {
	inputs := [][meaning.NumDimensions]float64{
		{},
		{1, 1, 1, 1, 1, 1, 1, 1},
		{0.9, 0.03, 0.015, 0.0075, 0.889, 0, 0.944, 0.015},
		{math.NaN(), -3, 7, math.Inf(1), 0.5, 0.31, 0.2, 0.8},
	}
	for _, in := range inputs {
		for _, tm := range []float64{0, 1.5, 1e4, math.NaN()} {
			for y := 0; y < 20; y += 3 {
				for x := 0; x < 30; x += 3 {
					a := Field(x, y, 30, 20, tm, in)
					b := Field(x, y, 30, 20, tm, in)
					if a != b {
						t.Fatalf("Field(%d,%d) not deterministic", x, y)
					}
					for _, v := range []float32{a.R, a.G, a.B} {
						if v != v || v < 0 || v > 1 {
							t.Fatalf("Field(%d,%d,%v,%v) = %v", x, y, tm, in, a)
						}
					}
				}
			}
		}
	}
	if c := Field(0, 0, 0, 10, 1, inputs[1]); c != canvas.RGB(0, 0, 0) {
		t.Fatalf("zero width field = %v", c)
	}
}

func TestFieldHasNoSeamAtAngleWrap(t *testing.T) {
	in := [meaning.NumDimensions]float64{0.7, 0.4, 0.5, 0.9, 0.8, 0.6, 0.9, 0.9}
	const w, h = 200, 200
	for _, tm := range []float64{0, 2.5, 9} {
		for x := 5; x < 60; x += 7 {
			above := Field(x, h/2-1, w, h, tm, in)
			below := Field(x, h/2, w, h, tm, in)
			for _, d := range []float32{above.R - below.R, above.G - below.G, above.B - below.B} {
				if d < -0.05 || d > 0.05 {
					t.Fatalf("seam at x=%d t=%v: %v vs %v", x, tm, above, below)
				}
			}
		}
	}
}

func TestUnifiedMatchesField(t *testing.T) {
	cfg := DefaultUnifiedConfig()
	cfg.Workers = 3
	cfg.BandRows = 5
	u := NewUnified(cfg)
	s := uniform(0.4) // below every overlay threshold
	c := canvas.New(37, 23)
	if err := u.Render(c, Frame{T: 2.25, Salience: s}); err != nil {
		t.Fatalf("render: %v", err)
	}
	for y := 0; y < 23; y++ {
		for x := 0; x < 37; x++ {
			want := Field(x, y, 37, 23, 2.25, s.Intensities)
			if got := c.At(x, y); got != want {
				t.Fatalf("pixel %d,%d = %v want %v", x, y, got, want)
			}
		}
	}
}

func TestUnifiedRecoversBandPanic(t *testing.T) {
	cfg := DefaultUnifiedConfig()
	cfg.Workers, cfg.BandRows = 2, 4
	u := NewUnified(cfg)
	u.eval = func(x, y, w, h int, t float64, in [meaning.NumDimensions]float64) canvas.Color {
		if y == 9 {
			panic("bad row")
		}
		return Field(x, y, w, h, t, in)
	}
	err := u.Render(canvas.New(8, 16), Frame{T: 1, Salience: mixedSalience()})
	var fe *FieldPanicError
	if !errors.As(err, &fe) {
		t.Fatalf("err=%v", err)
	}
	if fe.Y0 != 8 || fe.Y1 != 12 || fe.Overlay || fe.Value != "bad row" || len(fe.Stack) == 0 {
		t.Fatalf("panic error=%+v", fe)
	}
}

func TestUnifiedOverlaysFadeIn(t *testing.T) {
	u := NewUnified(DefaultUnifiedConfig())
	plain := NewUnified(UnifiedConfig{})

	f := Frame{T: 1, Salience: uniform(1)}
	a, b := canvas.New(120, 90), canvas.New(120, 90)
	if err := u.Render(a, f); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := plain.Render(b, f); err != nil {
		t.Fatalf("render: %v", err)
	}
	if sameCanvas(a, b) {
		t.Fatal("overlays not drawn at full intensity")
	}
}

func TestUnifiedIdle(t *testing.T) {
	u := NewUnified(DefaultUnifiedConfig())
	c := canvas.New(20, 20)
	if err := u.Render(c, Frame{T: 0.5, Salience: mixedSalience(), Analyzing: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := canvas.New(20, 20)
	RenderIdle(want, 0.5)
	if !sameCanvas(c, want) {
		t.Fatal("analyzing frame is not idle")
	}
	if err := u.Render(canvas.New(0, 0), Frame{Salience: mixedSalience()}); err != nil {
		t.Fatalf("empty canvas: %v", err)
	}
}

func TestCaptions(t *testing.T) {
	l := NewLabels(1)
	if got := l.Captions(Frame{}); got != nil {
		t.Fatalf("absent vector captions = %v", got)
	}
	if got := l.Captions(Frame{Analyzing: true}); len(got) != 1 || got[0] != analyzingCaption {
		t.Fatalf("analyzing captions = %v", got)
	}
	got := l.Captions(Frame{Salience: mixedSalience()})
	want := []string{"temporal flow 90%", "archetypal resonance 85%", "consciousness level 80%"}
	if len(got) != len(want) {
		t.Fatalf("captions = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("caption %d = %q want %q", i, got[i], want[i])
		}
	}
}

func TestLabelsDraw(t *testing.T) {
	base := canvas.New(120, 60)
	base.Clear(canvas.RGB(0, 0, 0))
	c := canvas.New(120, 60)
	c.Clear(canvas.RGB(0, 0, 0))

	Labelled{Compositor: nopCompositor{}, Labels: NewLabels(2)}.Render(c, Frame{Salience: mixedSalience()})
	if sameCanvas(base, c) {
		t.Fatal("no caption pixels drawn")
	}
}

type nopCompositor struct{}

func (nopCompositor) Render(*canvas.Canvas, Frame) error { return nil }
