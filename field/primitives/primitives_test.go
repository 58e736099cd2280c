package primitives

import (
	"errors"
	"math"
	"testing"

	"meaningfield/field/canvas"
	"meaningfield/field/meaning"
)

func grey(w, h int) *canvas.Canvas {
	c := canvas.New(w, h)
	c.Clear(canvas.RGB(0.5, 0.5, 0.5))
	return c
}

func changed(c *canvas.Canvas) bool {
	w, h := c.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if c.At(x, y) != canvas.RGB(0.5, 0.5, 0.5) {
				return true
			}
		}
	}
	return false
}

func equalCanvas(a, b *canvas.Canvas) bool {
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

func ctxFor(c *canvas.Canvas, d meaning.Dimension, t, in float64) Context {
	ctx := NewContext(c, t, in)
	ctx.Seed = 42
	ctx.Blend = DefaultBlend(d)
	return ctx
}

func TestEveryDimensionHasGenerator(t *testing.T) {
	for _, d := range meaning.Dimensions() {
		if For(d) == nil {
			t.Fatalf("no generator for %s", d)
		}
	}
	if For(meaning.Dimension(200)) != nil {
		t.Fatal("invalid dimension should have no generator")
	}
}

func TestDefaultBlends(t *testing.T) {
	want := map[meaning.Dimension]canvas.BlendMode{
		meaning.TemporalFlow:       canvas.BlendLighter,
		meaning.ConsciousnessLevel: canvas.BlendScreen,
		meaning.ParadoxTension:     canvas.BlendMultiply,
		meaning.IneffableQuality:   canvas.BlendNormal,
	}
	for d, m := range want {
		if got := DefaultBlend(d); got != m {
			t.Fatalf("%s blend = %s want %s", d, got, m)
		}
	}
}

func TestGeneratorsDrawAtFullIntensity(t *testing.T) {
	for _, d := range meaning.Dimensions() {
		c := grey(64, 48)
		if err := Draw(ctxFor(c, d, 1.25, 1), d, nil); err != nil {
			t.Fatalf("%s: %v", d, err)
		}
		if !changed(c) {
			t.Fatalf("%s drew nothing", d)
		}
	}
}

func TestGeneratorsNoopWithoutIntensity(t *testing.T) {
	for _, in := range []float64{0, -1, math.NaN()} {
		for _, d := range meaning.Dimensions() {
			c := grey(32, 32)
			For(d)(ctxFor(c, d, 3, in))
			if changed(c) {
				t.Fatalf("%s drew at intensity %v", d, in)
			}
		}
	}
}

func TestGeneratorsAreDeterministic(t *testing.T) {
	for _, d := range meaning.Dimensions() {
		a, b := grey(48, 48), grey(48, 48)
		For(d)(ctxFor(a, d, 7.3, 0.8))
		For(d)(ctxFor(b, d, 7.3, 0.8))
		if !equalCanvas(a, b) {
			t.Fatalf("%s is not deterministic", d)
		}
	}
}

func TestGeneratorsStayInRange(t *testing.T) {
	inputs := []float64{0.01, 0.3, 0.61, 1, 5, math.Inf(1)}
	for _, d := range meaning.Dimensions() {
		for _, in := range inputs {
			c := grey(40, 30)
			For(d)(ctxFor(c, d, 12.5, in))
			for y := 0; y < 30; y++ {
				for x := 0; x < 40; x++ {
					col := c.At(x, y)
					for _, v := range []float32{col.R, col.G, col.B} {
						if v != v || v < 0 || v > 1 {
							t.Fatalf("%s at %v: pixel %d,%d = %v", d, in, x, y, col)
						}
					}
				}
			}
		}
	}
}

func TestGeneratorsIgnoreEmptyCanvas(t *testing.T) {
	for _, d := range meaning.Dimensions() {
		c := canvas.New(0, 10)
		if err := Draw(ctxFor(c, d, 1, 1), d, nil); err != nil {
			t.Fatalf("%s: %v", d, err)
		}
	}
}

func TestTetherSkippedBelowThreshold(t *testing.T) {
	c := grey(64, 64)
	TetherFilaments(ctxFor(c, meaning.RelationalDynamics, 1, 0.29))
	if changed(c) {
		t.Fatal("tethers drawn below 0.3")
	}
}

func TestTetherBranchesFollowSeed(t *testing.T) {
	render := func(seed uint64) *canvas.Canvas {
		c := grey(96, 96)
		ctx := ctxFor(c, meaning.RelationalDynamics, 2, 1)
		ctx.Seed = seed
		TetherFilaments(ctx)
		return c
	}
	if !equalCanvas(render(9), render(9)) {
		t.Fatal("same seed differs")
	}
	differs := false
	for seed := uint64(1); seed < 8 && !differs; seed++ {
		differs = !equalCanvas(render(0), render(seed))
	}
	if !differs {
		t.Fatal("seed has no effect on branches")
	}
}

func TestDrawRecoversPanic(t *testing.T) {
	c := grey(8, 8)
	err := Draw(NewContext(c, 0, 1), meaning.ParadoxTension, func(Context) { panic("boom") })
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v", err)
	}
	if pe.Dimension != meaning.ParadoxTension || pe.Value != "boom" || len(pe.Stack) == 0 {
		t.Fatalf("panic error = %+v", pe)
	}

	if err := Draw(NewContext(c, 0, 1), meaning.Dimension(99), nil); !errors.Is(err, ErrUnknownDimension) {
		t.Fatalf("unknown dimension err = %v", err)
	}
}

func TestHash01(t *testing.T) {
	var sum float64
	const n = 4096
	for i := uint64(0); i < n; i++ {
		v := Hash01(7, i, 3, 1)
		if v < 0 || v >= 1 {
			t.Fatalf("Hash01 out of range: %v", v)
		}
		sum += v
	}
	if mean := sum / n; math.Abs(mean-0.5) > 0.05 {
		t.Fatalf("mean = %v", mean)
	}
	if Hash01(1, 2, 3, 4) != Hash01(1, 2, 3, 4) {
		t.Fatal("not deterministic")
	}
	if Hash01(1, 2, 3, 4) == Hash01(2, 2, 3, 4) {
		t.Fatal("seed ignored")
	}
}

func TestMorphRadius(t *testing.T) {
	if got := MorphRadius(0, 0); got != 90 {
		t.Fatalf("triangle at 0 = %v", got)
	}
	if got := MorphRadius(1.1, 0.33); math.Abs(got-80) > 1e-9 {
		t.Fatalf("circle = %v", got)
	}
	if got := MorphRadius(0, 0.66); math.Abs(got-110) > 1e-9 {
		t.Fatalf("star at 0 = %v", got)
	}
}

func TestParamsDefaults(t *testing.T) {
	p := Params{BloomMaxDepth: 1, BranchProbability: 3, TetherMaxDepth: -1, SubSpiralDepth: -2}.withDefaults()
	if p.BloomMaxDepth != 1 || p.BranchProbability != 1 {
		t.Fatalf("explicit values lost: %+v", p)
	}
	if p.TetherMaxDepth != 3 || p.SubSpiralDepth != 1 || p.InterferenceRings != 20 || p.InterferenceMaxRadius != 400 {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if p.BranchReseedHz != 0 {
		t.Fatalf("zero reseed rate replaced: %v", p.BranchReseedHz)
	}
	if p := (Params{BranchProbability: math.NaN()}).withDefaults(); p.BranchProbability != 0.7 {
		t.Fatalf("NaN probability kept: %v", p.BranchProbability)
	}
}

func TestParamsZeroDisablesRecursion(t *testing.T) {
	p := Params{}.withDefaults()
	if p.SubSpiralDepth != 0 || p.TetherMaxDepth != 0 || p.BloomMaxDepth != 0 || p.BranchProbability != 0 {
		t.Fatalf("zero replaced: %+v", p)
	}

	tethers := func(prob float64) *canvas.Canvas {
		c := grey(96, 96)
		ctx := ctxFor(c, meaning.RelationalDynamics, 2, 1)
		ctx.Params.BranchProbability = prob
		TetherFilaments(ctx)
		return c
	}
	if !equalCanvas(tethers(0), tethers(1e-9)) {
		t.Fatal("branch_probability 0 still grows branches")
	}
	if equalCanvas(tethers(0), tethers(1)) {
		t.Fatal("branch_probability has no effect")
	}
}
