package compositor

import (
	"errors"

	"meaningfield/field/canvas"
	"meaningfield/field/meaning"
	"meaningfield/field/primitives"
)

// LayeredConfig tunes the layered compositor.
type LayeredConfig struct {
	// MinIntensity skips generators at or below this weight.
	MinIntensity float64
	// Blend overrides a generator's default blend mode.
	Blend map[meaning.Dimension]canvas.BlendMode
	Params primitives.Params
}

func DefaultLayeredConfig() LayeredConfig {
	return LayeredConfig{MinIntensity: 0.01, Params: primitives.DefaultParams()}
}

// Layered runs each primitive generator over a black background, halo
// first and the rest in declaration order.
type Layered struct {
	cfg   LayeredConfig
	order [meaning.NumDimensions]meaning.Dimension
	blend [meaning.NumDimensions]canvas.BlendMode

	// Lookup resolves generators; nil uses primitives.For.
	Lookup func(meaning.Dimension) primitives.Func
}

func NewLayered(cfg LayeredConfig) *Layered {
	if !(cfg.MinIntensity >= 0) {
		cfg.MinIntensity = 0.01
	}
	l := &Layered{cfg: cfg}
	l.order[0] = meaning.ConsciousnessLevel
	i := 1
	for _, d := range meaning.Dimensions() {
		if d != meaning.ConsciousnessLevel {
			l.order[i] = d
			i++
		}
	}
	for _, d := range meaning.Dimensions() {
		l.blend[d] = primitives.DefaultBlend(d)
		if m, ok := cfg.Blend[d]; ok {
			l.blend[d] = m
		}
	}
	return l
}

// Order is the draw order of the generators.
func (l *Layered) Order() [meaning.NumDimensions]meaning.Dimension { return l.order }

// Render draws every generator above MinIntensity. A generator that panics
// is skipped; the others still draw and the panics are returned joined.
func (l *Layered) Render(dst *canvas.Canvas, f Frame) error {
	if dst.Empty() {
		return nil
	}
	if f.Idle() {
		RenderIdle(dst, f.T)
		return nil
	}
	dst.Clear(canvas.RGB(0, 0, 0))

	var errs []error
	for _, d := range l.order {
		in := f.Salience.Intensity(d)
		if in <= l.cfg.MinIntensity {
			continue
		}
		var fn primitives.Func
		if l.Lookup != nil {
			fn = l.Lookup(d)
		}
		ctx := primitives.NewContext(dst, f.T, in)
		ctx.Seed = f.Seed
		ctx.Params = l.cfg.Params
		ctx.Blend = l.blend[d]
		if err := primitives.Draw(ctx, d, fn); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
