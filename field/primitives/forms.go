package primitives

import (
	"math"

	"meaningfield/field/canvas"
)

const (
	spiralStrands = 5
	spiralA       = 5.0
	spiralB       = 0.2
	spiralSteps   = 200 // θ from 0 to 20 in steps of 0.1
	subSpiralSkip = 20  // one sub-spiral every 2 rad
)

// SpiralTimeline strokes five rotating logarithmic spirals. Above half
// intensity each strand sprouts small sub-spirals.
func SpiralTimeline(ctx Context) {
	in, ok := usable(ctx)
	if !ok {
		return
	}
	p := ctx.Params.withDefaults()
	pts := make([]canvas.Point, 0, spiralSteps)
	for strand := 0; strand < spiralStrands; strand++ {
		phase := float64(strand)*0.4 + ctx.Time*0.3
		hue := 50 + float64(strand)*20
		pts = pts[:0]
		for i := 0; i < spiralSteps; i++ {
			th := float64(i) * 0.1
			r := spiralA * math.Exp(spiralB*th)
			angle := th + phase
			wobble := math.Sin(th*2+ctx.Time) * 5 * (1 - th/20)
			x := ctx.CenterX + (r+wobble)*math.Cos(angle)
			y := ctx.CenterY + (r+wobble)*math.Sin(angle)
			pts = append(pts, canvas.Pt(x, y))

			if i%subSpiralSkip == 0 && in > 0.5 {
				subSpiral(ctx, x, y, angle, 10, hue, in, p.SubSpiralDepth)
			}
		}
		width := (3 - float64(strand)*0.4) * in
		ctx.Canvas.StrokePolyline(pts, width, canvas.Solid(hsla(hue, 0.9, 0.75, 0.2*in)), ctx.Blend)
	}
}

func subSpiral(ctx Context, x, y, angle, size, hue, in float64, depth int) {
	if depth <= 0 || size < 1 {
		return
	}
	var pts [10]canvas.Point
	for i := range pts {
		st := float64(i) * 0.2
		sr := size * math.Exp(0.3*st)
		pts[i] = canvas.Pt(x+sr*math.Cos(angle+st*3), y+sr*math.Sin(angle+st*3))
	}
	ctx.Canvas.StrokePolyline(pts[:], 0.5, canvas.Solid(hsla(hue, 0.9, 0.85, 0.1*in)), ctx.Blend)
	end := pts[len(pts)-1]
	subSpiral(ctx, end.X, end.Y, angle+6, size/2, hue, in, depth-1)
}

// TetherFilaments draws bezier tethers from the centre to points on a
// breathing circle, each with a chain of seeded side branches.
func TetherFilaments(ctx Context) {
	in, ok := usable(ctx)
	if !ok || in < 0.3 {
		return
	}
	p := ctx.Params.withDefaults()
	epoch := uint64(0)
	if p.BranchReseedHz > 0 {
		epoch = uint64(math.Floor(math.Max(ctx.Time, 0) * p.BranchReseedHz))
	}
	n := int(math.Round(4 + in*4))
	minSide := math.Min(float64(ctx.Width), float64(ctx.Height))
	for i := 0; i < n; i++ {
		fi := float64(i)
		angle := fi/float64(n)*2*math.Pi + ctx.Time*0.2
		tr := minSide * (0.3 + math.Sin(ctx.Time+fi)*0.1)
		tx := ctx.CenterX + math.Cos(angle)*tr
		ty := ctx.CenterY + math.Sin(angle)*tr
		b := tether{
			ctx:   ctx,
			paint: canvas.Solid(hsla(160+fi*20, 0.85, 0.7, 0.3*in)),
			in:    in,
			angle: angle,
			index: uint64(i),
			epoch: epoch,
			p:     p,
		}
		b.branch(ctx.CenterX, ctx.CenterY, tx, ty, 0)
	}
}

type tether struct {
	ctx   Context
	paint canvas.Paint
	in    float64
	angle float64
	index uint64
	epoch uint64
	p     Params
}

func (b *tether) branch(x1, y1, x2, y2 float64, depth int) {
	if depth > b.p.TetherMaxDepth {
		return
	}
	t := b.ctx.Time
	d := float64(depth)
	mx, my := (x1+x2)/2, (y1+y2)/2
	c1x := mx + math.Sin(t*2+d)*30
	c1y := my + math.Cos(t*2+d)*30
	c2x := mx - math.Sin(t*1.5-d)*20
	c2y := my - math.Cos(t*1.5-d)*20
	curve := canvas.Cubic(canvas.Pt(x1, y1), canvas.Pt(c1x, c1y), canvas.Pt(c2x, c2y), canvas.Pt(x2, y2))
	width := (2 - d*0.5) * b.in
	b.ctx.Canvas.StrokePolyline(curve, width, b.paint, b.ctx.Blend)

	key := b.epoch<<8 | uint64(depth)
	if Hash01(b.ctx.Seed, b.index, key, 0) < b.p.BranchProbability*b.in {
		ba := b.angle + (Hash01(b.ctx.Seed, b.index, key, 1)-0.5)*0.8
		b.branch(mx, my, mx+math.Cos(ba)*40, my+math.Sin(ba)*40, depth+1)
	}
}

// LuminosityHalo fills four perturbed rings around the centre whose
// radius grows with intensity.
func LuminosityHalo(ctx Context) {
	in, ok := usable(ctx)
	if !ok {
		return
	}
	const steps = 63 // angle from 0 to 2π in steps of 0.1
	pts := make([]canvas.Point, steps)
	for ring := 0; ring < 4; ring++ {
		fr := float64(ring)
		phase := ctx.Time + fr*0.5
		base := (60 + fr*40) * in
		for i := range pts {
			a := float64(i) * 0.1
			r := base + math.Sin(a*5+phase)*10 + math.Cos(a*3-phase*0.7)*15
			pts[i] = canvas.Pt(ctx.CenterX+math.Cos(a)*r, ctx.CenterY+math.Sin(a)*r)
		}
		fade := 1 - fr*0.2
		g := canvas.RadialGradient{
			CX: ctx.CenterX, CY: ctx.CenterY, R0: base * 0.8, R1: base * 1.2,
			Stops: canvas.Stops{
				{Offset: 0, Color: hsla(200, 0.9, 0.85, 0.3*in*fade)},
				{Offset: 0.5, Color: hsla(180, 0.85, 0.8, 0.2*in*fade)},
				{Offset: 1, Color: canvas.Transparent},
			},
		}
		ctx.Canvas.FillPolygon(pts, g, ctx.Blend)
	}
}

var petalCounts = [4]int{3, 5, 6, 8}

// SymmetryBloom fills a ring of petals rotating slowly about the centre.
// Above 0.6 intensity it nests half-scale blooms offset by half a petal.
func SymmetryBloom(ctx Context) {
	in, ok := usable(ctx)
	if !ok {
		return
	}
	p := ctx.Params.withDefaults()
	idx := int(math.Floor(in * 3.99))
	if idx < 0 {
		idx = 0
	} else if idx >= len(petalCounts) {
		idx = len(petalCounts) - 1
	}
	bl := bloom{
		ctx:    ctx,
		in:     in,
		petals: petalCounts[idx],
		base:   canvas.Translate(ctx.CenterX, ctx.CenterY).Then(canvas.Rotate(ctx.Time * 0.1)),
		maxDep: p.BloomMaxDepth,
	}
	bl.contour()
	bl.draw(0, 1, 0)
}

type bloom struct {
	ctx    Context
	in     float64
	petals int
	base   canvas.Affine
	maxDep int
	shape  [42]canvas.Point
}

// contour builds one petal in local space: 21 points out along +x, then 21
// back along -x.
func (b *bloom) contour() {
	const n = 21
	for k := 0; k < n; k++ {
		t := float64(k) / (n - 1)
		width := math.Sin(t*math.Pi) * 30
		wobble := math.Sin(t*math.Pi*4+b.ctx.Time*2) * 5 * (1 - t)
		b.shape[k] = canvas.Pt(width+wobble, t*80)
		b.shape[2*n-1-k] = canvas.Pt(-width-wobble, t*80)
	}
}

func (b *bloom) draw(depth int, scale, rotation float64) {
	if depth > b.maxDep || scale < 0.1 {
		return
	}
	d := float64(depth)
	fade := 1 - d*0.2
	stops := canvas.Stops{
		{Offset: 0, Color: hsla(270+d*30, 0.85, 0.7, 0.3*b.in*fade)},
		{Offset: 1, Color: hsla(290+d*30, 0.85, 0.75, 0.1*b.in*fade)},
	}
	level := b.base.Then(canvas.Rotate(rotation)).Then(canvas.Scale(scale, scale))
	pts := make([]canvas.Point, len(b.shape))
	for i := 0; i < b.petals; i++ {
		m := level.Then(canvas.Rotate(float64(i) / float64(b.petals) * 2 * math.Pi))
		for k, q := range b.shape {
			pts[k] = m.Apply(q)
		}
		c := m.Apply(canvas.Pt(0, 40))
		g := canvas.RadialGradient{CX: c.X, CY: c.Y, R0: 0, R1: 80 * m.ScaleFactor(), Stops: stops}
		b.ctx.Canvas.FillPolygon(pts, g, b.ctx.Blend)
	}
	if b.in > 0.6 {
		b.draw(depth+1, scale*0.5, rotation+math.Pi/float64(b.petals))
	}
}

// MorphingShape fills a closed contour that morphs between a triangle, a
// circle and a star.
func MorphingShape(ctx Context) {
	in, ok := usable(ctx)
	if !ok {
		return
	}
	phase := ctx.Time * 0.4 * (0.5 + in*0.5)
	blend := (math.Sin(phase) + 1) / 2

	const steps = 126 // angle from 0 to 2π in steps of 0.05
	pts := make([]canvas.Point, steps)
	for i := range pts {
		a := float64(i) * 0.05
		r := MorphRadius(a, blend)
		noise := math.Sin(a*8+ctx.Time*3)*5 + math.Cos(a*13-ctx.Time*2)*3
		r = (r + noise) * in
		pts[i] = canvas.Pt(ctx.CenterX+math.Cos(a)*r, ctx.CenterY+math.Sin(a)*r)
	}

	hue := phase * 180
	g := canvas.RadialGradient{
		CX: ctx.CenterX, CY: ctx.CenterY, R0: 0, R1: 100,
		Stops: canvas.Stops{
			{Offset: 0, Color: hsla(hue, 0.85, 0.65, 0.6*in)},
			{Offset: 0.5, Color: hsla(hue+60, 0.8, 0.6, 0.4*in)},
			{Offset: 1, Color: hsla(hue+120, 0.85, 0.55, 0.2*in)},
		},
	}
	ctx.Canvas.FillPolygon(pts, g, ctx.Blend)
}

// MorphRadius is the un-noised contour radius at angle a for a morph blend in
// 0..1: triangle, circle, star and back to triangle.
func MorphRadius(a, blend float64) float64 {
	tri := 60 + 30*math.Cos(3*a)
	const circle = 80.0
	star := 70 + 40*math.Cos(5*a)
	switch {
	case blend < 0.33:
		t := blend * 3
		return tri*(1-t) + circle*t
	case blend < 0.66:
		t := (blend - 0.33) * 3
		return circle*(1-t) + star*t
	default:
		t := (blend - 0.66) * 3
		return star*(1-t) + tri*t
	}
}
