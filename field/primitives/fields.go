package primitives

import (
	"math"

	"meaningfield/field/canvas"
)

const shimmerGrid = 20

// IridescentShimmer paints three layers of soft radial cells whose hue
// drifts with two interfering noise terms.
func IridescentShimmer(ctx Context) {
	in, ok := usable(ctx)
	if !ok {
		return
	}
	c := ctx.Canvas
	for layer := 0; layer < 3; layer++ {
		phase := ctx.Time*0.15 + float64(layer)*0.3
		scale := 1 + float64(layer)*0.5
		for gx := 0; gx < ctx.Width; gx += shimmerGrid {
			x := float64(gx)
			for gy := 0; gy < ctx.Height; gy += shimmerGrid {
				y := float64(gy)
				n1 := math.Sin(x*0.01*scale+phase) * math.Cos(y*0.01*scale+phase*1.3)
				n2 := math.Sin(x*0.007*scale-phase*0.7) * math.Cos(y*0.013*scale+phase)
				hue := phase*180 + n1*60 + n2*40 + x*0.5 + y*0.3
				alpha := 0.15 * in * (0.7 + n1*0.3)
				g := canvas.RadialGradient{
					CX: x, CY: y, R0: 0, R1: 30,
					Stops: canvas.Stops{
						{Offset: 0, Color: hsla(hue, 0.85, 0.65, alpha)},
						{Offset: 1, Color: hsla(hue+30, 0.85, 0.65, 0)},
					},
				}
				c.FillRect(x-15, y-15, 40, 40, g, ctx.Blend)
			}
		}
	}
}

// ThermalGradient fills five wavy bands from a sinusoidal boundary down to
// the bottom edge with a warm-to-cool ramp.
func ThermalGradient(ctx Context) {
	in, ok := usable(ctx)
	if !ok {
		return
	}
	w, h := float64(ctx.Width), float64(ctx.Height)
	pts := make([]canvas.Point, 0, ctx.Width/10+5)
	for wave := 0; wave < 5; wave++ {
		phase := ctx.Time*0.5 + float64(wave)*0.8
		pts = append(pts[:0], canvas.Pt(0, h/2))
		for x := 0.0; x <= w; x += 10 {
			y1 := h*0.3 + math.Sin(x*0.01+phase)*50*in
			y2 := h*0.7 + math.Cos(x*0.015+phase*0.7)*50*in
			mid := (y1+y2)/2 + math.Sin(x*0.005+ctx.Time)*20
			pts = append(pts, canvas.Pt(x, mid))
		}
		pts = append(pts, canvas.Pt(w, h), canvas.Pt(0, h))

		shift := math.Sin(phase) * 30
		g := canvas.LinearGradient{
			X0: 0, Y0: 0, X1: w, Y1: h,
			Stops: canvas.Stops{
				{Offset: 0, Color: hsla(10+shift, 0.85, 0.6, 0.2*in)},
				{Offset: 0.5, Color: hsla(30+shift, 0.8, 0.55, 0.15*in)},
				{Offset: 1, Color: hsla(220-shift, 0.85, 0.6, 0.2*in)},
			},
		}
		ctx.Canvas.FillPolygon(pts, g, ctx.Blend)
	}
}

var interferenceSources = [3]struct{ fx, fy, speed float64 }{
	{0.3, 0.4, 0.5},
	{0.7, 0.6, 0.7},
	{0.5, 0.3, 0.9},
}

// InterferenceWaves strokes expanding rings from three sources so that
// their overlap forms moiré bands.
func InterferenceWaves(ctx Context) {
	in, ok := usable(ctx)
	if !ok {
		return
	}
	p := ctx.Params.withDefaults()
	w, h := float64(ctx.Width), float64(ctx.Height)
	for idx, src := range interferenceSources {
		sx, sy := w*src.fx, h*src.fy
		travel := math.Mod(ctx.Time*50*src.speed, p.InterferenceMaxRadius)
		for ring := 0; ring < p.InterferenceRings; ring++ {
			r := float64(ring)*p.InterferenceSpacing - travel
			if r < 0 {
				continue
			}
			alpha := (1 - r/p.InterferenceMaxRadius) * 0.15 * in
			if alpha <= 0 {
				continue
			}
			col := hsla(330+float64(idx)*30, 0.85, 0.75, alpha)
			width := 2 + math.Sin(float64(ring)*0.5+ctx.Time*3)
			ctx.Canvas.StrokeCircle(sx, sy, r, width, canvas.Solid(col), ctx.Blend)
		}
	}
}
