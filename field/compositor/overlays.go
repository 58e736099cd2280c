package compositor

import (
	"math"

	"meaningfield/field/canvas"
	"meaningfield/field/meaning"
)

const phi = 1.618033988749

// overlay is one geometry stroke set drawn above the unified field once its
// dimension passes threshold.
type overlay struct {
	dim       meaning.Dimension
	threshold float64
	draw      func(dst *canvas.Canvas, cx, cy, t, v, weight float64)
}

var overlays = [...]overlay{
	{meaning.TemporalFlow, 0.5, goldenSpirals},
	{meaning.ArchetypalResonance, 0.6, flowerOfLife},
	{meaning.TransformativePotential, 0.6, merkaba},
	{meaning.RelationalDynamics, 0.7, vesicaPiscis},
	{meaning.IneffableQuality, 0.8, fibonacciArms},
}

func drawOverlays(dst *canvas.Canvas, t float64, in [meaning.NumDimensions]float64, ramp float64) {
	w, h := dst.Size()
	cx, cy := float64(w)/2, float64(h)/2
	for _, o := range overlays {
		v := meaning.Clamp01(in[o.dim])
		weight := smoothstep(o.threshold, o.threshold+ramp, v)
		if weight <= 0 {
			continue
		}
		o.draw(dst, cx, cy, t, v, weight)
	}
}

func rgba(r, g, b uint8, a float64) canvas.Color {
	return canvas.RGB8(r, g, b, float32(a))
}

func goldenSpirals(dst *canvas.Canvas, cx, cy, t, v, k float64) {
	paint := canvas.RadialGradient{
		CX: cx, CY: cy, R0: 0, R1: 200,
		Stops: canvas.Stops{
			{Offset: 0, Color: rgba(255, 215, 0, v*0.8*k)},
			{Offset: 0.618, Color: rgba(255, 140, 0, v*0.6*k)},
			{Offset: 1, Color: rgba(255, 80, 80, v*0.3*k)},
		},
	}
	const steps = 503 // 0..8π in steps of 0.05
	pts := make([]canvas.Point, steps)
	for arm := 0; arm < 2; arm++ {
		rot := t*v + float64(arm)*math.Pi
		for i := range pts {
			th := float64(i) * 0.05
			r := 20 * math.Pow(phi, th/(2*math.Pi)) * (0.5 + v*0.5)
			pts[i] = canvas.Pt(cx+r*math.Cos(th+rot), cy+r*math.Sin(th+rot))
		}
		dst.StrokePolyline(pts, 1+v*2, paint, canvas.BlendScreen)
	}
}

var flowerOffsets = [7][2]float64{
	{0, 0}, {1, 0}, {-1, 0},
	{0.5, math.Sqrt(3) / 2}, {-0.5, math.Sqrt(3) / 2},
	{0.5, -math.Sqrt(3) / 2}, {-0.5, -math.Sqrt(3) / 2},
}

func flowerOfLife(dst *canvas.Canvas, cx, cy, t, v, k float64) {
	radius := 60 + v*40
	paint := canvas.RadialGradient{
		CX: cx, CY: cy, R0: 0, R1: radius * 2,
		Stops: canvas.Stops{
			{Offset: 0, Color: rgba(180, 100, 255, v*0.7*k)},
			{Offset: 0.5, Color: rgba(100, 200, 255, v*0.5*k)},
			{Offset: 1, Color: rgba(255, 100, 180, v*0.3*k)},
		},
	}
	dx, dy := math.Cos(t*0.5)*10, math.Sin(t*0.5)*10
	for i, off := range flowerOffsets {
		shift := float64(i) * 2 * math.Pi / 7
		r := radius * (1 + math.Sin(t*2+shift)*0.1)
		dst.StrokeCircle(cx+off[0]*radius+dx, cy+off[1]*radius+dy, r, 1.5, paint, canvas.BlendOverlay)
	}
}

func merkaba(dst *canvas.Canvas, cx, cy, t, v, k float64) {
	size := 100 + v*80
	paint := canvas.LinearGradient{
		X0: cx - size, Y0: cy - size, X1: cx + size, Y1: cy + size,
		Stops: canvas.Stops{
			{Offset: 0, Color: rgba(255, 50, 150, v*0.9*k)},
			{Offset: 0.5, Color: rgba(50, 255, 200, v*0.7*k)},
			{Offset: 1, Color: rgba(150, 50, 255, v*0.9*k)},
		},
	}
	var pts [6]canvas.Point
	for tetra := 0; tetra < 2; tetra++ {
		rot := t*v + float64(tetra)*math.Pi
		for i := range pts {
			a := float64(i)*math.Pi/3 + rot
			r := size * (0.8 + math.Sin(t*3+float64(i))*0.2)
			pts[i] = canvas.Pt(cx+r*math.Cos(a), cy+r*math.Sin(a))
		}
		star := canvas.NewPath()
		for i := range pts {
			next := pts[(i+2)%len(pts)]
			star.MoveTo(pts[i].X, pts[i].Y).LineTo(next.X, next.Y)
		}
		dst.StrokePath(star, 2+v*2, paint, canvas.BlendScreen)
	}
}

func vesicaPiscis(dst *canvas.Canvas, cx, cy, t, v, k float64) {
	radius := 90 + v*60
	sep := radius * 1.2
	paint := canvas.RadialGradient{
		CX: cx, CY: cy, R0: 0, R1: radius * 2,
		Stops: canvas.Stops{
			{Offset: 0, Color: rgba(100, 255, 100, v*0.8*k)},
			{Offset: 0.5, Color: rgba(255, 255, 100, v*0.6*k)},
			{Offset: 1, Color: rgba(100, 100, 255, v*0.4*k)},
		},
	}
	a := t * 0.7
	dst.StrokeCircle(cx-sep/2+math.Cos(a)*20, cy+math.Sin(a)*20, radius, 2, paint, canvas.BlendOverlay)
	dst.StrokeCircle(cx+sep/2+math.Cos(a+math.Pi)*20, cy+math.Sin(a+math.Pi)*20, radius, 2, paint, canvas.BlendOverlay)
}

var fibonacci = [...]float64{1, 1, 2, 3, 5, 8, 13, 21}

func fibonacciArms(dst *canvas.Canvas, cx, cy, t, v, k float64) {
	paint := canvas.RadialGradient{
		CX: cx, CY: cy, R0: 0, R1: 300,
		Stops: canvas.Stops{
			{Offset: 0, Color: rgba(255, 255, 255, v*0.9*k)},
			{Offset: 0.618, Color: rgba(200, 220, 255, v*0.7*k)},
			{Offset: 1, Color: rgba(180, 180, 255, v*0.3*k)},
		},
	}
	const golden = 137.5 * math.Pi / 180
	const steps = 63 // 0..2π in steps of 0.1
	pts := make([]canvas.Point, steps)
	for i, fib := range fibonacci {
		angle := float64(i)*golden + t*v*0.5
		radius := fib * 8
		for j := range pts {
			th := float64(j) * 0.1
			r := radius * (1 + th/(2*math.Pi))
			pts[j] = canvas.Pt(cx+r*math.Cos(angle+th), cy+r*math.Sin(angle+th))
		}
		dst.StrokePolyline(pts, math.Sqrt(fib)*0.5, paint, canvas.BlendSoftLight)
	}
}
