package canvas

import "math"

// Affine is a 2D affine transform:
//
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
type Affine struct {
	A, B, C, D, E, F float64
}

func Identity() Affine { return Affine{A: 1, D: 1} }

func Translate(x, y float64) Affine { return Affine{A: 1, D: 1, E: x, F: y} }

func Scale(sx, sy float64) Affine { return Affine{A: sx, D: sy} }

func Rotate(rad float64) Affine {
	c, s := math.Cos(rad), math.Sin(rad)
	return Affine{A: c, B: s, C: -s, D: c}
}

// Mul returns m·n: n is applied first, then m.
func (m Affine) Mul(n Affine) Affine {
	return Affine{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Then mirrors the canvas API: ctx.translate(); ctx.rotate() becomes
// Translate(...).Then(Rotate(...)).
func (m Affine) Then(n Affine) Affine { return m.Mul(n) }

func (m Affine) Apply(p Point) Point {
	return Point{X: m.A*p.X + m.C*p.Y + m.E, Y: m.B*p.X + m.D*p.Y + m.F}
}

// ScaleFactor is the geometric mean scale, used to map radii.
func (m Affine) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}
