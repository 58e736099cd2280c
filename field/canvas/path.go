package canvas

import "math"

// Point is a device-space coordinate.
type Point struct {
	X, Y float64
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

type segKind uint8

const (
	segMove segKind = iota
	segLine
	segCubic
	segClose
)

// segment is one outline command; a cubic uses all three points.
type segment struct {
	kind segKind
	p    [3]Point
}

// Path keeps its outline commands for filling and flattened polylines for
// stroking.
type Path struct {
	segs   []segment
	subs   [][]Point
	closed []bool
}

// NewPath returns an empty path.
func NewPath() *Path { return &Path{} }

// MoveTo starts a new subpath.
func (p *Path) MoveTo(x, y float64) *Path {
	p.segs = append(p.segs, segment{kind: segMove, p: [3]Point{{x, y}}})
	p.subs = append(p.subs, []Point{{x, y}})
	p.closed = append(p.closed, false)
	return p
}

// LineTo extends the current subpath, starting one if needed.
func (p *Path) LineTo(x, y float64) *Path {
	if len(p.subs) == 0 {
		return p.MoveTo(x, y)
	}
	p.segs = append(p.segs, segment{kind: segLine, p: [3]Point{{x, y}}})
	p.appendPoint(Point{x, y})
	return p
}

func (p *Path) appendPoint(q Point) {
	i := len(p.subs) - 1
	p.subs[i] = append(p.subs[i], q)
}

// CubicTo appends a cubic bezier from the current point.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) *Path {
	if len(p.subs) == 0 {
		p.MoveTo(c1x, c1y)
	}
	p.segs = append(p.segs, segment{kind: segCubic, p: [3]Point{{c1x, c1y}, {c2x, c2y}, {x, y}}})
	sub := p.subs[len(p.subs)-1]
	p0 := sub[len(sub)-1]
	pts := Cubic(p0, Pt(c1x, c1y), Pt(c2x, c2y), Pt(x, y))
	for _, q := range pts[1:] {
		p.appendPoint(q)
	}
	return p
}

// Close marks the current subpath closed.
func (p *Path) Close() *Path {
	if n := len(p.closed); n > 0 {
		p.closed[n-1] = true
		p.segs = append(p.segs, segment{kind: segClose})
	}
	return p
}

// Polygon appends a closed subpath through pts.
func (p *Path) Polygon(pts []Point) *Path {
	if len(pts) == 0 {
		return p
	}
	p.MoveTo(pts[0].X, pts[0].Y)
	for _, q := range pts[1:] {
		p.LineTo(q.X, q.Y)
	}
	return p.Close()
}

// Circle appends a closed circular subpath.
func (p *Path) Circle(cx, cy, r float64) *Path {
	return p.Polygon(CirclePoints(cx, cy, r))
}

// Transform maps every point through m.
func (p *Path) Transform(m Affine) *Path {
	for i := range p.segs {
		for k := range p.segs[i].p {
			p.segs[i].p[k] = m.Apply(p.segs[i].p[k])
		}
	}
	for _, sub := range p.subs {
		for i, q := range sub {
			sub[i] = m.Apply(q)
		}
	}
	return p
}

// Empty reports whether the path has no segments.
func (p *Path) Empty() bool {
	for _, sub := range p.subs {
		if len(sub) > 1 {
			return false
		}
	}
	return true
}

// Cubic flattens a cubic bezier into a polyline for stroking. The segment
// count follows the control polygon length.
func Cubic(p0, p1, p2, p3 Point) []Point {
	l := dist(p0, p1) + dist(p1, p2) + dist(p2, p3)
	n := int(l / 4)
	if n < 4 {
		n = 4
	}
	if n > 64 {
		n = 64
	}
	out := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		a := u * u * u
		b := 3 * u * u * t
		c := 3 * u * t * t
		d := t * t * t
		out = append(out, Point{
			X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
			Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
		})
	}
	return out
}

// CirclePoints returns a closed polygon approximating a circle.
func CirclePoints(cx, cy, r float64) []Point {
	n := int(math.Abs(r) * 0.75)
	if n < 16 {
		n = 16
	}
	if n > 256 {
		n = 256
	}
	out := make([]Point, n)
	for i := range out {
		a := 2 * math.Pi * float64(i) / float64(n)
		out[i] = Point{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return out
}

func dist(a, b Point) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }
