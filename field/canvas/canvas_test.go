package canvas

import (
	"math"
	"testing"

	"meaningfield/hal"
)

func near(a, b, eps float32) bool { return float32(math.Abs(float64(a-b))) <= eps }

func TestClearAndEncodeRGBA(t *testing.T) {
	c := New(4, 3)
	c.Clear(RGB8(255, 128, 0, 1))
	buf := make([]byte, 4*3*4)
	c.EncodeRGBA(buf, 4*4)
	for i := 0; i < len(buf); i += 4 {
		if buf[i] != 255 || buf[i+1] != 128 || buf[i+2] != 0 || buf[i+3] != 255 {
			t.Fatalf("pixel %d = %v", i/4, buf[i:i+4])
		}
	}
}

func TestEncodeRGB565(t *testing.T) {
	c := New(2, 2)
	c.Clear(RGB(1, 1, 1))
	buf := make([]byte, 2*2*2)
	c.EncodeRGB565(buf, 4)
	for i := 0; i < len(buf); i += 2 {
		p := uint16(buf[i]) | uint16(buf[i+1])<<8
		if p != 0xFFFF {
			t.Fatalf("pixel %d = %#04x", i/2, p)
		}
	}
	c.Clear(RGB(1, 0, 1))
	c.EncodeRGB565(buf, 4)
	if p := uint16(buf[0]) | uint16(buf[1])<<8; p != hal.RGB565(255, 0, 255) {
		t.Fatalf("magenta = %#04x", p)
	}
}

func TestBlendModes(t *testing.T) {
	cases := []struct {
		mode   BlendMode
		cb, cs float32
		want   float32
	}{
		{BlendNormal, 0.2, 0.8, 0.8},
		{BlendLighter, 0.6, 0.6, 1},
		{BlendLighter, 0.2, 0.3, 0.5},
		{BlendMultiply, 0.5, 0.5, 0.25},
		{BlendScreen, 0.5, 0.5, 0.75},
		{BlendOverlay, 0.25, 0.5, 0.25},
		{BlendOverlay, 0.75, 0.5, 0.75},
		{BlendSoftLight, 0.5, 0.5, 0.5},
	}
	for _, tc := range cases {
		got := blendChannel(tc.mode, tc.cb, tc.cs, 1)
		if !near(got, tc.want, 1e-5) {
			t.Fatalf("%s(%v,%v)=%v want %v", tc.mode, tc.cb, tc.cs, got, tc.want)
		}
	}
	if got := blendChannel(BlendNormal, 0, 1, 0.25); !near(got, 0.25, 1e-6) {
		t.Fatalf("alpha composite = %v", got)
	}
}

func TestParseBlendMode(t *testing.T) {
	for _, name := range []string{"normal", "lighter", "multiply", "screen", "overlay", "soft-light"} {
		m, err := ParseBlendMode(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if m.String() != name {
			t.Fatalf("round trip %s -> %s", name, m)
		}
	}
	if m, _ := ParseBlendMode("additive"); m != BlendLighter {
		t.Fatalf("additive alias = %s", m)
	}
	if _, err := ParseBlendMode("dodge"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFillPolygonCoverage(t *testing.T) {
	c := New(20, 20)
	c.Clear(RGB(0, 0, 0))
	c.FillPolygon([]Point{{5, 5}, {15, 5}, {15, 15}, {5, 15}}, Solid(RGB(1, 1, 1)), BlendNormal)

	if got := c.At(10, 10); !near(got.R, 1, 0.01) {
		t.Fatalf("interior = %v", got)
	}
	if got := c.At(2, 2); got.R != 0 {
		t.Fatalf("exterior = %v", got)
	}

	var sum float32
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			sum += c.At(x, y).R
		}
	}
	if !near(sum, 100, 0.5) {
		t.Fatalf("area = %v want 100", sum)
	}
}

func coveredArea(c *Canvas) float32 {
	w, h := c.Size()
	var sum float32
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum += c.At(x, y).R
		}
	}
	return sum
}

func TestFillPathCubicsAndHoles(t *testing.T) {
	// Four cubics approximating a circle of radius 10.
	const k = 0.5522847498 * 10
	disc := NewPath().MoveTo(30, 20).
		CubicTo(30, 20+k, 20+k, 30, 20, 30).
		CubicTo(20-k, 30, 10, 20+k, 10, 20).
		CubicTo(10, 20-k, 20-k, 10, 20, 10).
		CubicTo(20+k, 10, 30, 20-k, 30, 20).
		Close()
	c := New(40, 40)
	c.Clear(RGB(0, 0, 0))
	c.FillPath(disc, Solid(RGB(1, 1, 1)), BlendNormal)
	if area := coveredArea(c); !near(area, math.Pi*100, 3) {
		t.Fatalf("disc area = %v want %v", area, math.Pi*100)
	}

	// Outer square clockwise, inner square counter-clockwise.
	ring := NewPath().
		Polygon([]Point{{5, 5}, {35, 5}, {35, 35}, {5, 35}}).
		Polygon([]Point{{15, 15}, {15, 25}, {25, 25}, {25, 15}})
	c.Clear(RGB(0, 0, 0))
	c.FillPath(ring, Solid(RGB(1, 1, 1)), BlendNormal)
	if got := c.At(20, 20); got.R > 0.01 {
		t.Fatalf("hole painted: %v", got)
	}
	if got := c.At(10, 10); !near(got.R, 1, 0.01) {
		t.Fatalf("ring = %v", got)
	}
	if area := coveredArea(c); !near(area, 800, 1) {
		t.Fatalf("ring area = %v want 800", area)
	}
}

func TestFillPolygonClippedAtEdges(t *testing.T) {
	c := New(10, 10)
	c.Clear(RGB(0, 0, 0))
	c.FillPolygon([]Point{{-20, 2}, {30, 2}, {30, 6}, {-20, 6}}, Solid(RGB(1, 1, 1)), BlendNormal)
	for x := 0; x < 10; x++ {
		if got := c.At(x, 3); !near(got.R, 1, 0.01) {
			t.Fatalf("pixel %d,3 = %v", x, got)
		}
		if got := c.At(x, 7); got.R != 0 {
			t.Fatalf("pixel %d,7 = %v", x, got)
		}
	}
	if area := coveredArea(c); !near(area, 40, 0.5) {
		t.Fatalf("area = %v want 40", area)
	}
}

func TestStrokeDoesNotDoubleBlendJoints(t *testing.T) {
	c := New(20, 20)
	c.Clear(RGB(0, 0, 0))
	pts := []Point{{2, 10.5}, {10, 10.5}, {18, 10.5}}
	c.StrokePolyline(pts, 2, Solid(RGBA(1, 1, 1, 0.5)), BlendLighter)
	if got := c.At(10, 10); !near(got.R, 0.5, 1e-5) {
		t.Fatalf("joint = %v want 0.5", got.R)
	}
}

func TestStrokeCircle(t *testing.T) {
	c := New(40, 40)
	c.Clear(RGB(0, 0, 0))
	c.StrokeCircle(20, 20, 10, 2, Solid(RGB(1, 0, 0)), BlendNormal)
	if got := c.At(29, 19); got.R < 0.5 {
		t.Fatalf("ring pixel = %v", got)
	}
	if got := c.At(20, 20); got.R != 0 {
		t.Fatalf("centre should be untouched: %v", got)
	}
}

func TestDegenerateGeometryIsIgnored(t *testing.T) {
	c := New(8, 8)
	c.Clear(RGB(0, 0, 0))
	nan := math.NaN()
	c.FillPolygon([]Point{{nan, 0}, {4, 4}, {0, 4}}, Solid(RGB(1, 1, 1)), BlendNormal)
	c.StrokePolyline([]Point{{math.Inf(1), 0}, {4, 4}}, 1, Solid(RGB(1, 1, 1)), BlendNormal)
	c.StrokeCircle(4, 4, nan, 1, Solid(RGB(1, 1, 1)), BlendNormal)
	c.FillPolygon([]Point{{-100, -100}, {-50, -100}, {-50, -50}}, Solid(RGB(1, 1, 1)), BlendNormal)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if c.At(x, y).R != 0 {
				t.Fatalf("pixel %d,%d painted", x, y)
			}
		}
	}

	var empty Canvas
	empty.FillCircle(0, 0, 10, Solid(RGB(1, 1, 1)), BlendNormal)
	empty.Clear(RGB(1, 1, 1))
}

func TestResizeReusesStorage(t *testing.T) {
	c := New(10, 10)
	c.Resize(5, 4)
	if w, h := c.Size(); w != 5 || h != 4 {
		t.Fatalf("size = %dx%d", w, h)
	}
	c.Resize(0, 7)
	if !c.Empty() {
		t.Fatal("zero width canvas should be empty")
	}
	c.Resize(-3, 2)
	if c.Width() != 0 {
		t.Fatalf("negative width kept: %d", c.Width())
	}
}

func TestGradients(t *testing.T) {
	stops := NewStops(Stop{1, RGB(0, 0, 1)}, Stop{0, RGB(1, 0, 0)})
	if got := stops.At(-1); got != RGB(1, 0, 0) {
		t.Fatalf("pad start = %v", got)
	}
	if got := stops.At(0.5); !near(got.R, 0.5, 1e-5) || !near(got.B, 0.5, 1e-5) {
		t.Fatalf("mid = %v", got)
	}

	fade := NewStops(Stop{0, RGB(1, 0, 0)}, Stop{1, Transparent})
	if got := fade.At(0.5); !near(got.R, 1, 1e-5) || !near(got.A, 0.5, 1e-5) {
		t.Fatalf("premultiplied lerp = %v", got)
	}

	g := RadialGradient{CX: 0, CY: 0, R0: 0, R1: 10, Stops: stops}
	if got := g.ColorAt(10, 0); got != RGB(0, 0, 1) {
		t.Fatalf("radial edge = %v", got)
	}
	l := LinearGradient{X0: 0, Y0: 0, X1: 10, Y1: 0, Stops: stops}
	if got := l.ColorAt(0, 5); got != RGB(1, 0, 0) {
		t.Fatalf("linear start = %v", got)
	}
}

func TestHSL(t *testing.T) {
	cases := []struct {
		h, s, l float64
		r, g, b float64
	}{
		{0, 1, 0.5, 1, 0, 0},
		{120, 1, 0.5, 0, 1, 0},
		{240, 1, 0.5, 0, 0, 1},
		{-120, 1, 0.5, 0, 0, 1},
		{720, 1, 0.5, 1, 0, 0},
		{42, 0, 0.3, 0.3, 0.3, 0.3},
	}
	for _, tc := range cases {
		r, g, b := HSLToRGB(tc.h, tc.s, tc.l)
		if math.Abs(r-tc.r) > 1e-9 || math.Abs(g-tc.g) > 1e-9 || math.Abs(b-tc.b) > 1e-9 {
			t.Fatalf("hsl(%v,%v,%v) = %v,%v,%v", tc.h, tc.s, tc.l, r, g, b)
		}
	}
	if WrapHue(math.NaN()) != 0 || WrapHue(-30) != 330 {
		t.Fatal("WrapHue")
	}
}

func TestAffine(t *testing.T) {
	m := Translate(10, 0).Then(Rotate(math.Pi / 2)).Then(Scale(2, 2))
	p := m.Apply(Pt(1, 0))
	if math.Abs(p.X-10) > 1e-9 || math.Abs(p.Y-2) > 1e-9 {
		t.Fatalf("apply = %v", p)
	}
	if math.Abs(m.ScaleFactor()-2) > 1e-9 {
		t.Fatalf("scale factor = %v", m.ScaleFactor())
	}
}
