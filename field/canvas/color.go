package canvas

import "math"

// Color is a straight-alpha color with channels in 0..1.
type Color struct {
	R, G, B, A float32
}

func RGB(r, g, b float32) Color     { return Color{R: r, G: g, B: b, A: 1} }
func RGBA(r, g, b, a float32) Color { return Color{R: r, G: g, B: b, A: a} }

// RGB8 builds a color from 8-bit channels and a 0..1 alpha.
func RGB8(r, g, b uint8, a float32) Color {
	return Color{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255, A: a}
}

// Transparent is the zero-alpha color used as a gradient end stop.
var Transparent = Color{}

func (c Color) WithAlpha(a float32) Color { c.A = a; return c }

// Clamped forces every channel into 0..1; NaN becomes 0.
func (c Color) Clamped() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: clamp01(c.A)}
}

// RGBA8 returns 8-bit channels of the clamped color.
func (c Color) RGBA8() (r, g, b, a uint8) {
	c = c.Clamped()
	return to8(c.R), to8(c.G), to8(c.B), to8(c.A)
}

// Lerp interpolates premultiplied so that a transparent stop does not pull
// the hue toward black.
func Lerp(a, b Color, t float32) Color {
	t = clamp01(t)
	pa := a.A * (1 - t)
	pb := b.A * t
	alpha := pa + pb
	if alpha <= 0 {
		return Color{}
	}
	return Color{
		R: (a.R*pa + b.R*pb) / alpha,
		G: (a.G*pa + b.G*pb) / alpha,
		B: (a.B*pa + b.B*pb) / alpha,
		A: alpha,
	}
}

// HSLA converts hue (degrees, any range), saturation and lightness (0..1)
// to a color.
func HSLA(h, s, l, a float64) Color {
	r, g, b := HSLToRGB(h, s, l)
	return Color{R: float32(r), G: float32(g), B: float32(b), A: float32(a)}
}

// HSLToRGB converts HSL to RGB in 0..1. Hue wraps; s and l are clamped.
func HSLToRGB(h, s, l float64) (r, g, b float64) {
	h = WrapHue(h) / 360
	s = clamp01f(s)
	l = clamp01f(l)
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h*6, 2)-1))
	m := l - c/2
	switch h6 := h * 6; {
	case h6 < 1:
		r, g, b = c, x, 0
	case h6 < 2:
		r, g, b = x, c, 0
	case h6 < 3:
		r, g, b = 0, c, x
	case h6 < 4:
		r, g, b = 0, x, c
	case h6 < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}

// WrapHue maps any hue in degrees to [0,360). NaN maps to 0.
func WrapHue(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h = 0
	}
	return h
}

func to8(v float32) uint8 { return uint8(v*255 + 0.5) }

func clamp01(v float32) float32 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp01f(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
