package canvas

import (
	"math"
	"sort"
)

// Paint yields the source color for a device-space sample point.
type Paint interface {
	ColorAt(x, y float64) Color
}

// Solid paints a single color.
type Solid Color

func (s Solid) ColorAt(_, _ float64) Color { return Color(s) }

// Stop is one gradient color stop at Offset in 0..1.
type Stop struct {
	Offset float64
	Color  Color
}

// Stops is a sorted gradient ramp.
type Stops []Stop

// NewStops sorts the stops by offset.
func NewStops(stops ...Stop) Stops {
	s := Stops(stops)
	sort.SliceStable(s, func(i, j int) bool { return s[i].Offset < s[j].Offset })
	return s
}

// At evaluates the ramp; offsets outside the stops pad with the end colors.
func (s Stops) At(t float64) Color {
	switch len(s) {
	case 0:
		return Color{}
	case 1:
		return s[0].Color
	}
	if math.IsNaN(t) || t <= s[0].Offset {
		return s[0].Color
	}
	last := s[len(s)-1]
	if t >= last.Offset {
		return last.Color
	}
	for i := 1; i < len(s); i++ {
		if t <= s[i].Offset {
			a, b := s[i-1], s[i]
			span := b.Offset - a.Offset
			if span <= 0 {
				return b.Color
			}
			return Lerp(a.Color, b.Color, float32((t-a.Offset)/span))
		}
	}
	return last.Color
}

// RadialGradient is a concentric radial ramp from R0 to R1 around (CX, CY).
type RadialGradient struct {
	CX, CY float64
	R0, R1 float64
	Stops  Stops
}

func (g RadialGradient) ColorAt(x, y float64) Color {
	d := math.Hypot(x-g.CX, y-g.CY)
	span := g.R1 - g.R0
	if span <= 0 {
		if d < g.R0 {
			return g.Stops.At(0)
		}
		return g.Stops.At(1)
	}
	return g.Stops.At((d - g.R0) / span)
}

// LinearGradient ramps along the line (X0,Y0) → (X1,Y1).
type LinearGradient struct {
	X0, Y0, X1, Y1 float64
	Stops          Stops
}

func (g LinearGradient) ColorAt(x, y float64) Color {
	dx, dy := g.X1-g.X0, g.Y1-g.Y0
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return g.Stops.At(0)
	}
	return g.Stops.At(((x-g.X0)*dx + (y-g.Y0)*dy) / l2)
}
