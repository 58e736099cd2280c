// Package canvas is a small software rasterizer for procedural frames.
//
// A Canvas is an opaque RGB float raster. Shapes are rasterized into a
// coverage mask first and then composited once with a Paint and a
// BlendMode, so overlapping segments of one stroke never blend twice.
//
// The package has no notion of time or meaning; it only draws.
package canvas

import (
	"image"
	"math"

	"golang.org/x/image/vector"
)

// Target is the minimal pixel target shared with overlay code.
//
// Implementations clip out-of-bounds coordinates.
type Target interface {
	Size() (w, h int)
	SetPixel(x, y int, c Color)
	Clear(c Color)
}

// Canvas is an opaque float RGB raster with a reusable coverage mask.
type Canvas struct {
	w, h int
	pix  []float32 // RGB triplets, row-major
	cov  []float32 // coverage mask, one per pixel

	// dirty bounds of the coverage mask, inclusive
	dx0, dy0, dx1, dy1 int
	dirty             bool

	// fill scratch, reused across shapes
	z    vector.Rasterizer
	mask *image.Alpha
	segs []segment
}

// New allocates a canvas. Negative sizes are treated as zero.
func New(w, h int) *Canvas {
	c := &Canvas{}
	c.Resize(w, h)
	return c
}

// Resize changes the canvas size, reusing storage when it is large enough.
// Pixel contents are undefined afterwards; callers clear each frame.
func (c *Canvas) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c.w, c.h = w, h
	n := w * h
	if cap(c.pix) < n*3 {
		c.pix = make([]float32, n*3)
		c.cov = make([]float32, n)
	} else {
		c.pix = c.pix[:n*3]
		c.cov = c.cov[:n]
		clear(c.cov)
	}
	c.dirty = false
}

func (c *Canvas) Size() (w, h int) { return c.w, c.h }
func (c *Canvas) Width() int       { return c.w }
func (c *Canvas) Height() int      { return c.h }

// Empty reports whether the canvas has zero area.
func (c *Canvas) Empty() bool { return c == nil || c.w <= 0 || c.h <= 0 }

// Clear fills the canvas with an opaque color; alpha is ignored.
func (c *Canvas) Clear(col Color) {
	col = col.Clamped()
	for i := 0; i+2 < len(c.pix); i += 3 {
		c.pix[i] = col.R
		c.pix[i+1] = col.G
		c.pix[i+2] = col.B
	}
}

// SetPixel composites col over the pixel with normal blending.
func (c *Canvas) SetPixel(x, y int, col Color) {
	c.BlendPixel(x, y, col, BlendNormal)
}

// BlendPixel composites col at (x,y) with the given mode.
func (c *Canvas) BlendPixel(x, y int, col Color, mode BlendMode) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.blendAt((y*c.w+x)*3, col.Clamped(), mode)
}

// Set writes an opaque color at (x,y).
func (c *Canvas) Set(x, y int, col Color) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	col = col.Clamped()
	i := (y*c.w + x) * 3
	c.pix[i] = col.R
	c.pix[i+1] = col.G
	c.pix[i+2] = col.B
}

// At returns the opaque color at (x,y); out-of-bounds reads are black.
func (c *Canvas) At(x, y int) Color {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return RGB(0, 0, 0)
	}
	i := (y*c.w + x) * 3
	return RGB(c.pix[i], c.pix[i+1], c.pix[i+2])
}

// Row returns the RGB triplets of row y for bulk writers. Writers must keep
// values in 0..1.
func (c *Canvas) Row(y int) []float32 {
	if y < 0 || y >= c.h {
		return nil
	}
	return c.pix[y*c.w*3 : (y+1)*c.w*3]
}

func (c *Canvas) blendAt(i int, col Color, mode BlendMode) {
	a := col.A
	if a <= 0 {
		return
	}
	c.pix[i] = blendChannel(mode, c.pix[i], col.R, a)
	c.pix[i+1] = blendChannel(mode, c.pix[i+1], col.G, a)
	c.pix[i+2] = blendChannel(mode, c.pix[i+2], col.B, a)
}

// Fill paints every pixel.
func (c *Canvas) Fill(p Paint, mode BlendMode) {
	if c.Empty() || p == nil {
		return
	}
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			col := p.ColorAt(float64(x)+0.5, float64(y)+0.5).Clamped()
			c.blendAt((y*c.w+x)*3, col, mode)
		}
	}
}

// FillRect paints an axis-aligned rectangle with partial edge coverage.
func (c *Canvas) FillRect(x, y, w, h float64, p Paint, mode BlendMode) {
	if c.Empty() || p == nil || w <= 0 || h <= 0 {
		return
	}
	x0, y0 := clampInt(int(math.Floor(x)), 0, c.w-1), clampInt(int(math.Floor(y)), 0, c.h-1)
	x1, y1 := clampInt(int(math.Ceil(x+w))-1, 0, c.w-1), clampInt(int(math.Ceil(y+h))-1, 0, c.h-1)
	for py := y0; py <= y1; py++ {
		cy := overlap(float64(py), y, y+h)
		if cy <= 0 {
			continue
		}
		for px := x0; px <= x1; px++ {
			cx := overlap(float64(px), x, x+w)
			if cx <= 0 {
				continue
			}
			c.cover(px, py, float32(cx*cy))
		}
	}
	c.flush(p, mode)
}

// overlap returns how much of the unit pixel [p, p+1) lies in [a, b).
func overlap(p, a, b float64) float64 {
	lo := math.Max(p, a)
	hi := math.Min(p+1, b)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
