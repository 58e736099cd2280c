package canvas

import (
	"image"
	"math"
)

// FillPath fills every subpath of p, implicitly closed. Subpaths wound the
// same way union; opposite windings cut holes.
func (c *Canvas) FillPath(p *Path, paint Paint, mode BlendMode) {
	if c.Empty() || p == nil || paint == nil {
		return
	}
	c.fillMask(p.segs)
	c.flush(paint, mode)
}

// FillPolygon fills a single closed polygon.
func (c *Canvas) FillPolygon(pts []Point, paint Paint, mode BlendMode) {
	if c.Empty() || len(pts) < 3 || paint == nil {
		return
	}
	c.segs = c.segs[:0]
	c.segs = append(c.segs, segment{kind: segMove, p: [3]Point{pts[0]}})
	for _, q := range pts[1:] {
		c.segs = append(c.segs, segment{kind: segLine, p: [3]Point{q}})
	}
	c.segs = append(c.segs, segment{kind: segClose})
	c.fillMask(c.segs)
	c.flush(paint, mode)
}

// StrokePath strokes every subpath with round joins and caps. Widths below
// one pixel are drawn one pixel wide with proportionally reduced coverage.
func (c *Canvas) StrokePath(p *Path, width float64, paint Paint, mode BlendMode) {
	if c.Empty() || p == nil || paint == nil || !(width > 0) {
		return
	}
	for i, sub := range p.subs {
		c.strokeMask(sub, p.closed[i], width)
	}
	c.flush(paint, mode)
}

// StrokePolyline strokes an open polyline.
func (c *Canvas) StrokePolyline(pts []Point, width float64, paint Paint, mode BlendMode) {
	if c.Empty() || len(pts) < 2 || paint == nil || !(width > 0) {
		return
	}
	c.strokeMask(pts, false, width)
	c.flush(paint, mode)
}

// StrokeCircle strokes a ring of radius r directly, without flattening.
func (c *Canvas) StrokeCircle(cx, cy, r, width float64, paint Paint, mode BlendMode) {
	if c.Empty() || paint == nil || !(width > 0) || !(r >= 0) {
		return
	}
	hw, gain := strokeWidth(width)
	reach := r + hw + 1
	x0, y0, x1, y1, ok := c.clipBox(cx-reach, cy-reach, cx+reach, cy+reach)
	if !ok {
		return
	}
	inner := r - hw - 1
	for y := y0; y <= y1; y++ {
		py := float64(y) + 0.5 - cy
		for x := x0; x <= x1; x++ {
			px := float64(x) + 0.5 - cx
			d := math.Hypot(px, py)
			if d < inner || d > reach {
				continue
			}
			a := hw + 0.5 - math.Abs(d-r)
			if a <= 0 {
				continue
			}
			if a > 1 {
				a = 1
			}
			c.cover(x, y, float32(a*gain))
		}
	}
	c.flush(paint, mode)
}

// FillCircle fills a disc with an anti-aliased edge.
func (c *Canvas) FillCircle(cx, cy, r float64, paint Paint, mode BlendMode) {
	if c.Empty() || paint == nil || !(r > 0) {
		return
	}
	x0, y0, x1, y1, ok := c.clipBox(cx-r-1, cy-r-1, cx+r+1, cy+r+1)
	if !ok {
		return
	}
	for y := y0; y <= y1; y++ {
		py := float64(y) + 0.5 - cy
		for x := x0; x <= x1; x++ {
			px := float64(x) + 0.5 - cx
			a := r + 0.5 - math.Hypot(px, py)
			if a <= 0 {
				continue
			}
			if a > 1 {
				a = 1
			}
			c.cover(x, y, float32(a))
		}
	}
	c.flush(paint, mode)
}

func strokeWidth(width float64) (halfWidth, gain float64) {
	if width < 1 {
		return 0.5, width
	}
	return width / 2, 1
}

// fillMask rasterizes the outline over its clipped bounding box and adds
// the coverage to the mask.
func (c *Canvas) fillMask(segs []segment) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, sg := range segs {
		n := 0
		switch sg.kind {
		case segMove, segLine:
			n = 1
		case segCubic:
			n = 3
		}
		for _, q := range sg.p[:n] {
			if !finite(q) {
				return
			}
			minX = math.Min(minX, q.X)
			minY = math.Min(minY, q.Y)
			maxX = math.Max(maxX, q.X)
			maxY = math.Max(maxY, q.Y)
		}
	}
	x0, y0, x1, y1, ok := c.clipBox(minX, minY, maxX, maxY)
	if !ok {
		return
	}
	bw, bh := x1-x0+1, y1-y0+1

	// Points outside the box are fine: the rasterizer folds coverage left
	// of it into the first column and ignores the rest.
	ox, oy := float64(x0), float64(y0)
	at := func(q Point) (float32, float32) { return float32(q.X - ox), float32(q.Y - oy) }
	z := &c.z
	z.Reset(bw, bh)
	open := false
	for _, sg := range segs {
		switch sg.kind {
		case segMove:
			if open {
				z.ClosePath()
			}
			z.MoveTo(at(sg.p[0]))
			open = true
		case segLine:
			z.LineTo(at(sg.p[0]))
		case segCubic:
			bx, by := at(sg.p[0])
			cx, cy := at(sg.p[1])
			dx, dy := at(sg.p[2])
			z.CubeTo(bx, by, cx, cy, dx, dy)
		case segClose:
			z.ClosePath()
			open = false
		}
	}
	if open {
		z.ClosePath()
	}

	mask := c.alphaMask(bw, bh)
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	for y := 0; y < bh; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+bw]
		for x, a := range row {
			if a != 0 {
				c.addCover(x0+x, y0+y, float32(a)/255)
			}
		}
	}
}

// alphaMask returns the cleared scratch mask resized to w×h.
func (c *Canvas) alphaMask(w, h int) *image.Alpha {
	n := w * h
	if c.mask == nil || cap(c.mask.Pix) < n {
		c.mask = image.NewAlpha(image.Rect(0, 0, w, h))
		return c.mask
	}
	c.mask.Pix = c.mask.Pix[:n]
	clear(c.mask.Pix)
	c.mask.Stride = w
	c.mask.Rect = image.Rect(0, 0, w, h)
	return c.mask
}

func (c *Canvas) strokeMask(pts []Point, closed bool, width float64) {
	n := len(pts)
	if n == 0 {
		return
	}
	if n == 1 {
		pts = []Point{pts[0], pts[0]}
		n = 2
	}
	hw, gain := strokeWidth(width)
	segs := n - 1
	if closed && n > 2 {
		segs = n
	}
	for i := 0; i < segs; i++ {
		a, b := pts[i], pts[(i+1)%n]
		if !finite(a) || !finite(b) {
			continue
		}
		c.strokeSegment(a, b, hw, gain)
	}
}

func (c *Canvas) strokeSegment(a, b Point, hw, gain float64) {
	reach := hw + 1
	x0, y0, x1, y1, ok := c.clipBox(
		math.Min(a.X, b.X)-reach, math.Min(a.Y, b.Y)-reach,
		math.Max(a.X, b.X)+reach, math.Max(a.Y, b.Y)+reach,
	)
	if !ok {
		return
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	for y := y0; y <= y1; y++ {
		py := float64(y) + 0.5
		for x := x0; x <= x1; x++ {
			px := float64(x) + 0.5
			t := 0.0
			if l2 > 0 {
				t = ((px-a.X)*dx + (py-a.Y)*dy) / l2
				if t < 0 {
					t = 0
				} else if t > 1 {
					t = 1
				}
			}
			d := math.Hypot(px-(a.X+t*dx), py-(a.Y+t*dy))
			cov := hw + 0.5 - d
			if cov <= 0 {
				continue
			}
			if cov > 1 {
				cov = 1
			}
			c.cover(x, y, float32(cov*gain))
		}
	}
}

// clipBox converts a float bounding box into inclusive pixel bounds.
func (c *Canvas) clipBox(minX, minY, maxX, maxY float64) (x0, y0, x1, y1 int, ok bool) {
	if math.IsNaN(minX) || math.IsNaN(minY) || math.IsNaN(maxX) || math.IsNaN(maxY) {
		return 0, 0, 0, 0, false
	}
	if maxX < 0 || maxY < 0 || minX >= float64(c.w) || minY >= float64(c.h) {
		return 0, 0, 0, 0, false
	}
	x0 = clampInt(int(math.Floor(math.Max(minX, 0))), 0, c.w-1)
	y0 = clampInt(int(math.Floor(math.Max(minY, 0))), 0, c.h-1)
	x1 = clampInt(int(math.Ceil(math.Min(maxX, float64(c.w)))), 0, c.w-1)
	y1 = clampInt(int(math.Ceil(math.Min(maxY, float64(c.h)))), 0, c.h-1)
	return x0, y0, x1, y1, x0 <= x1 && y0 <= y1
}

// cover raises the mask at (x,y) to at least a.
func (c *Canvas) cover(x, y int, a float32) {
	i := y*c.w + x
	if a > c.cov[i] {
		c.cov[i] = a
	}
	c.markDirty(x, y)
}

// addCover accumulates fill coverage at (x,y).
func (c *Canvas) addCover(x, y int, a float32) {
	c.cov[y*c.w+x] += a
	c.markDirty(x, y)
}

func (c *Canvas) markDirty(x, y int) {
	if !c.dirty {
		c.dx0, c.dy0, c.dx1, c.dy1 = x, y, x, y
		c.dirty = true
		return
	}
	if x < c.dx0 {
		c.dx0 = x
	}
	if x > c.dx1 {
		c.dx1 = x
	}
	if y < c.dy0 {
		c.dy0 = y
	}
	if y > c.dy1 {
		c.dy1 = y
	}
}

// flush composites the coverage mask with paint and resets it.
func (c *Canvas) flush(p Paint, mode BlendMode) {
	if !c.dirty {
		return
	}
	for y := c.dy0; y <= c.dy1; y++ {
		row := y * c.w
		for x := c.dx0; x <= c.dx1; x++ {
			cov := c.cov[row+x]
			if cov <= 0 {
				continue
			}
			c.cov[row+x] = 0
			if cov > 1 {
				cov = 1
			}
			col := p.ColorAt(float64(x)+0.5, float64(y)+0.5).Clamped()
			col.A *= cov
			c.blendAt((row+x)*3, col, mode)
		}
	}
	c.dirty = false
}

func finite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func sqrt32(v float32) float32 { return float32(math.Sqrt(float64(v))) }
