package compositor

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"

	"meaningfield/field/canvas"
)

const analyzingCaption = "Extracting meaning essence..."

// Labels writes dimension captions over a finished frame.
type Labels struct {
	Font  tinyfont.Fonter
	Color color.RGBA
	// Scale magnifies each font pixel into a Scale×Scale block.
	Scale int
	// Lines is the number of top dimensions captioned.
	Lines int
}

func NewLabels(scale int) *Labels {
	if scale <= 0 {
		scale = 1
	}
	return &Labels{
		Font:  &tinyfont.TomThumb,
		Color: color.RGBA{R: 255, G: 255, B: 255, A: 180},
		Scale: scale,
		Lines: 3,
	}
}

// Captions returns the text Draw would write for f.
func (l *Labels) Captions(f Frame) []string {
	if f.Analyzing {
		return []string{analyzingCaption}
	}
	if f.Salience == nil {
		return nil
	}
	top := f.Salience.Top(l.Lines)
	out := make([]string, 0, len(top))
	for _, d := range top {
		pct := int(math.Round(f.Salience.Raw.Get(d) * 100))
		out = append(out, fmt.Sprintf("%s %d%%", strings.ToLower(d.Label()), pct))
	}
	return out
}

// Draw writes the captions: top-left while showing a vector, centred while
// analyzing.
func (l *Labels) Draw(dst *canvas.Canvas, f Frame) {
	if dst.Empty() || l.Font == nil {
		return
	}
	lines := l.Captions(f)
	if len(lines) == 0 {
		return
	}
	d := labelDisplay{c: dst, scale: int16(max(l.Scale, 1))}
	dw, dh := d.Size()
	lineH := int16(l.Font.GetYAdvance())
	if lineH <= 0 {
		lineH = 6
	}

	if f.Analyzing {
		_, outbox := tinyfont.LineWidth(l.Font, lines[0])
		x := (dw - int16(outbox)) / 2
		tinyfont.WriteLine(d, l.Font, max(x, 0), dh/2, lines[0], l.Color)
		return
	}
	y := lineH
	for _, s := range lines {
		if y > dh {
			break
		}
		tinyfont.WriteLine(d, l.Font, 2, y, s, l.Color)
		y += lineH
	}
}

var _ drivers.Displayer = labelDisplay{}

// labelDisplay adapts a canvas to the tinyfont display contract.
type labelDisplay struct {
	c     *canvas.Canvas
	scale int16
}

func (d labelDisplay) Size() (x, y int16) {
	w, h := d.c.Size()
	return int16(min(w/int(d.scale), math.MaxInt16)), int16(min(h/int(d.scale), math.MaxInt16))
}

func (d labelDisplay) SetPixel(x, y int16, c color.RGBA) {
	col := canvas.RGB8(c.R, c.G, c.B, float32(c.A)/255)
	s := int(d.scale)
	for dy := 0; dy < s; dy++ {
		for dx := 0; dx < s; dx++ {
			d.c.SetPixel(int(x)*s+dx, int(y)*s+dy, col)
		}
	}
}

func (d labelDisplay) Display() error { return nil }

// Labelled decorates a compositor's frames with captions.
type Labelled struct {
	Compositor
	Labels *Labels
}

func (l Labelled) Render(dst *canvas.Canvas, f Frame) error {
	err := l.Compositor.Render(dst, f)
	if l.Labels != nil {
		l.Labels.Draw(dst, f)
	}
	return err
}
