package app

import (
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"tinygo.org/x/tinyfont"

	"meaningfield/hal"
)

// PanicError is returned by Run when the render loop panicked outside the
// generators.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("render loop panicked: %v", e.Value) }

// recoverPanic turns a panic in the render loop into a *PanicError, logs
// the stack and leaves a panic screen in the host's current framebuffer.
// It must be deferred directly.
func recoverPanic(host *hal.MemHost, err *error) {
	r := recover()
	if r == nil {
		return
	}
	pe := &PanicError{Value: r, Stack: debug.Stack()}
	*err = pe

	logger := log.With().Str("component", "app").Logger()
	logger.Error().Interface("panic", r).Msg("render loop panicked")
	for _, line := range strings.Split(string(pe.Stack), "\n") {
		if line == "" {
			continue
		}
		logger.Debug().Msg(line)
	}

	if fb := host.Current(); fb != nil {
		drawPanicScreen(fb, pe)
	}
}

// drawPanicScreen writes the panic value and stack into fb as black text
// on white and presents it. Lines that do not fit are dropped.
func drawPanicScreen(fb hal.Framebuffer, pe *PanicError) {
	if fb.Width() <= 0 || fb.Height() <= 0 {
		return
	}
	fb.ClearRGB(255, 255, 255)

	font := &tinyfont.TomThumb
	fontHeight, fontOffset := int16(font.YAdvance), int16(5)
	_, outboxWidth := tinyfont.LineWidth(font, "0")
	fontWidth := int16(outboxWidth)
	if fontWidth <= 0 || fontHeight <= 0 {
		_ = fb.Present()
		return
	}

	lines := []string{"meaningfield panic:", fmt.Sprintf("panic: %v", pe.Value)}
	if len(pe.Stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(pe.Stack), "\n") {
			if line == "" {
				continue
			}
			lines = append(lines, strings.TrimSpace(line))
		}
	} else {
		lines = append(lines, "stack: unavailable")
	}

	d := panicDisplay{fb: fb}
	fg := color.RGBA{A: 255}
	cols := max(int16(fb.Width())/fontWidth, 1)
	y := int16(0)
	maxH := int16(min(fb.Height(), 1<<14))

draw:
	for _, line := range lines {
		for len(line) > 0 {
			if y+fontHeight > maxH {
				break draw
			}
			chunk, rest := takeRunes(line, cols)
			drawTextLine(d, font, fontWidth, fontOffset, 0, y, chunk, fg)
			y += fontHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
	_ = fb.Present()
}

func drawTextLine(
	d panicDisplay,
	font tinyfont.Fonter,
	fontWidth, fontOffset int16,
	x0, y0 int16,
	s string,
	fg color.RGBA,
) {
	drawX := x0
	for _, r := range s {
		tinyfont.DrawChar(d, font, drawX, y0+fontOffset, r, fg)
		drawX += fontWidth
	}
}

// panicDisplay writes tinyfont pixels straight into a framebuffer of either
// format.
type panicDisplay struct {
	fb hal.Framebuffer
}

func (d panicDisplay) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(min(d.fb.Width(), 1<<14)), int16(min(d.fb.Height(), 1<<14))
}

func (d panicDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil {
		return
	}
	buf := d.fb.Buffer()
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	row := iy * d.fb.StrideBytes()
	switch d.fb.Format() {
	case hal.PixelFormatRGB565:
		pixel := hal.RGB565(c.R, c.G, c.B)
		off := row + ix*2
		if off+1 >= len(buf) {
			return
		}
		buf[off] = byte(pixel)
		buf[off+1] = byte(pixel >> 8)
	case hal.PixelFormatRGBA8888:
		off := row + ix*4
		if off+3 >= len(buf) {
			return
		}
		buf[off], buf[off+1], buf[off+2], buf[off+3] = c.R, c.G, c.B, 0xFF
	}
}

func (d panicDisplay) Display() error { return nil }

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
