package canvas

import (
	"image"

	"meaningfield/hal"
)

// EncodeRGBA writes the canvas as 8-bit RGBA rows into dst. Rows or pixels
// that do not fit dst are skipped.
func (c *Canvas) EncodeRGBA(dst []byte, stride int) {
	if c.Empty() || stride <= 0 {
		return
	}
	for y := 0; y < c.h; y++ {
		row := y * stride
		src := c.pix[y*c.w*3 : (y+1)*c.w*3]
		for x := 0; x < c.w; x++ {
			off := row + x*4
			if off+3 >= len(dst) {
				return
			}
			dst[off] = to8(clamp01(src[x*3]))
			dst[off+1] = to8(clamp01(src[x*3+1]))
			dst[off+2] = to8(clamp01(src[x*3+2]))
			dst[off+3] = 0xFF
		}
	}
}

// EncodeRGB565 writes the canvas as little-endian RGB565 rows into dst.
func (c *Canvas) EncodeRGB565(dst []byte, stride int) {
	if c.Empty() || stride <= 0 {
		return
	}
	for y := 0; y < c.h; y++ {
		row := y * stride
		src := c.pix[y*c.w*3 : (y+1)*c.w*3]
		for x := 0; x < c.w; x++ {
			off := row + x*2
			if off+1 >= len(dst) {
				return
			}
			p := hal.RGB565(to8(clamp01(src[x*3])), to8(clamp01(src[x*3+1])), to8(clamp01(src[x*3+2])))
			dst[off] = byte(p)
			dst[off+1] = byte(p >> 8)
		}
	}
}

// Image returns a copy of the canvas as an *image.RGBA.
func (c *Canvas) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.w, c.h))
	c.EncodeRGBA(img.Pix, img.Stride)
	return img
}
