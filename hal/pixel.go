package hal

import "image"

// RGB565 packs 8-bit channels as rrrrrggggggbbbbb.
func RGB565(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}

// RGB888From565 expands an RGB565 pixel.
func RGB888From565(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((rr * 255) / 31)
	g = uint8((gg * 255) / 63)
	b = uint8((bb * 255) / 31)
	return r, g, b
}

// toRGBA expands a tightly packed frame of format f into dst, which must
// hold w*h*4 bytes.
func toRGBA(dst, src []byte, f PixelFormat, w, h, stride int) {
	switch f {
	case PixelFormatRGBA8888:
		for y := 0; y < h; y++ {
			so := y * stride
			if so+w*4 > len(src) {
				return
			}
			copy(dst[y*w*4:(y+1)*w*4], src[so:so+w*4])
		}
	case PixelFormatRGB565:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*stride + x*2
				if i+1 >= len(src) {
					return
				}
				r, g, b := RGB888From565(uint16(src[i]) | uint16(src[i+1])<<8)
				j := (y*w + x) * 4
				dst[j+0] = r
				dst[j+1] = g
				dst[j+2] = b
				dst[j+3] = 0xFF
			}
		}
	}
}

// Snapshot returns the last presented frame of fb as an image. Framebuffers
// not allocated by a MemHost are read from Buffer directly.
func Snapshot(fb Framebuffer) *image.RGBA {
	w, h := fb.Width(), fb.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return img
	}
	if m, ok := fb.(*memFramebuffer); ok {
		m.mu.Lock()
		defer m.mu.Unlock()
		toRGBA(img.Pix, m.front, m.format, w, h, m.stride)
		return img
	}
	toRGBA(img.Pix, fb.Buffer(), fb.Format(), w, h, fb.StrideBytes())
	return img
}
