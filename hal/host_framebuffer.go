package hal

import "sync"

// memFramebuffer is double buffered: writers fill buf, Present copies it to
// front under mu, and readers snapshot front.
type memFramebuffer struct {
	host   *MemHost
	width  int
	height int
	stride int
	format PixelFormat
	buf    []byte

	mu        sync.Mutex
	front     []byte
	presented uint64
	released  bool
}

func newMemFramebuffer(h *MemHost, width, height int, format PixelFormat) *memFramebuffer {
	stride := width * format.BytesPerPixel()
	return &memFramebuffer{
		host:   h,
		width:  width,
		height: height,
		stride: stride,
		format: format,
		buf:    make([]byte, stride*height),
		front:  make([]byte, stride*height),
	}
}

func (f *memFramebuffer) Width() int          { return f.width }
func (f *memFramebuffer) Height() int         { return f.height }
func (f *memFramebuffer) Format() PixelFormat { return f.format }
func (f *memFramebuffer) StrideBytes() int    { return f.stride }
func (f *memFramebuffer) Buffer() []byte      { return f.buf }

func (f *memFramebuffer) ClearRGB(r, g, b uint8) {
	switch f.format {
	case PixelFormatRGB565:
		pixel := RGB565(r, g, b)
		lo := byte(pixel)
		hi := byte(pixel >> 8)
		for i := 0; i+1 < len(f.buf); i += 2 {
			f.buf[i] = lo
			f.buf[i+1] = hi
		}
	case PixelFormatRGBA8888:
		for i := 0; i+3 < len(f.buf); i += 4 {
			f.buf[i] = r
			f.buf[i+1] = g
			f.buf[i+2] = b
			f.buf[i+3] = 0xFF
		}
	}
}

func (f *memFramebuffer) Present() error {
	f.mu.Lock()
	if f.released {
		f.mu.Unlock()
		return ErrReleased
	}
	copy(f.front, f.buf)
	f.presented++
	f.mu.Unlock()

	return f.host.presented(f)
}

// Presented returns how many frames fb has presented.
func Presented(fb Framebuffer) uint64 {
	m, ok := fb.(*memFramebuffer)
	if !ok {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presented
}

func (f *memFramebuffer) snapshotInto(dst []byte) (w, h int, format PixelFormat, stride int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.front)
	return f.width, f.height, f.format, f.stride
}
