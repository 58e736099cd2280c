package hal

import (
	"errors"
	"fmt"
	"sync"
)

// MemHost allocates in-memory framebuffers and fans presented frames out to
// an optional sink.
type MemHost struct {
	format    PixelFormat
	maxPixels int

	mu      sync.Mutex
	live    map[*memFramebuffer]struct{}
	current *memFramebuffer
	sink    Sink
}

// NewHost returns a host producing framebuffers of the given format.
// maxPixels bounds a single allocation; zero means unbounded.
func NewHost(format PixelFormat, maxPixels int) *MemHost {
	if format.BytesPerPixel() == 0 {
		format = PixelFormatRGBA8888
	}
	return &MemHost{
		format:    format,
		maxPixels: maxPixels,
		live:      make(map[*memFramebuffer]struct{}),
	}
}

// ErrTooLarge is returned by NewFramebuffer when the surface exceeds the
// host's pixel budget.
var ErrTooLarge = errors.New("hal: framebuffer too large")

func (h *MemHost) NewFramebuffer(width, height int) (Framebuffer, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("hal: invalid framebuffer size %dx%d", width, height)
	}
	if h.maxPixels > 0 && width*height > h.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, width, height)
	}
	fb := newMemFramebuffer(h, width, height, h.format)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.live[fb] = struct{}{}
	h.current = fb
	return fb, nil
}

func (h *MemHost) Release(fb Framebuffer) {
	m, ok := fb.(*memFramebuffer)
	if !ok {
		return
	}
	m.mu.Lock()
	m.released = true
	m.mu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.live, m)
	if h.current == m {
		h.current = nil
	}
}

// Live returns the number of framebuffers not yet released.
func (h *MemHost) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// Current returns the most recently allocated live framebuffer, or nil.
func (h *MemHost) Current() Framebuffer {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return nil
	}
	return h.current
}

// SetSink routes every presented frame to s. A nil sink disables routing.
func (h *MemHost) SetSink(s Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sink = s
}

func (h *MemHost) presented(fb *memFramebuffer) error {
	h.mu.Lock()
	s := h.sink
	h.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.WriteFrame(fb)
}

func (h *MemHost) snapshotCurrent(dst []byte) (w, hgt int, format PixelFormat, stride int, ok bool) {
	h.mu.Lock()
	fb := h.current
	h.mu.Unlock()
	if fb == nil {
		return 0, 0, 0, 0, false
	}
	if need := fb.stride * fb.height; len(dst) < need {
		return fb.width, fb.height, fb.format, fb.stride, false
	}
	w, hgt, format, stride = fb.snapshotInto(dst)
	return w, hgt, format, stride, true
}
