package hal

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/draw"
)

// Sink receives every presented frame.
type Sink interface {
	WriteFrame(fb Framebuffer) error
	Close() error
}

// scaleFrame returns src magnified by scale with bilinear filtering.
func scaleFrame(src *image.RGBA, scale int) *image.RGBA {
	if scale <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// PNGSink writes each frame as frame-NNNNN.png under Dir.
type PNGSink struct {
	Dir   string
	Scale int

	mu sync.Mutex
	n  int
}

func NewPNGSink(dir string, scale int) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating frame directory %s: %w", dir, err)
	}
	return &PNGSink{Dir: dir, Scale: scale}, nil
}

func (s *PNGSink) WriteFrame(fb Framebuffer) error {
	if fb.Width() <= 0 || fb.Height() <= 0 {
		return nil
	}
	img := scaleFrame(Snapshot(fb), s.Scale)

	s.mu.Lock()
	name := filepath.Join(s.Dir, fmt.Sprintf("frame-%05d.png", s.n))
	s.n++
	s.mu.Unlock()

	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return f.Close()
}

// Written returns the number of frames written so far.
func (s *PNGSink) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

func (s *PNGSink) Close() error { return nil }

// GIFSink collects frames and writes one animated GIF on Close.
type GIFSink struct {
	Path  string
	Scale int
	// Delay is the per-frame delay in 100ths of a second.
	Delay int

	mu  sync.Mutex
	out gif.GIF
}

func NewGIFSink(path string, scale, delay int) *GIFSink {
	if delay <= 0 {
		delay = 4
	}
	return &GIFSink{Path: path, Scale: scale, Delay: delay}
}

func (s *GIFSink) WriteFrame(fb Framebuffer) error {
	if fb.Width() <= 0 || fb.Height() <= 0 {
		return nil
	}
	src := scaleFrame(Snapshot(fb), s.Scale)
	pal := image.NewPaletted(src.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(pal, pal.Bounds(), src, image.Point{})

	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.out.Image); n > 0 && s.out.Image[0].Bounds() != pal.Bounds() {
		return fmt.Errorf("gif frame %d is %v, first frame was %v", n, pal.Bounds(), s.out.Image[0].Bounds())
	}
	s.out.Image = append(s.out.Image, pal)
	s.out.Delay = append(s.out.Delay, s.Delay)
	return nil
}

// Frames returns the number of frames collected so far.
func (s *GIFSink) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.out.Image)
}

func (s *GIFSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.out.Image) == 0 {
		return nil
	}
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", s.Path, err)
	}
	if err := gif.EncodeAll(f, &s.out); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", s.Path, err)
	}
	return f.Close()
}
