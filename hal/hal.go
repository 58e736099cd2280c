// Package hal is the host surface the renderer draws into: framebuffers, the
// schedulers that pace frames, and the sinks that persist presented frames.
package hal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrReleased is returned when presenting a framebuffer after Release.
var ErrReleased = errors.New("hal: framebuffer released")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb, little endian.
	PixelFormatRGB565 PixelFormat = iota + 1
	// PixelFormatRGBA8888 is 32bpp, byte order R, G, B, A.
	PixelFormatRGBA8888
)

// BytesPerPixel returns the pixel size, or 0 for an unknown format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatRGB565:
		return 2
	case PixelFormatRGBA8888:
		return 4
	}
	return 0
}

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatRGB565:
		return "rgb565"
	case PixelFormatRGBA8888:
		return "rgba8888"
	}
	return fmt.Sprintf("PixelFormat(%d)", uint8(f))
}

// ParsePixelFormat accepts "rgb565" and "rgba8888" (or "rgba").
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch s {
	case "rgb565":
		return PixelFormatRGB565, nil
	case "rgba8888", "rgba", "":
		return PixelFormatRGBA8888, nil
	}
	return 0, fmt.Errorf("unknown pixel format %q", s)
}

// Framebuffer is a simple pixel buffer plus a "present" hook.
//
// Writers fill Buffer and call Present; readers only ever see presented
// frames.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Host allocates framebuffers for a visual surface.
type Host interface {
	NewFramebuffer(width, height int) (Framebuffer, error)
	Release(fb Framebuffer)
}

// StepFunc advances the renderer by dt. A non-nil error stops the scheduler.
type StepFunc func(dt time.Duration) error

// Scheduler paces frames by calling step until ctx is done, the step
// fails, or the scheduler's own limit is reached.
type Scheduler interface {
	Run(ctx context.Context, step StepFunc) error
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyEscape
	KeySpace
	KeyEnter
	KeyUp
	KeyDown
)

// KeyEvent is a keyboard event from the window scheduler.
type KeyEvent struct {
	Code KeyCode
	Rune rune
}
