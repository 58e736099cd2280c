//go:build cgo

package hal

import (
	"context"
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"meaningfield/internal/buildinfo"
)

// Window shows the host's current framebuffer in a resizable desktop
// window and steps the renderer from ebiten's update loop. Run must be
// called from the main goroutine and blocks until the window closes.
type Window struct {
	Host  *MemHost
	Title string
	// Width and Height are the initial surface size in framebuffer pixels.
	Width, Height int
	// Scale is window pixels per framebuffer pixel.
	Scale int
	Hz    int
	// Frames closes the window after N steps; zero runs until closed.
	Frames uint64

	// OnResize is called from the update loop when the window's layout
	// size changes, in framebuffer pixels.
	OnResize func(w, h int)
	OnKey    func(KeyEvent)
}

func (w *Window) Run(ctx context.Context, step StepFunc) error {
	if w.Host == nil {
		return errors.New("hal: window has no host")
	}
	scale := max(w.Scale, 1)
	hz := w.Hz
	if hz <= 0 {
		hz = 60
	}
	title := w.Title
	if title == "" {
		title = "meaningfield"
	}

	g := &hostGame{w: w, ctx: ctx, step: step, scale: scale, clock: newFrameClock()}
	ebiten.SetWindowTitle(title + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(max(w.Width, 1)*scale, max(w.Height, 1)*scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(hz)

	err := ebiten.RunGame(g)
	if g.err != nil {
		return g.err
	}
	if errors.Is(err, ebiten.Termination) {
		return ctx.Err()
	}
	return err
}

type hostGame struct {
	w     *Window
	ctx   context.Context
	step  StepFunc
	scale int
	clock *frameClock

	frames  uint64
	layoutW int
	layoutH int
	err     error

	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
}

func (g *hostGame) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	for _, ev := range pollKeys() {
		if ev.Code == KeyEscape {
			return ebiten.Termination
		}
		if g.w.OnKey != nil {
			g.w.OnKey(ev)
		}
	}
	if err := g.step(g.clock.step()); err != nil {
		g.err = err
		return ebiten.Termination
	}
	g.frames++
	if g.w.Frames > 0 && g.frames >= g.w.Frames {
		return ebiten.Termination
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.w.Host.Current()
	if fb == nil {
		return
	}
	width, height := fb.Width(), fb.Height()
	if width <= 0 || height <= 0 {
		return
	}
	if g.img == nil || g.img.Bounds().Dx() != width || g.img.Bounds().Dy() != height {
		g.img = image.NewRGBA(image.Rect(0, 0, width, height))
		g.scratch = make([]byte, fb.StrideBytes()*height)
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(width, height)
	}

	sw, sh, format, stride, ok := g.w.Host.snapshotCurrent(g.scratch)
	if !ok || sw != width || sh != height {
		return
	}
	toRGBA(g.img.Pix, g.scratch, format, sw, sh, stride)

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	lw := max(outsideWidth/g.scale, 1)
	lh := max(outsideHeight/g.scale, 1)
	if lw != g.layoutW || lh != g.layoutH {
		g.layoutW, g.layoutH = lw, lh
		if g.w.OnResize != nil {
			g.w.OnResize(lw, lh)
		}
	}
	return lw, lh
}
