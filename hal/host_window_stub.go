//go:build !cgo

package hal

import (
	"context"
	"errors"
)

// Window is unavailable without cgo; Run always fails.
type Window struct {
	Host          *MemHost
	Title         string
	Width, Height int
	Scale         int
	Hz            int
	Frames        uint64
	OnResize      func(w, h int)
	OnKey         func(KeyEvent)
}

func (w *Window) Run(context.Context, StepFunc) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
