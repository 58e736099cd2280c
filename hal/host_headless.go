package hal

import (
	"context"
	"fmt"
	"time"
)

// Ticker paces steps with a wall-clock ticker and no window.
type Ticker struct {
	Hz int
	// Frames stops the scheduler after N steps; zero runs until ctx is done.
	Frames uint64
}

func (t Ticker) Run(ctx context.Context, step StepFunc) error {
	if t.Hz <= 0 {
		t.Hz = 60
	}
	d := time.Second / time.Duration(t.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", t.Hz)
	}
	tk := time.NewTicker(d)
	defer tk.Stop()

	clock := newFrameClock()
	clock.step()
	var n uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
			if err := step(clock.step()); err != nil {
				return err
			}
			n++
			if t.Frames > 0 && n >= t.Frames {
				return nil
			}
		}
	}
}

// Offline runs Frames steps back to back with a fixed Step, for rendering
// to files.
type Offline struct {
	Frames uint64
	Step   time.Duration
}

func (o Offline) Run(ctx context.Context, step StepFunc) error {
	if o.Step <= 0 {
		o.Step = time.Second / 60
	}
	for i := uint64(0); i < o.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(o.Step); err != nil {
			return err
		}
	}
	return nil
}
