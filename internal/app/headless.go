package app

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig paces RunHeadless.
type HeadlessConfig struct {
	Hz    int
	Ticks int // 0 runs until ctx is done
	// Fast skips the ticker and runs ticks back to back.
	Fast bool
}

// InputSource yields the input for each tick.
type InputSource interface {
	Next() FrameInput
}

// RunHeadless ticks a at a fixed rate without a window. It returns nil after
// cfg.Ticks ticks, ctx.Err() on cancellation or the first tick error.
func RunHeadless(ctx context.Context, a *App, input InputSource, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("app: invalid headless hz: %d", cfg.Hz)
	}
	dt := d.Seconds()

	step := func() error {
		in := Idle()
		if input != nil {
			in = input.Next()
		}
		_, err := a.Tick(dt, in)
		return err
	}

	if cfg.Fast {
		for tick := 0; cfg.Ticks <= 0 || tick < cfg.Ticks; tick++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	}

	t := time.NewTicker(d)
	defer t.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := step(); err != nil {
				return err
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}
