// Package watch keeps re-running the calculator while the wall clock moves.
package watch

import (
	"context"
	"errors"
	"time"

	"remcalc/internal/sleepcycle"
)

const DefaultInterval = 15 * time.Second

type Options struct {
	Interval time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	// Pinned fixes the sleep start; nil follows the clock.
	Pinned *int
	// Tick replaces the internal ticker; used by tests.
	Tick <-chan time.Time
}

// Run calls fn with the current sleep start right away and again whenever it
// changes, until ctx is done or fn returns an error. A pinned start never
// changes, so fn runs once and Run waits for ctx.
func Run(ctx context.Context, opts Options, fn func(start int) error) error {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	start := sleepcycle.MinutesOfDay(now())
	if opts.Pinned != nil {
		start = sleepcycle.Mod(*opts.Pinned, sleepcycle.MinutesPerDay)
	}
	if err := fn(start); err != nil {
		return err
	}

	tick := opts.Tick
	if tick == nil {
		interval := opts.Interval
		if interval <= 0 {
			interval = DefaultInterval
		}
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case _, ok := <-tick:
			if !ok {
				return nil
			}
			if opts.Pinned != nil {
				continue
			}
			next := sleepcycle.FollowNow(start, sleepcycle.MinutesOfDay(now()))
			if next == start {
				continue
			}
			start = next
			if err := fn(start); err != nil {
				return err
			}
		}
	}
}
