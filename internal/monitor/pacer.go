package monitor

import (
	"context"
	"time"
)

// Pacer spaces out provider calls across symbol groups. The delay is part of
// the provider's rate contract, not an optimization: symbol groups must stay
// serialized even if fetching could be parallel.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedPacer enforces a minimum interval between consecutive Wait returns.
// The first Wait returns immediately.
type FixedPacer struct {
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewFixedPacer creates a pacer with the given minimum interval
func NewFixedPacer(interval time.Duration) *FixedPacer {
	return &FixedPacer{
		interval: interval,
		now:      time.Now,
	}
}

// Wait blocks until at least the configured interval has passed since the
// previous Wait returned, or the context is cancelled
func (p *FixedPacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}

	if !p.last.IsZero() {
		remaining := p.interval - p.now().Sub(p.last)
		if remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	p.last = p.now()
	return nil
}
