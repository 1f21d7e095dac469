package sequence

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// Gate allows one call at a time through to a provider and optionally spaces
// consecutive calls by a minimum interval.
type Gate struct {
	sem         *semaphore.Weighted
	minInterval time.Duration
	last        time.Time // guarded by sem
}

// NewGate returns a gate with a concurrency cap of one.
func NewGate(minInterval time.Duration) *Gate {
	return &Gate{
		sem:         semaphore.NewWeighted(1),
		minInterval: minInterval,
	}
}

// Do waits for the gate and runs fn. Cancellation of ctx while waiting is
// returned as the error; fn itself is responsible for honoring ctx once running.
func (g *Gate) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	if g.minInterval > 0 && !g.last.IsZero() {
		if wait := g.minInterval - time.Since(g.last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	defer func() { g.last = time.Now() }()

	return fn(ctx)
}
