// Package retry decides how long the daemon waits before re-invoking a whole
// newsletter run that failed on a transient provider error. Pipeline stages
// never retry on their own.
package retry

import (
	"context"
	"time"

	"git.home.luguber.info/inful/newsletter/internal/config"
)

// Policy is an immutable backoff schedule.
type Policy struct {
	Mode       config.RetryBackoffMode
	Initial    time.Duration // delay before the first retry
	Max        time.Duration // ceiling for linear and exponential growth
	MaxRetries int           // re-invocations allowed after the first failure
}

// DefaultPolicy matches the daemon.retry defaults of the configuration.
func DefaultPolicy() Policy {
	return Policy{
		Mode:       config.RetryBackoffExponential,
		Initial:    30 * time.Second,
		Max:        10 * time.Minute,
		MaxRetries: 3,
	}
}

// FromConfig builds a policy from the daemon retry section. Unset durations
// and unknown modes keep the defaults; a negative retry count disables retries.
func FromConfig(rc config.RetryConfig) Policy {
	p := DefaultPolicy()
	switch rc.Backoff {
	case config.RetryBackoffFixed, config.RetryBackoffLinear, config.RetryBackoffExponential:
		p.Mode = rc.Backoff
	}
	if rc.Initial > 0 {
		p.Initial = rc.Initial
	}
	if rc.Max > 0 {
		p.Max = rc.Max
	}
	p.MaxRetries = max(rc.MaxRetries, 0)
	p.Initial = min(p.Initial, p.Max)
	return p
}

// Delay returns the wait before retry number n (the first retry is 1).
func (p Policy) Delay(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case config.RetryBackoffFixed:
		return p.Initial
	case config.RetryBackoffExponential:
		d = p.Initial
		for i := 1; i < n && d < p.Max; i++ {
			d *= 2
		}
	default:
		d = time.Duration(n) * p.Initial
	}
	if d <= 0 || d > p.Max {
		return p.Max
	}
	return d
}

// Wait sleeps for Delay(n) or until ctx is done, whichever comes first.
func (p Policy) Wait(ctx context.Context, n int) error {
	d := p.Delay(n)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
