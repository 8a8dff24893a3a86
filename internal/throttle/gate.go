// Package throttle paces outbound calls and budgets inbound requests.
package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate admits one caller per interval. The first Wait returns immediately,
// each later Wait blocks until a full interval has passed since the previous
// admission.
type Gate struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewGate creates a fixed-interval gate. A non-positive interval yields a
// gate that never blocks.
func NewGate(interval time.Duration) *Gate {
	if interval <= 0 {
		return &Gate{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Gate{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Wait blocks until the gate admits the caller or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	if g == nil {
		return ctx.Err()
	}
	return g.limiter.Wait(ctx)
}

// Interval returns the configured spacing between admissions.
func (g *Gate) Interval() time.Duration {
	if g == nil {
		return 0
	}
	return g.interval
}
