// Package pacing spaces out platform interactions to mimic human behavior.
// Every per-account and per-message operation waits through a Pacer between
// actions; the delays are the design, not an optimization target.
package pacing

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Pacer blocks between consecutive platform interactions.
type Pacer interface {
	// Wait blocks for the pacing interval or until ctx is done.
	Wait(ctx context.Context) error
}

// Uniform waits a uniformly random duration in [Min, Max] on every call.
type Uniform struct {
	Min time.Duration
	Max time.Duration
}

// NewUniform creates a uniform random pacer.
func NewUniform(min, max time.Duration) *Uniform {
	if max < min {
		min, max = max, min
	}
	return &Uniform{Min: min, Max: max}
}

// Wait blocks for a random interval within the configured bounds.
func (u *Uniform) Wait(ctx context.Context) error {
	delay := u.Min
	if span := u.Max - u.Min; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span) + 1))
	}
	return sleep(ctx, delay)
}

// None performs no waiting. Used by tests.
type None struct{}

func (None) Wait(ctx context.Context) error { return ctx.Err() }

// Budget caps the number of interactions per window on top of an inner
// pacer. When the cap is reached, Wait blocks until the window rolls over.
// The default guidance is at most 100 interactions per hour.
type Budget struct {
	inner       Pacer
	maxPerWin   int
	window      time.Duration
	mu          sync.Mutex
	used        int
	windowStart time.Time
}

// NewBudget wraps inner with a per-window interaction cap.
func NewBudget(inner Pacer, maxPerWindow int, window time.Duration) *Budget {
	return &Budget{
		inner:       inner,
		maxPerWin:   maxPerWindow,
		window:      window,
		windowStart: time.Now(),
	}
}

// Wait consumes one interaction from the budget, blocking through the window
// boundary when the budget is spent, then delegates to the inner pacer.
func (b *Budget) Wait(ctx context.Context) error {
	b.mu.Lock()
	now := time.Now()
	if now.Sub(b.windowStart) >= b.window {
		b.windowStart = now
		b.used = 0
	}
	if b.used >= b.maxPerWin {
		remaining := b.window - now.Sub(b.windowStart)
		b.mu.Unlock()
		if err := sleep(ctx, remaining); err != nil {
			return err
		}
		b.mu.Lock()
		b.windowStart = time.Now()
		b.used = 0
	}
	b.used++
	b.mu.Unlock()

	return b.inner.Wait(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
