package util

import (
	"context"
	"sync"
	"time"
)

// Pacer spaces out sequential operations by a fixed interval. Unlike a
// ticker, the first call never waits.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until interval has passed since the previous Wait returned.
// If ctx ends first the slot is not consumed and ctx.Err() is returned.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() && p.interval > 0 {
		if wait := p.interval - time.Since(p.last); wait > 0 {
			if err := Sleep(ctx, wait); err != nil {
				return err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	p.last = time.Now()
	return nil
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
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
