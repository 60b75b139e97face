package core

import (
	"context"
	"sync/atomic"
	"time"
)

const (
	// MinDelay is the floor below which Faster stops shortening the delay.
	MinDelay = 11 * time.Microsecond
	// DefaultBarrierDelay is the pause after each synchronous generation.
	DefaultBarrierDelay = 5 * time.Millisecond
	// DefaultCellDelay is the pause after each asynchronous cell update.
	DefaultCellDelay = 100 * time.Microsecond
)

// Pace is the delay workers sleep between units of work. It is safe to
// adjust from the input goroutine while workers read it.
type Pace struct {
	delay atomic.Int64
}

// NewPace constructs a Pace starting at d.
func NewPace(d time.Duration) *Pace {
	p := &Pace{}
	p.Set(d)
	return p
}

// Delay returns the current delay.
func (p *Pace) Delay() time.Duration { return time.Duration(p.delay.Load()) }

// Set replaces the delay. Negative values are treated as zero.
func (p *Pace) Set(d time.Duration) {
	if d < 0 {
		d = 0
	}
	p.delay.Store(int64(d))
}

// Faster shortens the delay by a tenth while it is above MinDelay.
func (p *Pace) Faster() time.Duration {
	for {
		old := p.delay.Load()
		d := time.Duration(old)
		if d <= MinDelay {
			return d
		}
		d = d * 9 / 10
		if p.delay.CompareAndSwap(old, int64(d)) {
			return d
		}
	}
}

// Slower lengthens the delay by a tenth. A zero delay becomes MinDelay.
func (p *Pace) Slower() time.Duration {
	for {
		old := p.delay.Load()
		d := time.Duration(old) * 11 / 10
		if d < MinDelay {
			d = MinDelay
		}
		if p.delay.CompareAndSwap(old, int64(d)) {
			return d
		}
	}
}

// Sleep waits for the current delay or until ctx is done. It reports false
// when ctx ended the wait.
func (p *Pace) Sleep(ctx context.Context) bool {
	d := p.Delay()
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
