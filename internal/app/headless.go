package app

import (
	"context"
	"log"
	"time"

	"cellsim/internal/control"
)

// RunHeadless logs progress every interval until ctx ends, the user quits,
// the run finishes or limit elapses (a zero limit never elapses).
func RunHeadless(ctx context.Context, c *control.Controller, every, limit time.Duration) error {
	if every <= 0 {
		every = time.Second
	}
	tick := time.NewTicker(every)
	defer tick.Stop()

	var deadline <-chan time.Time
	if limit > 0 {
		t := time.NewTimer(limit)
		defer t.Stop()
		deadline = t.C
	}

	start := time.Now()
	var lastGen uint64
	last := start
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.Done():
			return nil
		case <-deadline:
			return nil
		case <-c.Finished():
			log.Printf("finished: generation %d in %s", c.Generation(), time.Since(start).Round(time.Millisecond))
			return c.Err()
		case now := <-tick.C:
			gen := c.Generation()
			if gen < lastGen {
				lastGen = 0
			}
			rate := float64(gen-lastGen) / now.Sub(last).Seconds()
			log.Printf("generation %d (%.1f/s), live threads %d, delay %s",
				gen, rate, c.LiveWorkers(), c.State().Pace.Delay())
			lastGen, last = gen, now
		}
	}
}
