package core

import (
	"fmt"
	"sync/atomic"
	"time"

	"cellsim/pkg/rules"
)

// State is the configuration and counters shared by reference between the
// controller, the workers and any renderer. Mutable fields are atomics, so a
// reader sees either the old or the new value, at most one generation stale.
type State struct {
	Rows, Cols int
	Workers    int
	Border     rules.BorderPolicy
	Pace       *Pace

	rule       atomic.Int32
	color      atomic.Bool
	gridLines  atomic.Bool
	generation atomic.Uint64
	updates    atomic.Uint64
	live       atomic.Int32
}

// NewState validates the configuration and returns a State ready to hand to
// an engine.
func NewState(rows, cols, workers int, border rules.BorderPolicy, rule rules.Rule, delay time.Duration) (*State, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("core: grid %dx%d must be non-empty", rows, cols)
	}
	if workers <= 0 {
		return nil, fmt.Errorf("core: worker count %d must be positive", workers)
	}
	s := &State{Rows: rows, Cols: cols, Workers: workers, Border: border, Pace: NewPace(delay)}
	if err := s.SetRule(rule); err != nil {
		return nil, err
	}
	return s, nil
}

// Rule returns the active rule.
func (s *State) Rule() rules.Rule { return rules.Rule(s.rule.Load()) }

// SetRule switches the active rule. Unknown rules are rejected so workers
// never read one.
func (s *State) SetRule(r rules.Rule) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %d", rules.ErrUnknownRule, int(r))
	}
	s.rule.Store(int32(r))
	return nil
}

// Color reports whether cells carry their age.
func (s *State) Color() bool { return s.color.Load() }

// SetColor enables or disables age coloring.
func (s *State) SetColor(on bool) { s.color.Store(on) }

// ToggleColor flips age coloring and returns the new value.
func (s *State) ToggleColor() bool {
	for {
		old := s.color.Load()
		if s.color.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// GridLines reports whether renderers should draw cell borders.
func (s *State) GridLines() bool { return s.gridLines.Load() }

// ToggleGridLines flips the grid-line hint and returns the new value.
func (s *State) ToggleGridLines() bool {
	for {
		old := s.gridLines.Load()
		if s.gridLines.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Params returns the values a worker needs for one update.
func (s *State) Params() rules.Params {
	return rules.Params{Rule: s.Rule(), Border: s.Border, Color: s.Color()}
}

// Generation returns the number of completed generations.
func (s *State) Generation() uint64 { return s.generation.Load() }

// AdvanceGeneration increments the generation counter and returns the new value.
func (s *State) AdvanceGeneration() uint64 { return s.generation.Add(1) }

// AddUpdates records n single-cell updates.
func (s *State) AddUpdates(n uint64) uint64 { return s.updates.Add(n) }

// Updates returns the number of single-cell updates recorded so far.
func (s *State) Updates() uint64 { return s.updates.Load() }

// ResetCounters zeroes the generation and update counters.
func (s *State) ResetCounters() {
	s.generation.Store(0)
	s.updates.Store(0)
}

// WorkerStarted and WorkerStopped bracket a worker's membership in a live run.
func (s *State) WorkerStarted() { s.live.Add(1) }

func (s *State) WorkerStopped() { s.live.Add(-1) }

// LiveWorkers returns the number of running workers.
func (s *State) LiveWorkers() int { return int(s.live.Load()) }
