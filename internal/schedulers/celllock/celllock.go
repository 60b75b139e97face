// Package celllock advances the grid asynchronously. Each worker repeatedly
// picks a random cell, locks the cells its update touches in ascending index
// order, and rewrites the cell in place. There is no generation boundary.
package celllock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"cellsim/internal/core"
	prng "cellsim/pkg/core"
	"cellsim/pkg/rules"
)

// Name is the registry key of the cell-lock engine.
const Name = "celllock"

// ErrRunning is returned by Start and Reset while workers are active.
var ErrRunning = errors.New("celllock: scheduler already running")

// Observer sees every lock set while it is held. Locked runs right after the
// set is acquired and Unlocking right before it is released.
type Observer interface {
	Locked(worker int, idx []int)
	Unlocking(worker int, idx []int)
}

// Scheduler is the fine-grained locking engine over a single grid.
type Scheduler struct {
	st       *core.State
	grid     *core.Grid
	locks    *core.LockTable
	rngs     []*prng.RNG
	turns    uint64
	listener core.Listener
	observer Observer

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	done    chan struct{}
	stop    atomic.Bool

	errMu sync.Mutex
	err   error
}

// New builds a scheduler for st, seeding the grid from opts.Seed. Turns, when
// set, counts full-grid sweeps.
func New(st *core.State, opts core.Options) (*Scheduler, error) {
	grid := core.NewGrid(st.Rows, st.Cols)
	grid.Randomize(opts.Seed)
	root := prng.NewRNG(opts.Seed)
	rngs := make([]*prng.RNG, st.Workers)
	for i := range rngs {
		rngs[i] = root.Stream(i)
	}
	s := &Scheduler{
		st:       st,
		grid:     grid,
		locks:    core.NewLockTable(grid.Len()),
		rngs:     rngs,
		turns:    opts.Turns,
		listener: opts.Listener,
		done:     make(chan struct{}),
	}
	close(s.done)
	return s, nil
}

func init() {
	core.Register(Name, func(st *core.State, opts core.Options) (core.Engine, error) {
		return New(st, opts)
	})
}

// SetObserver installs o. It must be called before Start.
func (s *Scheduler) SetObserver(o Observer) { s.observer = o }

// Name returns the engine identifier.
func (s *Scheduler) Name() string { return Name }

// Grid exposes the live grid.
func (s *Scheduler) Grid() *core.Grid { return s.grid }

// Snapshot copies the live grid cell by cell. Cells may come from different
// moments of the run.
func (s *Scheduler) Snapshot(dst []uint32) []uint32 { return s.grid.CopyTo(dst) }

// Generation approximates progress as completed full-grid sweeps. It is meant
// for display only.
func (s *Scheduler) Generation() uint64 {
	return s.st.Updates() / uint64(s.grid.Len())
}

// Done is closed once every worker of the current run has exited.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the first worker error of the last run.
func (s *Scheduler) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Reset re-randomizes the grid and zeroes the counters.
func (s *Scheduler) Reset(seed int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunning
	}
	s.grid.Randomize(seed)
	s.st.ResetCounters()
	return nil
}

// Start launches one goroutine per configured worker and returns once all of
// them are running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stop.Store(false)
	s.errMu.Lock()
	s.err = nil
	s.errMu.Unlock()
	s.done = make(chan struct{})
	s.running = true

	n := len(s.rngs)
	ready := make(chan struct{}, n)
	s.wg.Add(n)
	for i := 0; i < n; i++ {
		go s.work(ctx, i, ready)
	}
	for i := 0; i < n; i++ {
		<-ready
	}

	done := s.done
	go func() {
		s.wg.Wait()
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
	}()
	return nil
}

// Stop asks every worker to exit, waits for them and returns the first worker
// error.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	s.stop.Store(true)
	if cancel != nil {
		cancel()
	}
	<-done
	return s.Err()
}

func (s *Scheduler) fail(err error) {
	s.errMu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.errMu.Unlock()
	s.stop.Store(true)
	s.cancel()
}

func (s *Scheduler) work(ctx context.Context, i int, ready chan<- struct{}) {
	defer s.wg.Done()
	s.st.WorkerStarted()
	defer s.st.WorkerStopped()
	ready <- struct{}{}

	rng := s.rngs[i]
	rows, cols := s.grid.Dims()
	cells := uint64(s.grid.Len())
	var fp []int
	for !s.stop.Load() && ctx.Err() == nil {
		if err := s.update(i, rng, rows, cols, &fp); err != nil {
			s.fail(err)
			return
		}
		n := s.st.AddUpdates(1)
		if n%cells == 0 && s.listener != nil {
			s.listener.GenerationDone(n / cells)
		}
		if s.turns > 0 && n >= s.turns*cells {
			s.stop.Store(true)
			s.cancel()
			return
		}
		if !s.st.Pace.Sleep(ctx) {
			return
		}
	}
}

// update rewrites one random cell while holding its footprint.
func (s *Scheduler) update(i int, rng *prng.RNG, rows, cols int, fp *[]int) error {
	r, c := rng.IntN(rows), rng.IntN(cols)
	*fp = rules.Footprint(rows, cols, r, c, s.st.Border, *fp)
	s.locks.Lock(*fp)
	if s.observer != nil {
		s.observer.Locked(i, *fp)
	}
	v, err := rules.Evaluate(s.grid, r, c, s.st.Params(), rng)
	if err == nil {
		s.grid.Store(s.grid.Index(r, c), v)
	}
	if s.observer != nil {
		s.observer.Unlocking(i, *fp)
	}
	s.locks.Unlock(*fp)
	return err
}
