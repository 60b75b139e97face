package partition

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"cellsim/internal/core"
	prng "cellsim/pkg/core"
	"cellsim/pkg/rules"
)

// Name is the registry key of the partition engine.
const Name = "partition"

// ErrRunning is returned by Start, Reset and Advance while workers are active.
var ErrRunning = errors.New("partition: scheduler already running")

// Scheduler is the barrier-synchronized engine over a double buffer.
type Scheduler struct {
	st       *core.State
	buf      *core.DoubleBuffer
	parts    []Partition
	rngs     []*prng.RNG
	lifetime Lifetime
	turns    uint64
	listener core.Listener

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	done    chan struct{}
	stop    atomic.Bool

	errMu sync.Mutex
	err   error

	// barrier
	arriveMu sync.Mutex
	arrived  int
	target   int
	release  []*semaphore.Weighted
}

// New builds a scheduler for st, seeding the grid from opts.Seed.
func New(st *core.State, opts core.Options) (*Scheduler, error) {
	parts, err := Partitions(st.Rows, st.Workers)
	if err != nil {
		return nil, err
	}
	lifetime, err := ParseLifetime(opts.Lifetime)
	if err != nil {
		return nil, err
	}
	root := prng.NewRNG(opts.Seed)
	rngs := make([]*prng.RNG, len(parts))
	for i := range rngs {
		rngs[i] = root.Stream(i)
	}
	s := &Scheduler{
		st:       st,
		buf:      core.NewDoubleBuffer(st.Rows, st.Cols),
		parts:    parts,
		rngs:     rngs,
		lifetime: lifetime,
		turns:    opts.Turns,
		listener: opts.Listener,
		done:     make(chan struct{}),
	}
	close(s.done)
	s.buf.Randomize(opts.Seed)
	return s, nil
}

func init() {
	core.Register(Name, func(st *core.State, opts core.Options) (core.Engine, error) {
		return New(st, opts)
	})
}

// Name returns the engine identifier.
func (s *Scheduler) Name() string { return Name }

// Lifetime returns the worker lifetime the scheduler runs with.
func (s *Scheduler) Lifetime() Lifetime { return s.lifetime }

// Partitions returns the row bands assigned to workers.
func (s *Scheduler) Partitions() []Partition { return s.parts }

// Buffer exposes the double buffer, mainly for tests that seed a pattern.
func (s *Scheduler) Buffer() *core.DoubleBuffer { return s.buf }

// Snapshot copies the last published generation into dst.
func (s *Scheduler) Snapshot(dst []uint32) []uint32 { return s.buf.Snapshot(dst) }

// Generation returns the number of published generations.
func (s *Scheduler) Generation() uint64 { return s.st.Generation() }

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
	s.buf.Randomize(seed)
	s.st.ResetCounters()
	return nil
}

// Start launches the workers. The barrier target is the number of workers
// that reported ready.
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

	switch s.lifetime {
	case Ephemeral:
		for range s.parts {
			s.st.WorkerStarted()
		}
		s.wg.Add(1)
		go s.drive(ctx)
	default:
		s.startPersistent(ctx)
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

func (s *Scheduler) startPersistent(ctx context.Context) {
	n := len(s.parts)
	s.release = make([]*semaphore.Weighted, n)
	for i := range s.release {
		sem := semaphore.NewWeighted(1)
		_ = sem.Acquire(context.Background(), 1)
		s.release[i] = sem
	}
	s.arrived = 0

	ready := make(chan struct{}, n)
	begin := make(chan struct{})
	s.wg.Add(n)
	for i := 0; i < n; i++ {
		go s.work(ctx, i, ready, begin)
	}
	started := 0
	for started < n {
		<-ready
		started++
	}
	s.arriveMu.Lock()
	s.target = started
	s.arriveMu.Unlock()
	close(begin)
}

func (s *Scheduler) work(ctx context.Context, i int, ready chan<- struct{}, begin <-chan struct{}) {
	defer s.wg.Done()
	s.st.WorkerStarted()
	defer s.st.WorkerStopped()
	ready <- struct{}{}
	<-begin

	for !s.stop.Load() && ctx.Err() == nil {
		if err := s.compute(i); err != nil {
			s.fail(err)
			return
		}
		if !s.arrive(ctx, i) {
			return
		}
	}
}

// arrive is the generation barrier. The last worker to arrive resets the
// counter, publishes the generation and releases everyone else; the others
// park on their own semaphore until then.
func (s *Scheduler) arrive(ctx context.Context, i int) bool {
	s.arriveMu.Lock()
	s.arrived++
	if s.arrived < s.target {
		s.arriveMu.Unlock()
		return s.release[i].Acquire(ctx, 1) == nil
	}
	s.arrived = 0
	s.arriveMu.Unlock()

	ok := s.publish(ctx)
	for j, sem := range s.release {
		if j != i {
			sem.Release(1)
		}
	}
	return ok
}

// drive owns the ephemeral pool; its workers count as live for the whole run.
func (s *Scheduler) drive(ctx context.Context) {
	defer s.wg.Done()
	defer func() {
		for range s.parts {
			s.st.WorkerStopped()
		}
	}()
	for !s.stop.Load() && ctx.Err() == nil {
		if err := s.spawn(ctx); err != nil {
			if ctx.Err() == nil {
				s.fail(err)
			}
			return
		}
		if !s.publish(ctx) {
			return
		}
	}
}

// spawn runs one worker per partition and joins them.
func (s *Scheduler) spawn(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for i := range s.parts {
		g.Go(func() error { return s.compute(i) })
	}
	return g.Wait()
}

func (s *Scheduler) compute(i int) error {
	cur, next := s.buf.Current(), s.buf.Next()
	p := s.st.Params()
	rng := s.rngs[i]
	part := s.parts[i]
	for r := part.Start; r < part.End; r++ {
		for c := 0; c < cur.Cols; c++ {
			v, err := rules.Evaluate(cur, r, c, p, rng)
			if err != nil {
				return err
			}
			next.Store(cur.Index(r, c), v)
		}
	}
	return nil
}

// publish swaps the buffers, bumps the generation, notifies the listener and
// sleeps for the configured delay. It reports false once the run should end.
func (s *Scheduler) publish(ctx context.Context) bool {
	s.buf.Swap()
	gen := s.st.AdvanceGeneration()
	if s.listener != nil {
		s.listener.GenerationDone(gen)
	}
	if s.turns > 0 && gen >= s.turns {
		s.stop.Store(true)
		s.cancel()
		return false
	}
	return s.st.Pace.Sleep(ctx)
}

// Advance computes exactly one generation with one goroutine per partition
// and publishes it without sleeping. It is only valid while stopped.
func (s *Scheduler) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunning
	}
	var g errgroup.Group
	for i := range s.parts {
		g.Go(func() error { return s.compute(i) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.buf.Swap()
	gen := s.st.AdvanceGeneration()
	if s.listener != nil {
		s.listener.GenerationDone(gen)
	}
	return nil
}
