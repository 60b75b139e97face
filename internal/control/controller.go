// Package control owns a running simulation: the shared state, the engine
// advancing it, and the operations a front end maps user input onto.
package control

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"cellsim/internal/core"
	"cellsim/internal/schedulers/celllock"
	"cellsim/internal/schedulers/partition"
	"cellsim/pkg/rules"
)

var (
	// ErrClosed is returned by operations on a controller that was shut down.
	ErrClosed = errors.New("control: controller shut down")
	// ErrUnknownStrategy is returned for an engine name that is not registered.
	ErrUnknownStrategy = errors.New("control: unknown strategy")
)

// Config is everything needed to build a Controller. A zero Delay selects
// the strategy default; a negative Delay disables pausing.
type Config struct {
	Rows, Cols int
	Workers    int
	Strategy   string
	Lifetime   string
	Rule       rules.Rule
	Border     rules.BorderPolicy
	Color      bool
	Delay      time.Duration
	Seed       int64
	Turns      uint64
	Listener   core.Listener
}

// DefaultDelay returns the pause used by strategy when none is configured.
func DefaultDelay(strategy string) time.Duration {
	if strategy == celllock.Name {
		return core.DefaultCellDelay
	}
	return core.DefaultBarrierDelay
}

var _ core.Controls = (*Controller)(nil)

type errorer interface {
	Err() error
}

// Controller owns the state and the engine of one simulation.
type Controller struct {
	cfg Config
	st  *core.State
	eng core.Engine

	mu     sync.Mutex
	ctx    context.Context
	seed   int64
	closed bool

	quit     chan struct{}
	quitOnce sync.Once
}

// New validates cfg, allocates the grid and builds the engine. Nothing runs
// until Start.
func New(cfg Config) (*Controller, error) {
	if cfg.Strategy == "" {
		cfg.Strategy = partition.Name
	}
	factory, ok := core.Engines()[cfg.Strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownStrategy, cfg.Strategy, core.EngineNames())
	}
	if cfg.Delay == 0 {
		cfg.Delay = DefaultDelay(cfg.Strategy)
	}
	st, err := core.NewState(cfg.Rows, cfg.Cols, cfg.Workers, cfg.Border, cfg.Rule, cfg.Delay)
	if err != nil {
		return nil, err
	}
	st.SetColor(cfg.Color)
	eng, err := factory(st, core.Options{
		Seed:     cfg.Seed,
		Lifetime: cfg.Lifetime,
		Turns:    cfg.Turns,
		Listener: cfg.Listener,
	})
	if err != nil {
		return nil, err
	}
	return &Controller{
		cfg:  cfg,
		st:   st,
		eng:  eng,
		ctx:  context.Background(),
		seed: cfg.Seed,
		quit: make(chan struct{}),
	}, nil
}

// Start launches the workers. ctx bounds this run and every run started by a
// later Reset.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.ctx = ctx
	return c.eng.Start(ctx)
}

// Reset stops and joins the workers, reseeds the grid and restarts them. The
// counters start again from zero.
func (c *Controller) Reset(seed int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err := c.eng.Stop(); err != nil {
		return err
	}
	if err := c.eng.Reset(seed); err != nil {
		return err
	}
	c.seed = seed
	return c.eng.Start(c.ctx)
}

// Reseed resets with the next seed in sequence.
func (c *Controller) Reseed() error {
	c.mu.Lock()
	seed := c.seed + 1
	c.mu.Unlock()
	return c.Reset(seed)
}

// Shutdown stops the workers and waits for them. It is safe to call more
// than once.
func (c *Controller) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Quit()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.eng.Stop()
}

// Quit signals front ends that the user asked to leave.
func (c *Controller) Quit() {
	c.quitOnce.Do(func() { close(c.quit) })
}

// Done is closed once Quit or Shutdown has been called.
func (c *Controller) Done() <-chan struct{} { return c.quit }

// Finished is closed when the current run's workers have all exited, for
// example after the configured number of turns.
func (c *Controller) Finished() <-chan struct{} { return c.eng.Done() }

// Err returns the first worker error of the current run, if the engine
// records one.
func (c *Controller) Err() error {
	if e, ok := c.eng.(errorer); ok {
		return e.Err()
	}
	return nil
}

// SetRule switches the rule the workers apply from their next update on.
func (c *Controller) SetRule(r rules.Rule) error { return c.st.SetRule(r) }

// ToggleColorMode flips age coloring and returns the new value.
func (c *Controller) ToggleColorMode() bool { return c.st.ToggleColor() }

// ToggleGridLines flips the grid-line hint and returns the new value.
func (c *Controller) ToggleGridLines() bool { return c.st.ToggleGridLines() }

// SpeedUp shortens the worker delay.
func (c *Controller) SpeedUp() time.Duration { return c.st.Pace.Faster() }

// SlowDown lengthens the worker delay.
func (c *Controller) SlowDown() time.Duration { return c.st.Pace.Slower() }

// Snapshot copies the grid into dst. For the partition strategy the copy is
// a whole generation; for cell locking it is a cell-by-cell read of the live
// grid.
func (c *Controller) Snapshot(dst []uint32) []uint32 { return c.eng.Snapshot(dst) }

// Dims returns the grid dimensions.
func (c *Controller) Dims() (int, int) { return c.st.Rows, c.st.Cols }

// LiveWorkers returns the number of running worker goroutines.
func (c *Controller) LiveWorkers() int { return c.st.LiveWorkers() }

// Generation returns the engine's generation count.
func (c *Controller) Generation() uint64 { return c.eng.Generation() }

// State exposes the shared state for renderers that read hints from it.
func (c *Controller) State() *core.State { return c.st }

// Strategy returns the engine name.
func (c *Controller) Strategy() string { return c.eng.Name() }

// Seed returns the seed of the current run.
func (c *Controller) Seed() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seed
}

// Parameters describes the running simulation for a state pane.
func (c *Controller) Parameters() core.ParameterSnapshot {
	rule := c.st.Rule()
	engine := []core.Parameter{
		{Key: "strategy", Label: "Strategy", Type: core.ParamTypeText, Value: c.eng.Name()},
		{Key: "live", Label: "Live Threads", Type: core.ParamTypeInt, Value: strconv.Itoa(c.LiveWorkers())},
		{Key: "generation", Label: "Generation", Type: core.ParamTypeInt, Value: strconv.FormatUint(c.Generation(), 10)},
		{Key: "delay", Label: "Delay", Type: core.ParamTypeDuration, Value: c.st.Pace.Delay().String()},
	}
	if c.cfg.Strategy == partition.Name {
		engine = append(engine, core.Parameter{Key: "lifetime", Label: "Workers", Type: core.ParamTypeText, Value: lifetimeName(c.cfg.Lifetime)})
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{Name: "Engine", Params: engine},
		{Name: "Rule", Params: []core.Parameter{
			{Key: "rule", Label: "Rule", Type: core.ParamTypeText, Value: fmt.Sprintf("%d %s %s", int(rule), rule, rule.Notation())},
			{Key: "border", Label: "Border", Type: core.ParamTypeText, Value: c.st.Border.String()},
			{Key: "color", Label: "Color", Type: core.ParamTypeBool, Value: strconv.FormatBool(c.st.Color())},
			{Key: "grid", Label: "Grid Lines", Type: core.ParamTypeBool, Value: strconv.FormatBool(c.st.GridLines())},
		}},
	}}
}

func lifetimeName(s string) string {
	l, err := partition.ParseLifetime(s)
	if err != nil {
		return s
	}
	return l.String()
}

// KeyEscape is the rune front ends pass for the escape key.
const KeyEscape = 0x1b

// HandleKey applies the action bound to k and reports whether k is bound.
//
//	ESC, q   quit
//	space    reset with a new seed
//	+, -     faster, slower
//	1..4     select rule
//	c, b     toggle color mode
//	l        toggle grid lines
func (c *Controller) HandleKey(k rune) bool {
	switch k {
	case KeyEscape, 'q', 'Q':
		c.Quit()
	case ' ':
		if err := c.Reseed(); err != nil {
			log.Printf("reset: %v", err)
		}
	case '+', '=':
		c.SpeedUp()
	case '-', '_':
		c.SlowDown()
	case '1', '2', '3', '4':
		if err := c.SetRule(rules.Rule(k - '0')); err != nil {
			log.Printf("rule: %v", err)
		}
	case 'c', 'C', 'b', 'B':
		c.ToggleColorMode()
	case 'l', 'L':
		c.ToggleGridLines()
	default:
		return false
	}
	return true
}
