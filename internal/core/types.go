package core

import (
	"context"
	"sort"

	"cellsim/pkg/rules"
)

// Engine advances a grid with a pool of workers under one synchronization
// strategy. Start and Stop bracket a run; Reset is only valid while stopped.
type Engine interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Done() <-chan struct{}
	Reset(seed int64) error
	Snapshot(dst []uint32) []uint32
	Generation() uint64
}

// Listener is notified after each published generation. It runs on a worker
// goroutine and must return quickly.
type Listener interface {
	GenerationDone(gen uint64)
}

// Source is the read-only view renderers poll.
type Source interface {
	Dims() (rows, cols int)
	Snapshot(dst []uint32) []uint32
	LiveWorkers() int
	Generation() uint64
}

// Controls is what an interactive front end drives: the polled view plus
// the state pane and the key map.
type Controls interface {
	Source
	Strategy() string
	State() *State
	Parameters() ParameterSnapshot
	SetRule(r rules.Rule) error
	HandleKey(k rune) bool
	Quit()
	Done() <-chan struct{}
}

// Options carries the construction-time settings shared by all engines.
type Options struct {
	Seed     int64
	Lifetime string
	Turns    uint64
	Listener Listener
}

// Factory constructs an Engine over the shared state.
type Factory func(st *State, opts Options) (Engine, error)

var engines = map[string]Factory{}

// Register adds an engine factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	engines[name] = f
}

// Engines exposes the registry of available engine factories.
func Engines() map[string]Factory {
	return engines
}

// EngineNames returns the registered names in sorted order.
func EngineNames() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
