package core

import (
	"errors"
	"fmt"
	"sync/atomic"

	prng "cellsim/pkg/core"
	"cellsim/pkg/rules"
)

var (
	// ErrOutOfBounds is returned by checked accessors for indices outside the grid.
	ErrOutOfBounds = errors.New("core: cell index out of bounds")
	// ErrInvalidState is returned when a stored value is not below rules.NbColors.
	ErrInvalidState = errors.New("core: invalid cell state")
)

// Grid stores cell states in row-major order. Every cell access is a single
// atomic 32-bit load or store, so concurrent readers never observe a torn
// value.
type Grid struct {
	Rows, Cols int
	data       []atomic.Uint32
}

// NewGrid allocates a grid with the given dimensions. Callers validate them
// first; NewState rejects empty grids.
func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, data: make([]atomic.Uint32, rows*cols)}
}

// Dims returns the grid dimensions.
func (g *Grid) Dims() (int, int) { return g.Rows, g.Cols }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.data) }

// Index returns the linear index for (row, col).
func (g *Grid) Index(row, col int) int { return row*g.Cols + col }

func (g *Grid) inBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < g.Rows && col < g.Cols
}

// Get returns the state of (row, col).
func (g *Grid) Get(row, col int) (uint32, error) {
	if !g.inBounds(row, col) {
		return 0, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, row, col, g.Rows, g.Cols)
	}
	return g.data[g.Index(row, col)].Load(), nil
}

// Set stores state at (row, col).
func (g *Grid) Set(row, col int, state uint32) error {
	if !g.inBounds(row, col) {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, row, col, g.Rows, g.Cols)
	}
	if state >= rules.NbColors {
		return fmt.Errorf("%w: %d", ErrInvalidState, state)
	}
	g.data[g.Index(row, col)].Store(state)
	return nil
}

// Load is the unchecked hot-path read used by the rule engine.
func (g *Grid) Load(row, col int) uint32 { return g.data[row*g.Cols+col].Load() }

// At reads the cell at linear index idx.
func (g *Grid) At(idx int) uint32 { return g.data[idx].Load() }

// Store writes the cell at linear index idx.
func (g *Grid) Store(idx int, v uint32) { g.data[idx].Store(v) }

// CopyTo copies every cell into dst, growing it when needed, and returns the
// filled slice.
func (g *Grid) CopyTo(dst []uint32) []uint32 {
	if cap(dst) < len(g.data) {
		dst = make([]uint32, len(g.data))
	}
	dst = dst[:len(g.data)]
	for i := range g.data {
		dst[i] = g.data[i].Load()
	}
	return dst
}

// Live counts the cells that are not dead.
func (g *Grid) Live() int {
	n := 0
	for i := range g.data {
		if g.data[i].Load() != 0 {
			n++
		}
	}
	return n
}

// Randomize sets every cell independently to 0 or 1 from seed.
func (g *Grid) Randomize(seed int64) {
	rng := prng.NewRNG(seed)
	for i := range g.data {
		g.data[i].Store(rng.Bit())
	}
}

// Clear fills the grid with zeros.
func (g *Grid) Clear() {
	for i := range g.data {
		g.data[i].Store(0)
	}
}
