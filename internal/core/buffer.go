package core

import "sync"

// DoubleBuffer pairs the grid workers read from with the grid they write
// into. Swap exchanges the two in O(1); Snapshot copies the readable grid
// under the read lock so an observer never sees a half-written generation.
type DoubleBuffer struct {
	mu   sync.RWMutex
	cur  *Grid
	next *Grid
}

// NewDoubleBuffer allocates both grids.
func NewDoubleBuffer(rows, cols int) *DoubleBuffer {
	return &DoubleBuffer{cur: NewGrid(rows, cols), next: NewGrid(rows, cols)}
}

// Dims returns the grid dimensions.
func (b *DoubleBuffer) Dims() (int, int) { return b.cur.Rows, b.cur.Cols }

// Current returns the grid holding the last finished generation.
func (b *DoubleBuffer) Current() *Grid {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cur
}

// Next returns the grid the generation in progress is written to.
func (b *DoubleBuffer) Next() *Grid {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.next
}

// Swap publishes the next grid as current. Exactly one caller per generation
// may invoke it, and only after every writer has finished.
func (b *DoubleBuffer) Swap() {
	b.mu.Lock()
	b.cur, b.next = b.next, b.cur
	b.mu.Unlock()
}

// Snapshot copies the current generation into dst.
func (b *DoubleBuffer) Snapshot(dst []uint32) []uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cur.CopyTo(dst)
}

// Randomize seeds the next grid and publishes it.
func (b *DoubleBuffer) Randomize(seed int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next.Randomize(seed)
	b.cur, b.next = b.next, b.cur
	b.next.Clear()
}
