package core

import "sync"

// LockTable holds one mutex per cell, addressed by linear index.
type LockTable struct {
	mu []sync.Mutex
}

// NewLockTable allocates n cell locks.
func NewLockTable(n int) *LockTable {
	return &LockTable{mu: make([]sync.Mutex, n)}
}

// Len returns the number of locks.
func (t *LockTable) Len() int { return len(t.mu) }

// Lock acquires the locks in idx in slice order. Callers pass indices in
// ascending order so that no two workers can wait on each other in a cycle.
func (t *LockTable) Lock(idx []int) {
	for _, i := range idx {
		t.mu[i].Lock()
	}
}

// Unlock releases the locks in idx in reverse order.
func (t *LockTable) Unlock(idx []int) {
	for k := len(idx) - 1; k >= 0; k-- {
		t.mu[idx[k]].Unlock()
	}
}
