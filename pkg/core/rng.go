package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	seed uint64
	r    *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{seed: uint64(seed), r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Stream returns an independent generator for worker i. Streams derived from
// the same seed are reproducible and do not share state.
func (r *RNG) Stream(i int) *RNG {
	return &RNG{seed: r.seed, r: rand.New(rand.NewPCG(r.seed, uint64(i)+1))}
}

// Bit returns 0 or 1 with equal probability.
func (r *RNG) Bit() uint32 {
	return uint32(r.r.IntN(2))
}

// IntN returns a random int in [0, n). It returns 0 when n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}
