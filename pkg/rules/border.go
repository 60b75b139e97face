package rules

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// ErrUnknownBorder is returned for unrecognised border policy names.
var ErrUnknownBorder = errors.New("rules: unknown border policy")

// BorderPolicy decides how cells on the outer ring of the grid see their
// neighborhood.
type BorderPolicy int

const (
	// Dead border cells report a count of -1 and therefore always die.
	Dead BorderPolicy = iota
	// Random border cells report a uniform count in [0, 8].
	Random
	// Clipped border cells count only the neighbors inside the grid.
	Clipped
	// Wrapped treats the grid as a torus.
	Wrapped
)

var borderNames = []string{"dead", "random", "clipped", "wrapped"}

func (p BorderPolicy) String() string {
	if p < 0 || int(p) >= len(borderNames) {
		return fmt.Sprintf("border(%d)", int(p))
	}
	return borderNames[p]
}

// ParseBorder maps a policy name to its BorderPolicy.
func ParseBorder(s string) (BorderPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range borderNames {
		if name == s {
			return BorderPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBorder, s)
}

// Cells is the read side of a grid as seen by the rule engine.
type Cells interface {
	Dims() (rows, cols int)
	Load(row, col int) uint32
}

// Intner supplies random counts for the Random border policy.
type Intner interface {
	IntN(n int) int
}

// OnBorder reports whether (row, col) lies on the outer ring.
func OnBorder(rows, cols, row, col int) bool {
	return row == 0 || col == 0 || row == rows-1 || col == cols-1
}

// CountLiveNeighbors returns the number of live cells among the eight
// neighbors of (row, col). Border cells follow policy; the Dead policy yields
// -1. rng is only consulted for the Random policy and may be nil, in which
// case the package-level generator is used.
func CountLiveNeighbors(g Cells, row, col int, policy BorderPolicy, rng Intner) int {
	rows, cols := g.Dims()
	if OnBorder(rows, cols, row, col) {
		switch policy {
		case Dead:
			return -1
		case Random:
			if rng == nil {
				return rand.IntN(9)
			}
			return rng.IntN(9)
		}
	}

	count := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if policy == Wrapped {
				r = (r + rows) % rows
				c = (c + cols) % cols
			} else if r < 0 || c < 0 || r >= rows || c >= cols {
				continue
			}
			if g.Load(r, c) != 0 {
				count++
			}
		}
	}
	return count
}

// Footprint appends to dst[:0] the ascending, de-duplicated linear indices
// that an update of (row, col) reads or writes. Acquiring locks in this order
// from every worker rules out lock-order cycles.
func Footprint(rows, cols, row, col int, policy BorderPolicy, dst []int) []int {
	dst = dst[:0]
	if OnBorder(rows, cols, row, col) && (policy == Dead || policy == Random) {
		return append(dst, row*cols+col)
	}
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			r, c := row+dr, col+dc
			if policy == Wrapped {
				r = (r + rows) % rows
				c = (c + cols) % cols
			} else if r < 0 || c < 0 || r >= rows || c >= cols {
				continue
			}
			dst = append(dst, r*cols+c)
		}
	}
	slices.Sort(dst)
	return slices.Compact(dst)
}
