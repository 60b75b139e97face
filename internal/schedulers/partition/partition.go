// Package partition advances the grid synchronously: each worker owns a fixed
// band of rows, reads the current generation, writes the next one, and meets
// the others at a barrier where the last arrival publishes the generation.
package partition

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTooManyWorkers is returned when there are fewer rows than workers.
	ErrTooManyWorkers = errors.New("partition: more workers than rows")
	// ErrUnknownLifetime is returned for an unrecognised worker lifetime.
	ErrUnknownLifetime = errors.New("partition: unknown worker lifetime")
)

// Partition is the half-open row range [Start, End) owned by one worker.
type Partition struct {
	Start, End int
}

// Rows returns the number of rows in the partition.
func (p Partition) Rows() int { return p.End - p.Start }

// Partitions splits rows into workers contiguous bands of rows/workers rows
// each. The last band absorbs the remainder.
func Partitions(rows, workers int) ([]Partition, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("partition: worker count %d must be positive", workers)
	}
	if workers > rows {
		return nil, fmt.Errorf("%w: %d workers, %d rows", ErrTooManyWorkers, workers, rows)
	}
	size := rows / workers
	parts := make([]Partition, workers)
	for i := range parts {
		parts[i] = Partition{Start: i * size, End: (i + 1) * size}
	}
	parts[workers-1].End = rows
	return parts, nil
}

// Lifetime selects how worker goroutines map onto generations.
type Lifetime int

const (
	// Persistent workers live for the whole run and park at the barrier.
	Persistent Lifetime = iota
	// Ephemeral workers are spawned and joined once per generation.
	Ephemeral
)

func (l Lifetime) String() string {
	if l == Ephemeral {
		return "ephemeral"
	}
	return "persistent"
}

// ParseLifetime maps "persistent" or "ephemeral" to a Lifetime. The empty
// string selects Persistent.
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "persistent":
		return Persistent, nil
	case "ephemeral":
		return Ephemeral, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLifetime, s)
}
