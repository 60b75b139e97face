package partition

import (
	"errors"
	"testing"
)

func TestPartitionsCoverRowsOnce(t *testing.T) {
	for rows := 6; rows <= 40; rows++ {
		for workers := 1; workers <= rows; workers++ {
			parts, err := Partitions(rows, workers)
			if err != nil {
				t.Fatalf("Partitions(%d,%d): %v", rows, workers, err)
			}
			if len(parts) != workers {
				t.Fatalf("Partitions(%d,%d) returned %d bands", rows, workers, len(parts))
			}
			seen := make([]int, rows)
			for _, p := range parts {
				if p.Rows() <= 0 {
					t.Fatalf("Partitions(%d,%d): empty band %+v", rows, workers, p)
				}
				for r := p.Start; r < p.End; r++ {
					seen[r]++
				}
			}
			for r, n := range seen {
				if n != 1 {
					t.Fatalf("Partitions(%d,%d): row %d covered %d times", rows, workers, r, n)
				}
			}
			if last := parts[workers-1]; last.End != rows {
				t.Fatalf("Partitions(%d,%d): last band ends at %d", rows, workers, last.End)
			}
		}
	}
}

func TestPartitionsRemainderGoesLast(t *testing.T) {
	parts, err := Partitions(10, 3)
	if err != nil {
		t.Fatalf("Partitions: %v", err)
	}
	want := []Partition{{0, 3}, {3, 6}, {6, 10}}
	for i := range want {
		if parts[i] != want[i] {
			t.Fatalf("band %d = %+v, want %+v", i, parts[i], want[i])
		}
	}
}

func TestPartitionsRejectsBadCounts(t *testing.T) {
	if _, err := Partitions(6, 7); !errors.Is(err, ErrTooManyWorkers) {
		t.Fatalf("expected ErrTooManyWorkers, got %v", err)
	}
	if _, err := Partitions(6, 0); err == nil {
		t.Fatalf("expected error for zero workers")
	}
}

func TestParseLifetime(t *testing.T) {
	if l, err := ParseLifetime(""); err != nil || l != Persistent {
		t.Fatalf("ParseLifetime(\"\") = %v, %v", l, err)
	}
	if l, err := ParseLifetime("Ephemeral"); err != nil || l != Ephemeral {
		t.Fatalf("ParseLifetime(Ephemeral) = %v, %v", l, err)
	}
	if _, err := ParseLifetime("forever"); !errors.Is(err, ErrUnknownLifetime) {
		t.Fatalf("expected ErrUnknownLifetime, got %v", err)
	}
}
