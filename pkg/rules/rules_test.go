package rules

import (
	"errors"
	"slices"
	"testing"
)

type testGrid struct {
	rows, cols int
	cells      []uint32
}

func newTestGrid(rows, cols int) *testGrid {
	return &testGrid{rows: rows, cols: cols, cells: make([]uint32, rows*cols)}
}

func (g *testGrid) Dims() (int, int) { return g.rows, g.cols }

func (g *testGrid) Load(row, col int) uint32 { return g.cells[row*g.cols+col] }

func (g *testGrid) set(row, col int, v uint32) { g.cells[row*g.cols+col] = v }

func step(t *testing.T, g *testGrid, p Params) *testGrid {
	t.Helper()
	next := newTestGrid(g.rows, g.cols)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			v, err := Evaluate(g, r, c, p, nil)
			if err != nil {
				t.Fatalf("Evaluate(%d,%d): %v", r, c, err)
			}
			next.set(r, c, v)
		}
	}
	return next
}

func TestBlinkerOscillation(t *testing.T) {
	g := newTestGrid(5, 5)
	g.set(1, 2, 1)
	g.set(2, 2, 1)
	g.set(3, 2, 1)
	p := Params{Rule: GameOfLife, Border: Wrapped}

	g1 := step(t, g, p)
	expects := map[[2]int]bool{{2, 1}: true, {2, 2}: true, {2, 3}: true}
	for r := 0; r < 5; r++ {
		for c := 0; c < 5; c++ {
			alive := g1.Load(r, c) == 1
			if alive != expects[[2]int{r, c}] {
				t.Fatalf("cell (%d,%d) alive=%v, expected %v", r, c, alive, !alive)
			}
		}
	}

	g2 := step(t, g1, p)
	if !slices.Equal(g.cells, g2.cells) {
		t.Fatalf("blinker did not return after two generations:\n got %v\nwant %v", g2.cells, g.cells)
	}
}

func TestDeadBorderKillsEdges(t *testing.T) {
	g := newTestGrid(6, 6)
	for i := range g.cells {
		g.cells[i] = 1
	}
	for _, r := range Rules() {
		next := step(t, g, Params{Rule: r, Border: Dead})
		for row := 0; row < 6; row++ {
			for col := 0; col < 6; col++ {
				if OnBorder(6, 6, row, col) && next.Load(row, col) != 0 {
					t.Fatalf("%v: border cell (%d,%d) = %d, want 0", r, row, col, next.Load(row, col))
				}
			}
		}
	}
}

func TestCountLiveNeighborsPolicies(t *testing.T) {
	g := newTestGrid(4, 4)
	for i := range g.cells {
		g.cells[i] = 1
	}
	if got := CountLiveNeighbors(g, 0, 0, Dead, nil); got != -1 {
		t.Fatalf("dead corner count = %d, want -1", got)
	}
	if got := CountLiveNeighbors(g, 0, 0, Clipped, nil); got != 3 {
		t.Fatalf("clipped corner count = %d, want 3", got)
	}
	if got := CountLiveNeighbors(g, 0, 1, Clipped, nil); got != 5 {
		t.Fatalf("clipped edge count = %d, want 5", got)
	}
	if got := CountLiveNeighbors(g, 0, 0, Wrapped, nil); got != 8 {
		t.Fatalf("wrapped corner count = %d, want 8", got)
	}
	if got := CountLiveNeighbors(g, 1, 1, Dead, nil); got != 8 {
		t.Fatalf("interior count = %d, want 8", got)
	}
	for i := 0; i < 100; i++ {
		if got := CountLiveNeighbors(g, 3, 3, Random, nil); got < 0 || got > 8 {
			t.Fatalf("random border count %d out of range", got)
		}
	}
}

func TestNextStateTables(t *testing.T) {
	cases := []struct {
		rule  Rule
		cur   uint32
		count int
		want  uint32
	}{
		{GameOfLife, 1, 2, 1},
		{GameOfLife, 1, 3, 1},
		{GameOfLife, 1, 4, 0},
		{GameOfLife, 0, 3, 1},
		{GameOfLife, 0, 2, 0},
		{CoralGrowth, 1, 3, 0},
		{CoralGrowth, 1, 4, 1},
		{CoralGrowth, 1, 8, 1},
		{CoralGrowth, 0, 3, 1},
		{Amoeba, 1, 5, 1},
		{Amoeba, 1, 2, 0},
		{Amoeba, 0, 1, 1},
		{Amoeba, 0, 8, 1},
		{Maze, 1, 1, 1},
		{Maze, 1, 5, 1},
		{Maze, 1, 6, 0},
		{Maze, 0, 3, 1},
		{Maze, 0, 1, 0},
		{GameOfLife, 1, -1, 0},
		{CoralGrowth, 1, -1, 0},
	}
	for _, tc := range cases {
		got, err := NextState(tc.cur, tc.count, tc.rule)
		if err != nil {
			t.Fatalf("%v cur=%d count=%d: %v", tc.rule, tc.cur, tc.count, err)
		}
		if got != tc.want {
			t.Errorf("%v cur=%d count=%d: got %d, want %d", tc.rule, tc.cur, tc.count, got, tc.want)
		}
	}

	if _, err := NextState(1, 3, Rule(9)); !errors.Is(err, ErrUnknownRule) {
		t.Fatalf("expected ErrUnknownRule, got %v", err)
	}
}

func TestAge(t *testing.T) {
	if got := Age(0, 1, true); got != 1 {
		t.Fatalf("newborn age = %d, want 1", got)
	}
	if got := Age(2, 1, true); got != 3 {
		t.Fatalf("aging = %d, want 3", got)
	}
	if got := Age(MaxAge, 1, true); got != MaxAge {
		t.Fatalf("age at max = %d, want %d", got, MaxAge)
	}
	if got := Age(4, 1, false); got != 1 {
		t.Fatalf("color off age = %d, want 1", got)
	}
	if got := Age(3, 0, true); got != 0 {
		t.Fatalf("dead cell age = %d, want 0", got)
	}
}

func TestFootprint(t *testing.T) {
	var buf []int
	buf = Footprint(6, 6, 2, 2, Dead, buf)
	want := []int{7, 8, 9, 13, 14, 15, 19, 20, 21}
	if !slices.Equal(buf, want) {
		t.Fatalf("interior footprint = %v, want %v", buf, want)
	}

	buf = Footprint(6, 6, 0, 3, Dead, buf)
	if !slices.Equal(buf, []int{3}) {
		t.Fatalf("dead border footprint = %v, want [3]", buf)
	}

	buf = Footprint(6, 6, 0, 0, Clipped, buf)
	if !slices.Equal(buf, []int{0, 1, 6, 7}) {
		t.Fatalf("clipped corner footprint = %v", buf)
	}

	buf = Footprint(6, 6, 0, 0, Wrapped, buf)
	want = []int{0, 1, 5, 6, 7, 11, 30, 31, 35}
	if !slices.Equal(buf, want) {
		t.Fatalf("wrapped corner footprint = %v, want %v", buf, want)
	}
	if !slices.IsSorted(buf) {
		t.Fatalf("footprint not sorted: %v", buf)
	}
}

func TestParseRule(t *testing.T) {
	for in, want := range map[string]Rule{"1": GameOfLife, "coral": CoralGrowth, "3": Amoeba, "MAZE": Maze, "gol": GameOfLife} {
		got, err := ParseRule(in)
		if err != nil || got != want {
			t.Fatalf("ParseRule(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"0", "5", "seeds"} {
		if _, err := ParseRule(in); !errors.Is(err, ErrUnknownRule) {
			t.Fatalf("ParseRule(%q) err = %v, want ErrUnknownRule", in, err)
		}
	}
	if GameOfLife.Notation() != "B3/S23" || Amoeba.Notation() != "B1358/S1358" {
		t.Fatalf("unexpected notation %q %q", GameOfLife.Notation(), Amoeba.Notation())
	}
	if _, err := ParseBorder("mirror"); !errors.Is(err, ErrUnknownBorder) {
		t.Fatalf("expected ErrUnknownBorder, got %v", err)
	}
}
