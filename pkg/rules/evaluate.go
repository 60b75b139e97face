package rules

// Params is the per-update configuration read by workers.
type Params struct {
	Rule   Rule
	Border BorderPolicy
	Color  bool
}

// Evaluate computes the stored next value of (row, col) from g.
func Evaluate(g Cells, row, col int, p Params, rng Intner) (uint32, error) {
	cur := g.Load(row, col)
	count := CountLiveNeighbors(g, row, col, p.Border, rng)
	raw, err := NextState(cur, count, p.Rule)
	if err != nil {
		return 0, err
	}
	return Age(cur, raw, p.Color), nil
}
