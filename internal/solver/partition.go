package solver

func (e *Engine) buildPartitions() [][]int {
	keys := make([][]int, len(e.table))
	for r, t := range e.table {
		keys[r] = t.keys()
	}
	return enumeratePartitions(keys, e.budget)
}

// enumeratePartitions lists every way to pick one count per row from
// keys[row] so that the counts sum to budget. Results are in
// lexicographic order. A suffix reachability table keeps the walk from
// entering branches that cannot reach the budget.
func enumeratePartitions(keys [][]int, budget int) [][]int {
	n := len(keys)
	if n == 0 || budget < 0 {
		return nil
	}
	most := 0
	for _, ks := range keys {
		if len(ks) == 0 {
			return nil
		}
		most += ks[len(ks)-1]
	}
	if budget > most {
		return nil
	}

	// reach[i][s]: rows i..n-1 can sum to exactly s.
	reach := make([][]bool, n+1)
	for i := range reach {
		reach[i] = make([]bool, budget+1)
	}
	reach[n][0] = true
	for i := n - 1; i >= 0; i-- {
		for s := 0; s <= budget; s++ {
			for _, k := range keys[i] {
				if k <= s && reach[i+1][s-k] {
					reach[i][s] = true
					break
				}
			}
		}
	}
	if !reach[0][budget] {
		return nil
	}

	var out [][]int
	cur := make([]int, n)
	var walk func(i, remaining int)
	walk = func(i, remaining int) {
		if i == n {
			out = append(out, append([]int(nil), cur...))
			return
		}
		for _, k := range keys[i] {
			if k > remaining || !reach[i+1][remaining-k] {
				continue
			}
			cur[i] = k
			walk(i+1, remaining-k)
		}
	}
	walk(0, budget)
	return out
}
