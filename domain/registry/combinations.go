package registry

import "gonum.org/v1/gonum/stat/combin"

// Combinations returns every k-element subset of vars, ordered lexicographically
// by position in vars as combin.Combinations orders index sets. Each subset keeps
// the relative order of vars. k outside 1..len(vars) yields nil.
func Combinations(vars []Variable, k int) [][]Variable {
	if k <= 0 || k > len(vars) {
		return nil
	}

	sets := combin.Combinations(len(vars), k)
	out := make([][]Variable, len(sets))
	for i, set := range sets {
		combo := make([]Variable, k)
		for j, idx := range set {
			combo[j] = vars[idx]
		}
		out[i] = combo
	}
	return out
}
