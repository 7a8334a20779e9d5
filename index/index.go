package index

import (
	"sort"

	"github.com/impql/impql/eav"
)

// Index is one row's sorted view of the bag: three equal-length columns
// in original E/A/V order, but row k means the same underlying triple
// across all three columns, with rows sorted by the permutation P that
// built the index (spec §4.7).
type Index struct {
	Col [3][]eav.Value
	N   int
}

// Build lifts triples into the index for one row's column ordering P
// (P[i] names which original column sorts in position i). Triples are
// permuted column-wise by P, sorted lexicographically in that permuted
// order, then each original column is reconstructed via the inverse
// permutation — so Col[c][k] is original column c's value of the k-th
// triple in P-sort order.
func Build(triples []eav.Triple, P [3]int) *Index {
	n := len(triples)
	permuted := make([][3]eav.Value, n)
	for i, t := range triples {
		permuted[i] = [3]eav.Value{t[P[0]], t[P[1]], t[P[2]]}
	}
	sort.Slice(permuted, func(i, j int) bool {
		return compareTriple(permuted[i], permuted[j]) < 0
	})

	var r [3]int
	for i, p := range P {
		r[p] = i
	}

	idx := &Index{N: n}
	for c := 0; c < 3; c++ {
		col := make([]eav.Value, n)
		for k := 0; k < n; k++ {
			col[k] = permuted[k][r[c]]
		}
		idx.Col[c] = col
	}
	return idx
}

func compareTriple(a, b [3]eav.Value) int {
	for i := 0; i < 3; i++ {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	return 0
}
