// Package index builds per-row sorted column indexes from a Bag and a
// planner-chosen column ordering, and provides the galloping search the
// executor probes them with (spec §4.7, §4.8).
package index

import "github.com/impql/impql/eav"

// Gallop returns the smallest i in [lo, hi] such that !pred(col[i]), or hi
// if pred holds everywhere in the range. pred must be monotone
// non-increasing over col[lo:hi] (true...true false...false); col must be
// sorted consistently with pred. Runs exponential search for a bracket
// where pred flips, then binary search within it — O(log(result-lo)).
func Gallop(col []eav.Value, lo, hi int, pred func(eav.Value) bool) int {
	if lo >= hi {
		return lo
	}
	if !pred(col[lo]) {
		return lo
	}
	i := lo
	step := 1
	for {
		next := i + step
		if next >= hi {
			return binarySearch(col, i, hi, pred)
		}
		if !pred(col[next]) {
			return binarySearch(col, i, next, pred)
		}
		i = next
		step *= 2
	}
}

// binarySearch finds the first index in (lo, hi] where pred fails, given
// pred(col[lo]) holds and pred fails at hi (or hi is an open upper bound).
func binarySearch(col []eav.Value, lo, hi int, pred func(eav.Value) bool) int {
	for lo < hi {
		mid := lo + (hi-lo)/2
		if pred(col[mid]) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
