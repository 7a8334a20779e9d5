package ir

import (
	"sort"

	"github.com/impql/impql/eav"
)

// SlotSet is the result of equivalence classing (spec §4.4): Groups[s] is
// the ascending list of expr indices in slot s, in final slot order
// (after constant promotion); ExprSlot maps an expr index to its slot.
type SlotSet struct {
	Groups   [][]int
	ExprSlot []int
}

// union merges the groups containing a and b, keeping the lower-numbered
// group id as the surviving representative — "lower-indexed group wins",
// preserving source order (spec §4.4 step 3).
func union(group []int, a, b int) {
	ga, gb := group[a], group[b]
	if ga == gb {
		return
	}
	lo, hi := ga, gb
	if hi < lo {
		lo, hi = hi, lo
	}
	for i := range group {
		if group[i] == hi {
			group[i] = lo
		}
	}
}

// BuildSlots computes equivalence classes over f's expressions from
// variable identity and the given top-level patterns, then promotes
// constant-only slots to the front (spec §4.4).
func BuildSlots(f *Flat, patterns []PatternStmt) (*SlotSet, error) {
	n := len(f.Nodes)
	group := make([]int, n)
	for i := range group {
		group[i] = i
	}

	firstOccurrence := make(map[string]int)
	for i, node := range f.Nodes {
		if node.Kind != KVariable {
			continue
		}
		if first, ok := firstOccurrence[node.Name]; ok {
			union(group, first, i)
		} else {
			firstOccurrence[node.Name] = i
		}
	}

	for _, pat := range patterns {
		union(group, pat.Lhs, pat.Rhs)
	}

	buckets := make(map[int][]int)
	var keys []int
	for i := 0; i < n; i++ {
		g := group[i]
		if _, ok := buckets[g]; !ok {
			keys = append(keys, g)
		}
		buckets[g] = append(buckets[g], i)
	}
	sort.Ints(keys) // bucket key == min member index, so this is appearance order

	type slotInfo struct {
		indices     []int
		hasConstant bool
		hasFunction bool
	}
	slots := make([]slotInfo, len(keys))
	for s, k := range keys {
		indices := buckets[k]
		info := slotInfo{indices: indices}
		var firstConst *eav.Value
		for _, idx := range indices {
			node := f.Nodes[idx]
			switch node.Kind {
			case KConstant:
				info.hasConstant = true
				if firstConst == nil {
					v := node.Constant
					firstConst = &v
				} else if !firstConst.Equal(node.Constant) {
					return nil, eav.ErrImpossibleConstraint.New()
				}
			case KFunction:
				info.hasFunction = true
			}
		}
		slots[s] = info
	}

	var promoted, rest []int
	for s, info := range slots {
		if info.hasConstant && !info.hasFunction {
			promoted = append(promoted, s)
		} else {
			rest = append(rest, s)
		}
	}

	order := append(promoted, rest...)
	groups := make([][]int, len(order))
	exprSlot := make([]int, n)
	for finalSlot, s := range order {
		groups[finalSlot] = slots[s].indices
		for _, idx := range slots[s].indices {
			exprSlot[idx] = finalSlot
		}
	}

	return &SlotSet{Groups: groups, ExprSlot: exprSlot}, nil
}
