// Package dataflow is a from-scratch, test-only cross-check oracle for
// the primary backtracking executor in package exec. Rather than a
// worst-case-optimal join over sorted indexes, it implements the literal
// definition behind spec §8 invariant 6: enumerate every assignment of
// values to slots and keep the ones that satisfy every row and every
// Apply — the same brute-force reading the original timely/
// differential-dataflow prototype (original_source/src/dd.rs) gave this
// engine before it was replaced by the indexed executor. No Go library in
// the retrieved corpus wraps timely/differential-dataflow, so this is
// plain recursive enumeration over maps and slices rather than a port of
// dd.rs's dataflow operators.
//
// Never use this package outside of tests: it is O(|domain|^slots) and
// keeps no index at all.
package dataflow

import (
	"github.com/impql/impql/eav"
	"github.com/impql/impql/planner"
)

// Result mirrors exec.Result's shape so callers can compare the two
// oracles directly.
type Result struct {
	Rows    [][]eav.Value
	Asserts [][3]eav.Value
}

// Run evaluates block against bag by brute-force enumeration. Domain is
// the set of distinct values appearing anywhere in bag's triples; slots
// marked block.HasConstant are held to their preloaded constant instead
// of being enumerated.
func Run(block *planner.Block, bag *eav.Bag) *Result {
	triples := bag.Triples()

	domain := distinctValues(triples)
	rowSlots := rowSlotColumns(block)
	named := namedSlots(block)

	assign := make([]eav.Value, len(block.Variables))
	copy(assign, block.Variables)

	r := &Result{}
	enumerate(block, triples, rowSlots, named, domain, assign, 0, r)
	return r
}

// distinctValues collects every value appearing in any column of any
// triple, in first-seen order (order is irrelevant — enumerate tries all
// of them regardless of order).
func distinctValues(triples []eav.Triple) []eav.Value {
	var out []eav.Value
	seen := func(v eav.Value) bool {
		for _, o := range out {
			if o.Equal(v) {
				return true
			}
		}
		return false
	}
	for _, t := range triples {
		for _, v := range t {
			if !seen(v) {
				out = append(out, v)
			}
		}
	}
	return out
}

// rowSlotColumns reconstructs, for each row, which slot governs each of
// its three original columns (E=0, A=1, V=2), by scanning every Narrow
// and Join constraint's row/col references. Every row's three columns are
// always covered by exactly one such reference (planner.Plan emits one
// per (row, col, slot) triple).
func rowSlotColumns(block *planner.Block) [][3]int {
	rowSlots := make([][3]int, len(block.RowOrderings))
	for i := range rowSlots {
		rowSlots[i] = [3]int{-1, -1, -1}
	}
	note := func(rc planner.RowCol, slot int) {
		rowSlots[rc.Row][rc.Col] = slot
	}
	for _, c := range block.Constraints {
		switch c := c.(type) {
		case planner.Narrow:
			note(c.RowCol, c.Slot)
		case planner.Join:
			for _, rc := range c.RowCols {
				note(rc, c.Slot)
			}
		}
	}
	return rowSlots
}

func namedSlots(block *planner.Block) []int {
	for _, c := range block.Constraints {
		if d, ok := c.(planner.DebugC); ok {
			slots := make([]int, len(d.Named))
			for i, n := range d.Named {
				slots[i] = n.Slot
			}
			return slots
		}
	}
	return nil
}

// enumerate recursively assigns every free slot from domain (constant
// slots are left as preloaded), then at slot == len(assign) checks the
// assignment against every row and Apply constraint.
func enumerate(block *planner.Block, triples []eav.Triple, rowSlots [][3]int, named []int, domain []eav.Value, assign []eav.Value, slot int, r *Result) {
	if slot == len(assign) {
		checkAssignment(block, triples, rowSlots, named, assign, r)
		return
	}
	if block.HasConstant[slot] {
		enumerate(block, triples, rowSlots, named, domain, assign, slot+1, r)
		return
	}
	for _, v := range domain {
		assign[slot] = v
		enumerate(block, triples, rowSlots, named, domain, assign, slot+1, r)
	}
}

func checkAssignment(block *planner.Block, triples []eav.Triple, rowSlots [][3]int, named []int, assign []eav.Value, r *Result) {
	for _, rs := range rowSlots {
		want := eav.Triple{assign[rs[0]], assign[rs[1]], assign[rs[2]]}
		if !containsTriple(triples, want) {
			return
		}
	}
	for _, c := range block.Constraints {
		a, ok := c.(planner.Apply)
		if !ok {
			continue
		}
		args := make([]eav.Value, len(a.ArgSlots))
		for i, s := range a.ArgSlots {
			args[i] = assign[s]
		}
		result, err := applyFunc(a.Func, args)
		if err != nil {
			return
		}
		if !assign[a.Slot].Equal(result) {
			return
		}
	}

	row := make([]eav.Value, len(named))
	for i, s := range named {
		row[i] = assign[s]
	}
	r.Rows = append(r.Rows, row)

	for _, c := range block.Constraints {
		if a, ok := c.(planner.AssertC); ok {
			r.Asserts = append(r.Asserts, [3]eav.Value{assign[a.Slots[0]], assign[a.Slots[1]], assign[a.Slots[2]]})
		}
	}
}

func containsTriple(triples []eav.Triple, want eav.Triple) bool {
	for _, t := range triples {
		if t[0].Equal(want[0]) && t[1].Equal(want[1]) && t[2].Equal(want[2]) {
			return true
		}
	}
	return false
}

func applyFunc(name string, args []eav.Value) (eav.Value, error) {
	switch name {
	case "+":
		a, b := args[0], args[1]
		if a.Tag() != eav.TagInteger || b.Tag() != eav.TagInteger {
			return eav.Value{}, eav.ErrTypeError.New(a, b)
		}
		return eav.Int(a.AsInt() + b.AsInt()), nil
	default:
		return eav.Value{}, eav.ErrUnknownFunction.New(name, len(args))
	}
}
