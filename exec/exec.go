// Package exec runs a compiled planner.Block against an eav.Bag: a
// recursive backtracking evaluator over the block's constraint list, using
// galloping search on per-row sorted indexes (spec §4.9).
package exec

import (
	"github.com/sirupsen/logrus"

	"github.com/impql/impql/eav"
	"github.com/impql/impql/index"
	"github.com/impql/impql/planner"
)

// Result is the output of one run: the flat Debug result buffer (grouped
// into rows of len(Named) values each via Rows), the variable names Debug
// materialized in slot order, and the triples collected by Assert.
type Result struct {
	Results []eav.Value
	Named   []string
	Asserts [][3]eav.Value
}

// Rows groups Results into one slice per Debug materialization.
func (r *Result) Rows() [][]eav.Value {
	n := len(r.Named)
	if n == 0 {
		return nil
	}
	var rows [][]eav.Value
	for i := 0; i+n <= len(r.Results); i += n {
		rows = append(rows, r.Results[i:i+n])
	}
	return rows
}

// state is the executor's mutable run state: per-row active ranges, the
// current value of each slot, and the accumulating result/assert buffers.
// Narrow, Join and Apply save the ranges and slot values they mutate on
// entry and restore them on exit, so a return to the caller sees those
// identical to entry; Assert and Debug only append to the asserts/results
// buffers, which are never rolled back.
type state struct {
	indexes   []*index.Index
	ranges    [][2]int
	variables []eav.Value
	results   []eav.Value
	asserts   [][3]eav.Value
	log       *logrus.Entry
}

// Run compiles no further — block is already planned — and executes it
// against bag, returning collected results and asserts, or a fatal error
// from Apply (e.g. a type error). log may be nil to disable tracing.
func Run(block *planner.Block, bag *eav.Bag, log *logrus.Entry) (*Result, error) {
	triples := bag.Triples()
	indexes := make([]*index.Index, len(block.RowOrderings))
	for i, p := range block.RowOrderings {
		indexes[i] = index.Build(triples, p)
	}
	ranges := make([][2]int, len(indexes))
	for i, idx := range indexes {
		ranges[i] = [2]int{0, idx.N}
	}
	variables := make([]eav.Value, len(block.Variables))
	copy(variables, block.Variables)

	if log != nil {
		log.WithFields(logrus.Fields{
			"constraints": len(block.Constraints),
			"rows":        len(indexes),
		}).Trace("starting run")
	}

	st := &state{indexes: indexes, ranges: ranges, variables: variables, log: log}
	if err := st.step(block.Constraints); err != nil {
		return nil, err
	}
	return &Result{Results: st.results, Named: debugNames(block.Constraints), Asserts: st.asserts}, nil
}

func debugNames(cs []planner.Constraint) []string {
	if len(cs) == 0 {
		return nil
	}
	d, ok := cs[len(cs)-1].(planner.DebugC)
	if !ok {
		return nil
	}
	names := make([]string, len(d.Named))
	for i, n := range d.Named {
		names[i] = n.Name
	}
	return names
}

// step dispatches the next constraint. An empty list is the base case:
// success, nothing further to do. A nil error with cs non-empty exhausted
// means "no solutions on this branch" and is not itself an error; only a
// fatal (e.g. type error) propagates as one.
func (st *state) step(cs []planner.Constraint) error {
	if len(cs) == 0 {
		return nil
	}
	switch c := cs[0].(type) {
	case planner.Narrow:
		return st.execNarrow(c, cs[1:])
	case planner.Join:
		return st.execJoin(c, cs[1:])
	case planner.Apply:
		return st.execApply(c, cs[1:])
	case planner.AssertC:
		return st.execAssert(c, cs[1:])
	case planner.DebugC:
		return st.execDebug(c, cs[1:])
	default:
		panic("exec: unknown constraint type")
	}
}

// execNarrow intersects the current slot value against one row column,
// restricting that row's active range to the matching equal-run.
func (st *state) execNarrow(c planner.Narrow, rest []planner.Constraint) error {
	row := c.RowCol.Row
	col := st.indexes[row].Col[c.RowCol.Col]
	lo0, hi0 := st.ranges[row][0], st.ranges[row][1]
	v := st.variables[c.Slot]

	lo := index.Gallop(col, lo0, hi0, func(x eav.Value) bool { return x.Compare(v) < 0 })
	hi := index.Gallop(col, lo0, hi0, func(x eav.Value) bool { return x.Compare(v) <= 0 })
	if lo >= hi {
		return nil
	}

	savedRange := st.ranges[row]
	savedVar := st.variables[c.Slot]
	st.ranges[row] = [2]int{lo, hi}
	st.variables[c.Slot] = col[lo]

	err := st.step(rest)

	st.ranges[row] = savedRange
	st.variables[c.Slot] = savedVar
	return err
}

// execJoin iterates the leader row in ascending distinct-value order,
// confirming each value is present in every sibling (row, col), and binds
// the slot to each confirmed value in turn (spec §4.9, the
// worst-case-optimal multi-way intersection for one slot).
func (st *state) execJoin(c planner.Join, rest []planner.Constraint) error {
	leader := c.RowCols[0]
	leaderCol := st.indexes[leader.Row].Col[leader.Col]
	savedLeaderRange := st.ranges[leader.Row]
	lo, hi := savedLeaderRange[0], savedLeaderRange[1]

	type touched struct {
		row int
		rng [2]int
	}

	for lo < hi {
		v := leaderCol[lo]
		leaderHi := index.Gallop(leaderCol, lo, hi, func(x eav.Value) bool { return x.Compare(v) <= 0 })

		matched := true
		var savedSiblings []touched
		for _, rc := range c.RowCols[1:] {
			col := st.indexes[rc.Row].Col[rc.Col]
			slo, shi := st.ranges[rc.Row][0], st.ranges[rc.Row][1]
			nlo := index.Gallop(col, slo, shi, func(x eav.Value) bool { return x.Compare(v) < 0 })
			nhi := index.Gallop(col, slo, shi, func(x eav.Value) bool { return x.Compare(v) <= 0 })
			if nlo >= nhi {
				matched = false
				break
			}
			savedSiblings = append(savedSiblings, touched{row: rc.Row, rng: st.ranges[rc.Row]})
			st.ranges[rc.Row] = [2]int{nlo, nhi}
		}

		var stepErr error
		if matched {
			savedVar := st.variables[c.Slot]
			st.ranges[leader.Row] = [2]int{lo, leaderHi}
			st.variables[c.Slot] = v

			stepErr = st.step(rest)

			st.variables[c.Slot] = savedVar
			st.ranges[leader.Row] = savedLeaderRange
		}

		for _, s := range savedSiblings {
			st.ranges[s.row] = s.rng
		}

		if stepErr != nil {
			st.ranges[leader.Row] = savedLeaderRange
			return stepErr
		}

		lo = leaderHi
	}

	st.ranges[leader.Row] = savedLeaderRange
	return nil
}

// execApply computes a slot from a builtin function over already-fixed
// slots. If the slot was already fixed by a constant or an earlier Apply,
// the call only proceeds when its result matches the existing value.
func (st *state) execApply(c planner.Apply, rest []planner.Constraint) error {
	args := make([]eav.Value, len(c.ArgSlots))
	for i, s := range c.ArgSlots {
		args[i] = st.variables[s]
	}
	result, err := callFunc(c.Func, args)
	if err != nil {
		return err
	}

	if c.AlreadyFixed {
		if !st.variables[c.Slot].Equal(result) {
			return nil
		}
		return st.step(rest)
	}

	saved := st.variables[c.Slot]
	st.variables[c.Slot] = result
	err = st.step(rest)
	st.variables[c.Slot] = saved
	return err
}

// execAssert appends the slot's current triple to asserts and recurses.
// There is no restore: an assert made on a branch whose later constraints
// fail is not rolled back (spec §9 Open Questions — kept exactly as
// described).
func (st *state) execAssert(c planner.AssertC, rest []planner.Constraint) error {
	st.asserts = append(st.asserts, [3]eav.Value{
		st.variables[c.Slots[0]],
		st.variables[c.Slots[1]],
		st.variables[c.Slots[2]],
	})
	return st.step(rest)
}

// execDebug materializes the named slots into results. It is always the
// trailing constraint, so rest is empty and the recursive step call below
// is the base case.
func (st *state) execDebug(c planner.DebugC, rest []planner.Constraint) error {
	for _, n := range c.Named {
		st.results = append(st.results, st.variables[n.Slot])
	}
	if st.log != nil {
		st.log.Tracef("materialized result row of %d values", len(c.Named))
	}
	return st.step(rest)
}

// callFunc evaluates a builtin by name. Only "+" exists in v1 (spec §9
// "Function extensibility"): exactly two integer arguments, otherwise a
// fatal type error.
func callFunc(name string, args []eav.Value) (eav.Value, error) {
	switch name {
	case "+":
		a, b := args[0], args[1]
		if a.Tag() != eav.TagInteger || b.Tag() != eav.TagInteger {
			return eav.Value{}, eav.ErrTypeError.New(a, b)
		}
		return eav.Int(a.AsInt() + b.AsInt()), nil
	default:
		// unreachable: planner.validateFunctions rejects unknown names at
		// compile time.
		panic("exec: unknown function " + name)
	}
}
