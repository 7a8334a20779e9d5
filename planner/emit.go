package planner

import (
	"sort"

	"github.com/impql/impql/eav"
	"github.com/impql/impql/ir"
)

// funcArity is the compile-time name/arity table for builtin functions
// (spec §4.5, §9 "Function extensibility" — v1 ships only "+"). Adding a
// function means extending this table and exec's callFunc evaluator; the
// constraint form itself never changes.
var funcArity = map[string]int{
	"+": 2,
}

func validateFunctions(f *ir.Flat) error {
	for _, node := range f.Nodes {
		if node.Kind != ir.KFunction {
			continue
		}
		arity, ok := funcArity[node.Name]
		if !ok || arity != len(node.Args) {
			return eav.ErrUnknownFunction.New(node.Name, len(node.Args))
		}
	}
	return nil
}

// Plan compiles a flattened, slot-classed block into an executable Block,
// implementing the "first fixer wins, rest check" emission policy of spec
// §4.5 and the row-ordering rule of §4.6.
func Plan(f *ir.Flat, rows []ir.Row, slots *ir.SlotSet, asserts []ir.AssertStmt) (*Block, error) {
	if err := validateFunctions(f); err != nil {
		return nil, err
	}

	rowOrderings := make([][3]int, len(rows))
	for i, row := range rows {
		cols := [3]int{0, 1, 2}
		exprOf := [3]int{row.E, row.A, row.Dot}
		sort.SliceStable(cols[:], func(a, b int) bool {
			return slots.ExprSlot[exprOf[cols[a]]] < slots.ExprSlot[exprOf[cols[b]]]
		})
		rowOrderings[i] = cols
	}

	numSlots := len(slots.Groups)
	variables := make([]eav.Value, numSlots)
	fixed := make([]bool, numSlots)
	constSlot := make([]bool, numSlots)
	var constraints []Constraint

	for s, indices := range slots.Groups {
		var constantVal eav.Value
		hasConstant := false
		var functionIdxs []int
		var rowcols []RowCol

		for _, idx := range indices {
			node := f.Nodes[idx]
			switch node.Kind {
			case ir.KConstant:
				constantVal = node.Constant
				hasConstant = true
			case ir.KFunction:
				functionIdxs = append(functionIdxs, idx)
			}
		}
		for ri, row := range rows {
			exprOf := [3]int{row.E, row.A, row.Dot}
			for col, exprIdx := range exprOf {
				if slots.ExprSlot[exprIdx] == s {
					rowcols = append(rowcols, RowCol{Row: ri, Col: col})
				}
			}
		}

		if !hasConstant && len(functionIdxs) == 0 && len(rowcols) == 0 {
			return nil, eav.ErrNoConstraintsOnSlot.New(s)
		}

		if hasConstant {
			variables[s] = constantVal
			fixed[s] = true
			constSlot[s] = true
		}

		for _, funcIdx := range functionIdxs {
			node := f.Nodes[funcIdx]
			argSlots := make([]int, len(node.Args))
			for i, a := range node.Args {
				argSlots[i] = slots.ExprSlot[a]
			}
			constraints = append(constraints, Apply{
				Slot:         s,
				ArgSlots:     argSlots,
				Func:         node.Name,
				AlreadyFixed: fixed[s],
			})
			fixed[s] = true
		}

		if fixed[s] {
			for _, rc := range rowcols {
				constraints = append(constraints, Narrow{RowCol: rc, Slot: s})
			}
		} else {
			constraints = append(constraints, Join{RowCols: rowcols, Slot: s})
		}
	}

	for _, a := range asserts {
		constraints = append(constraints, AssertC{Slots: [3]int{
			slots.ExprSlot[a.Entity],
			slots.ExprSlot[a.Attribute],
			slots.ExprSlot[a.Value],
		}})
	}

	var named []NamedSlot
	for s, indices := range slots.Groups {
		for _, idx := range indices {
			if node := f.Nodes[idx]; node.Kind == ir.KVariable {
				named = append(named, NamedSlot{Name: node.Name, Slot: s})
				break
			}
		}
	}
	constraints = append(constraints, DebugC{Named: named})

	return &Block{
		RowOrderings: rowOrderings,
		Variables:    variables,
		HasConstant:  constSlot,
		Constraints:  constraints,
	}, nil
}
