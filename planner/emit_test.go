package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impql/impql/ast"
	"github.com/impql/impql/eav"
	"github.com/impql/impql/ir"
)

func compile(t *testing.T, block ast.Block) (*Block, error) {
	t.Helper()
	flat, rows, patterns, asserts, err := ir.Translate(block)
	require.NoError(t, err)
	slots, err := ir.BuildSlots(flat, patterns)
	if err != nil {
		return nil, err
	}
	return Plan(flat, rows, slots, asserts)
}

func TestPlanConstantPromotionEmitsNarrowNotJoin(t *testing.T) {
	// x.name = "a" — both the attribute slot ("name") and the value slot
	// ("a") are constant-only and get promoted ahead of x's own slot, so
	// each is fixed by the time its rowcol is emitted and gets a Narrow.
	// x itself has no constant: its slot is still bound from row data, via
	// a single-rowcol Join (spec invariant 4 — "that Join is replaced by
	// Narrows" describes the attribute/value slots, not the entity slot,
	// which was never a Join candidate's neighbor to begin with).
	block := ast.Block{
		ast.Pattern{Lhs: ast.Dot{Lhs: ast.Variable{Name: "x"}, Rhs: "name"}, Rhs: ast.Constant{Value: eav.Str("a")}},
	}
	plan, err := compile(t, block)
	require.NoError(t, err)

	var narrows, joins int
	for _, c := range plan.Constraints {
		switch c.(type) {
		case Narrow:
			narrows++
		case Join:
			joins++
		}
	}
	assert.Equal(t, 2, narrows, "attribute and value slots are both constant-fixed")
	assert.Equal(t, 1, joins, "only x's own slot still needs a row lookup")
}

// TestPlanAgeSumWithFreeVariableFails pins down the Open Question from
// spec §9 ("x.age = 30 + z" slot-order ambiguity): constant promotion puts
// the "30" constant's slot and "x.age"'s own value-slot ahead of z's
// purely-variable slot, and z has no constant/rowcol/function-result
// binding it, so compilation fails at emission time with
// ErrNoConstraintsOnSlot rather than a run-time type error.
func TestPlanAgeSumWithFreeVariableFails(t *testing.T) {
	block := ast.Block{
		ast.Pattern{
			Lhs: ast.Dot{Lhs: ast.Variable{Name: "x"}, Rhs: "age"},
			Rhs: ast.Function{Name: "+", Args: []ast.Expr{
				ast.Constant{Value: eav.Int(30)},
				ast.Variable{Name: "z"},
			}},
		},
	}
	_, err := compile(t, block)
	require.Error(t, err)
	assert.True(t, eav.ErrNoConstraintsOnSlot.Is(err), "expected ErrNoConstraintsOnSlot, got %v", err)
}

func TestPlanUnknownFunctionRejectedAtCompileTime(t *testing.T) {
	block := ast.Block{
		ast.Pattern{
			Lhs: ast.Variable{Name: "x"},
			Rhs: ast.Function{Name: "mystery", Args: []ast.Expr{ast.Constant{Value: eav.Int(1)}}},
		},
	}
	_, err := compile(t, block)
	require.Error(t, err)
	assert.True(t, eav.ErrUnknownFunction.Is(err))
}

func TestPlanRowOrderingSortedBySlotOrder(t *testing.T) {
	// x.name = "a" — row [x, "name", dot] has the constant-promoted "name"
	// slot and (indirectly) the value slot ahead of x's own slot, so the
	// computed ordering must not be the identity [0,1,2] in general; check
	// it lists the row's columns in ascending slot index.
	block := ast.Block{
		ast.Pattern{Lhs: ast.Dot{Lhs: ast.Variable{Name: "x"}, Rhs: "name"}, Rhs: ast.Constant{Value: eav.Str("a")}},
	}
	flat, rows, patterns, asserts, err := ir.Translate(block)
	require.NoError(t, err)
	slots, err := ir.BuildSlots(flat, patterns)
	require.NoError(t, err)
	plan, err := Plan(flat, rows, slots, asserts)
	require.NoError(t, err)

	require.Len(t, plan.RowOrderings, 1)
	ordering := plan.RowOrderings[0]
	row := rows[0]
	exprOf := [3]int{row.E, row.A, row.Dot}
	for i := 0; i+1 < 3; i++ {
		a := slots.ExprSlot[exprOf[ordering[i]]]
		b := slots.ExprSlot[exprOf[ordering[i+1]]]
		assert.LessOrEqual(t, a, b)
	}
}

func TestPlanNoConstraintsOnSlot(t *testing.T) {
	// A bare Pattern between two distinct fresh variables with nothing
	// else referencing them: "x = y" alone still has rowcols? No —
	// neither x nor y appears in any Dot, so their shared slot has no
	// constant, no function, and no rowcol at all.
	block := ast.Block{
		ast.Pattern{Lhs: ast.Variable{Name: "x"}, Rhs: ast.Variable{Name: "y"}},
	}
	_, err := compile(t, block)
	require.Error(t, err)
	assert.True(t, eav.ErrNoConstraintsOnSlot.Is(err))
}
