package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impql/impql/ast"
	"github.com/impql/impql/eav"
)

func mustTranslate(t *testing.T, block ast.Block) (*Flat, []Row, []PatternStmt, []AssertStmt) {
	t.Helper()
	flat, rows, patterns, asserts, err := Translate(block)
	require.NoError(t, err)
	return flat, rows, patterns, asserts
}

func TestBuildSlotsUnifiesSameVariable(t *testing.T) {
	// x.name = y  y = "a" — both occurrences of x share a slot, both of y
	// share a slot, and the pattern unifies y's slot with the constant.
	block := ast.Block{
		ast.Pattern{Lhs: ast.Dot{Lhs: ast.Variable{Name: "x"}, Rhs: "name"}, Rhs: ast.Variable{Name: "y"}},
		ast.Pattern{Lhs: ast.Variable{Name: "y"}, Rhs: ast.Constant{Value: eav.Str("a")}},
	}
	flat, _, patterns, _ := mustTranslate(t, block)
	slots, err := BuildSlots(flat, patterns)
	require.NoError(t, err)

	ySlot1 := slots.ExprSlot[patterns[0].Rhs]
	ySlot2 := slots.ExprSlot[patterns[1].Lhs]
	assert.Equal(t, ySlot1, ySlot2)

	constSlot := slots.ExprSlot[patterns[1].Rhs]
	assert.Equal(t, ySlot1, constSlot, "pattern union must merge y's slot with the constant's slot")
}

func TestBuildSlotsPromotesConstantOnlySlots(t *testing.T) {
	block := ast.Block{
		ast.Pattern{Lhs: ast.Dot{Lhs: ast.Variable{Name: "x"}, Rhs: "name"}, Rhs: ast.Constant{Value: eav.Str("a")}},
	}
	flat, rows, patterns, _ := mustTranslate(t, block)
	slots, err := BuildSlots(flat, patterns)
	require.NoError(t, err)

	// The pattern unifies the Dot with "a", so compare against x's slot,
	// which appears first in source order.
	constSlot := slots.ExprSlot[patterns[0].Rhs]
	xSlot := slots.ExprSlot[rows[0].E]
	assert.Less(t, constSlot, xSlot, "constant-only slot must be promoted before x's own slot")
}

func TestBuildSlotsImpossibleConstant(t *testing.T) {
	// x = 1  x = 2 — x's slot ends up holding two distinct constants.
	block := ast.Block{
		ast.Pattern{Lhs: ast.Variable{Name: "x"}, Rhs: ast.Constant{Value: eav.Int(1)}},
		ast.Pattern{Lhs: ast.Variable{Name: "x"}, Rhs: ast.Constant{Value: eav.Int(2)}},
	}
	flat, _, patterns, _ := mustTranslate(t, block)
	_, err := BuildSlots(flat, patterns)
	assert.True(t, eav.ErrImpossibleConstraint.Is(err))
}

func TestBuildSlotsAppearanceOrder(t *testing.T) {
	// y = "b"  x.name = "a" — non-promoted slots keep their first-appearance
	// order; here both patterns promote (both are constant slots), so check
	// that promotion preserves relative order among multiple promotions.
	block := ast.Block{
		ast.Pattern{Lhs: ast.Variable{Name: "y"}, Rhs: ast.Constant{Value: eav.Str("b")}},
		ast.Pattern{Lhs: ast.Dot{Lhs: ast.Variable{Name: "x"}, Rhs: "name"}, Rhs: ast.Constant{Value: eav.Str("a")}},
	}
	flat, _, patterns, _ := mustTranslate(t, block)
	slots, err := BuildSlots(flat, patterns)
	require.NoError(t, err)

	ySlot := slots.ExprSlot[patterns[0].Lhs]
	aSlot := slots.ExprSlot[patterns[1].Rhs]
	assert.Less(t, ySlot, aSlot)
}
