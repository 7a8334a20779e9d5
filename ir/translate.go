// Package ir flattens a parsed ast.Block into a dense, indexed expression
// list and computes the equivalence classes ("slots") that drive planning.
package ir

import (
	"github.com/impql/impql/ast"
	"github.com/impql/impql/eav"
)

// Kind identifies which variant of Node is populated.
type Kind int

const (
	KConstant Kind = iota
	KVariable
	KFunction
	KDot
)

// Node is one flattened expression. Constant holds Value for KConstant;
// Name holds the variable or function name for KVariable/KFunction; Args
// holds argument indices for KFunction; Lhs/Rhs hold the entity-expr index
// and attribute-constant-expr index for KDot.
type Node struct {
	Kind     Kind
	Constant eav.Value
	Name     string
	Args     []int
	Lhs      int
	Rhs      int
}

// Flat is the dense pre-order... — more precisely, children-before-parent
// — expression list produced by Translate. Node indices are stable: every
// child's index is strictly less than its parent's, which the planner
// relies on for "appearance order" (spec §4.3).
type Flat struct {
	Nodes []Node
}

func (f *Flat) push(n Node) int {
	f.Nodes = append(f.Nodes, n)
	return len(f.Nodes) - 1
}

// Row is one Dot(e, a) IR node's triple of expr indices: the entity
// expr, the attribute-constant expr, and the Dot expr itself. Rows are
// the only way a block queries the Bag (spec §3).
type Row struct {
	E, A, Dot int
}

// PatternStmt is a compiled Pattern statement: the expr indices of its two
// operands.
type PatternStmt struct {
	Lhs, Rhs int
}

// AssertStmt is a compiled Assert statement: the expr indices of its
// entity, attribute (always a freshly pushed Constant(String) node), and
// value.
type AssertStmt struct {
	Entity, Attribute, Value int
}

// Translate flattens block into a Flat expression list, collecting Row,
// PatternStmt, and AssertStmt descriptors in source order.
func Translate(block ast.Block) (*Flat, []Row, []PatternStmt, []AssertStmt, error) {
	f := &Flat{}
	var patterns []PatternStmt
	var asserts []AssertStmt

	for _, stmt := range block {
		switch s := stmt.(type) {
		case ast.Pattern:
			lhs, err := translateExpr(f, s.Lhs)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			rhs, err := translateExpr(f, s.Rhs)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			patterns = append(patterns, PatternStmt{Lhs: lhs, Rhs: rhs})
		case ast.Assert:
			entity, err := translateExpr(f, s.Entity)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			attr := f.push(Node{Kind: KConstant, Constant: eav.Str(s.Attribute)})
			value, err := translateExpr(f, s.Value)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			asserts = append(asserts, AssertStmt{Entity: entity, Attribute: attr, Value: value})
		}
	}

	var rows []Row
	for i, n := range f.Nodes {
		if n.Kind == KDot {
			rows = append(rows, Row{E: n.Lhs, A: n.Rhs, Dot: i})
		}
	}

	return f, rows, patterns, asserts, nil
}

// translateExpr pushes e's children (recursively) before e itself, so the
// returned index is always greater than every index it references.
func translateExpr(f *Flat, e ast.Expr) (int, error) {
	switch n := e.(type) {
	case ast.Constant:
		return f.push(Node{Kind: KConstant, Constant: n.Value}), nil
	case ast.Variable:
		return f.push(Node{Kind: KVariable, Name: n.Name}), nil
	case ast.Function:
		args := make([]int, len(n.Args))
		for i, a := range n.Args {
			idx, err := translateExpr(f, a)
			if err != nil {
				return 0, err
			}
			args[i] = idx
		}
		return f.push(Node{Kind: KFunction, Name: n.Name, Args: args}), nil
	case ast.Dot:
		lhs, err := translateExpr(f, n.Lhs)
		if err != nil {
			return 0, err
		}
		rhs := f.push(Node{Kind: KConstant, Constant: eav.Str(n.Rhs)})
		return f.push(Node{Kind: KDot, Lhs: lhs, Rhs: rhs}), nil
	default:
		panic("ir: unknown ast.Expr variant")
	}
}
