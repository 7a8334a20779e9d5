// Package ast defines the external surface of a parsed impql program: the
// expression and statement trees that lang.ParseProgram produces and ir.Translate
// consumes. It carries no behavior of its own — just the shapes named by
// spec.md §6.1's grammar.
package ast

import "github.com/impql/impql/eav"

// Expr is any expression: a constant, a variable reference, a function
// call, or a dotted attribute access.
type Expr interface {
	exprNode()
}

// Constant is a literal value appearing directly in source.
type Constant struct {
	Value eav.Value
}

// Variable is a bare identifier, e.g. x or z.
type Variable struct {
	Name string
}

// Function is a named function applied to a fixed argument list, e.g.
// plus(a, b).
type Function struct {
	Name string
	Args []Expr
}

// Dot is an attribute access, e.g. x.name — Lhs is the entity expression,
// Rhs names the attribute.
type Dot struct {
	Lhs Expr
	Rhs string
}

func (Constant) exprNode() {}
func (Variable) exprNode() {}
func (Function) exprNode() {}
func (Dot) exprNode()      {}

// Statement is any top-level statement in a block: a Pattern (equality
// constraint) or an Assert (a fact to record).
type Statement interface {
	stmtNode()
}

// Pattern is an equality constraint between two expressions, e.g.
// x.name = "a".
type Pattern struct {
	Lhs Expr
	Rhs Expr
}

// Assert records Attribute=Value on the entity named by Entity, e.g.
// + x.age = 31.
type Assert struct {
	Entity    Expr
	Attribute string
	Value     Expr
}

func (Pattern) stmtNode() {}
func (Assert) stmtNode()  {}

// Block is an ordered sequence of statements — one blank-line-separated
// block of a program (lang.ParseProgram), the unit driver.Session.RunAt runs.
type Block []Statement
