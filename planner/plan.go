// Package planner turns a flattened, slot-classed block into a linear
// constraint program (spec §4.5) plus the per-row column orderings the
// index package needs to build sorted indexes (spec §4.6).
package planner

import "github.com/impql/impql/eav"

// RowCol names one column of one row: Row is an index into the block's
// row list (one entry per Dot expression), Col is 0 (entity), 1
// (attribute), or 2 (value).
type RowCol struct {
	Row, Col int
}

// NamedSlot pairs a slot with the first variable name that refers to it,
// for result materialization by Debug.
type NamedSlot struct {
	Name string
	Slot int
}

// Constraint is one instruction of the linear constraint program (spec
// §4.9). Exactly one of the concrete types below populates a given
// Constraint slice entry.
type Constraint interface {
	constraintNode()
}

// Narrow intersects variables[Slot] against column RowCol.Col of row
// RowCol.Row within its current active range.
type Narrow struct {
	RowCol RowCol
	Slot   int
}

// Join iterates RowCols[0] (the leader) in ascending value order,
// confirming each value is present in every other listed (row, col), and
// binds Slot to the confirmed value.
type Join struct {
	RowCols []RowCol
	Slot    int
}

// Apply computes variables[Slot] from calling Func on the current values
// of ArgSlots. If AlreadyFixed, the call only succeeds when its result
// equals the slot's current value; otherwise it assigns the slot.
type Apply struct {
	Slot         int
	ArgSlots     []int
	Func         string
	AlreadyFixed bool
}

// AssertC appends (variables[Slots[0]], variables[Slots[1]],
// variables[Slots[2]]) to the run's collected asserts.
type AssertC struct {
	Slots [3]int
}

// DebugC appends variables[s.Slot] for each Named entry to the run's
// results, in order.
type DebugC struct {
	Named []NamedSlot
}

func (Narrow) constraintNode()  {}
func (Join) constraintNode()    {}
func (Apply) constraintNode()   {}
func (AssertC) constraintNode() {}
func (DebugC) constraintNode()  {}

// Block is the compiled, executable form of one program block.
type Block struct {
	// RowOrderings[row] is a permutation of {0,1,2} giving the column
	// order the index package sorts that row's triples by.
	RowOrderings [][3]int
	// Variables[slot] is the initial value loaded into that slot's cell
	// before execution — the preloaded constant if the slot has one,
	// Boolean(false) as a harmless placeholder otherwise.
	Variables []eav.Value
	// HasConstant[slot] reports whether Variables[slot] is a real preloaded
	// constant rather than the Boolean(false) placeholder. The dataflow
	// cross-check oracle uses this to know which slots it must enumerate
	// rather than take as given.
	HasConstant []bool
	// Constraints is the linear program the executor runs in order.
	Constraints []Constraint
}
