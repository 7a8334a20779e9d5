// Package eav defines the data model shared by the rest of impql: the
// tagged Value union, Entity bundles, EAV Triples, and the in-memory Bag
// that stores them.
package eav

import "gopkg.in/src-d/go-errors.v1"

// Error kinds for the compiler and executor. Each is a reusable template;
// callers produce a concrete error with Kind.New(args...).
var (
	// ErrImpossibleConstraint is returned when a slot is unified with two
	// distinct constants.
	ErrImpossibleConstraint = errors.NewKind("impossible constraint")

	// ErrNoConstraintsOnSlot is returned when a slot has no constant, no
	// function, and no row reference to fix its value.
	ErrNoConstraintsOnSlot = errors.NewKind("no constraints on slot %d")

	// ErrUnknownFunction is returned at compile time for an unrecognized
	// function name or an unsupported argument count.
	ErrUnknownFunction = errors.NewKind("I don't know any function called %s with %d arguments")

	// ErrTypeError is returned at run time when Apply's arguments don't
	// match the function's expected operand types.
	ErrTypeError = errors.NewKind("type error: %v + %v")
)
