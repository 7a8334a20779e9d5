// Package driver wires the core compiler+executor to an editor-style
// front end: one Session per open file, parsing every block up front and
// compiling and running whichever block the caller's cursor currently sits in
// (spec §6.3). It owns the Bag across runs and applies each run's
// asserted triples back onto it afterward, outside the read-only core.
package driver

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/impql/impql/eav"
	"github.com/impql/impql/exec"
	"github.com/impql/impql/ir"
	"github.com/impql/impql/lang"
	"github.com/impql/impql/planner"
)

// Outcome reports what happened running the block at a cursor. Exactly
// one of ParseErr, CompileErr, RunErr is set on failure; all are nil on
// success.
type Outcome struct {
	ParseErr   error
	CompileErr error
	RunErr     error
	Named      []string
	Results    [][]eav.Value
	Asserts    [][3]eav.Value
}

// Observer is notified after every RunAt call, win or lose — the same
// narrow-interface role the teacher's auth.AuditMethod plays for audit
// logging. LogObserver below is the logrus-backed implementation.
type Observer interface {
	ObserveRun(cursor int, outcome Outcome)
}

// LogObserver is an Observer that writes one structured line per run via
// logrus, mirroring auth.AuditMethod's own logrus-backed implementation.
type LogObserver struct {
	Log *logrus.Entry
}

// ObserveRun logs cursor, result counts, and any error at Info level.
func (o LogObserver) ObserveRun(cursor int, outcome Outcome) {
	if o.Log == nil {
		return
	}
	fields := logrus.Fields{
		"cursor":  cursor,
		"results": len(outcome.Results),
		"asserts": len(outcome.Asserts),
	}
	switch {
	case outcome.ParseErr != nil:
		o.Log.WithFields(fields).WithError(outcome.ParseErr).Info("block parse error")
	case outcome.CompileErr != nil:
		o.Log.WithFields(fields).WithError(outcome.CompileErr).Info("block compile error")
	case outcome.RunErr != nil:
		o.Log.WithFields(fields).WithError(outcome.RunErr).Info("block run error")
	default:
		o.Log.WithFields(fields).Info("block run ok")
	}
}

// Session is one connection between a program's text and a Bag: it
// parses every block of the text once, then compiles and runs the block at
// a given cursor against the Bag as many times as asked, applying each
// run's asserts before the next.
type Session struct {
	mu       sync.Mutex
	bag      *eav.Bag
	blocks   []lang.Block
	observer Observer
	log      *logrus.Entry
	nextRef  int
}

// NewSession parses code into blocks and pairs it with bag. obs and log
// may be nil.
func NewSession(bag *eav.Bag, code string, obs Observer, log *logrus.Entry) *Session {
	return &Session{
		bag:      bag,
		blocks:   lang.ParseProgram(code),
		observer: obs,
		log:      log,
	}
}

// Bag returns the session's underlying store, for callers that want to
// inspect or persist it (e.g. via the bagio package) between runs.
func (s *Session) Bag() *eav.Bag {
	return s.bag
}

// RunAt compiles and runs the block whose character range contains
// cursor. A parse or compile error is scoped to that block only — other
// blocks in the session are unaffected by it, and remain runnable at
// their own cursors.
func (s *Session) RunAt(cursor int) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	block, ok := lang.BlockAt(s.blocks, cursor)
	if !ok {
		out := Outcome{ParseErr: fmt.Errorf("driver: no block contains cursor %d", cursor)}
		s.notify(cursor, out)
		return out
	}
	if block.Err != nil {
		out := Outcome{ParseErr: block.Err}
		s.notify(cursor, out)
		return out
	}

	flat, rows, patterns, asserts, err := ir.Translate(block.Stmts)
	if err != nil {
		out := Outcome{CompileErr: err}
		s.notify(cursor, out)
		return out
	}
	slots, err := ir.BuildSlots(flat, patterns)
	if err != nil {
		out := Outcome{CompileErr: err}
		s.notify(cursor, out)
		return out
	}
	plan, err := planner.Plan(flat, rows, slots, asserts)
	if err != nil {
		out := Outcome{CompileErr: err}
		s.notify(cursor, out)
		return out
	}

	result, err := exec.Run(plan, s.bag, s.log)
	if err != nil {
		out := Outcome{RunErr: err}
		s.notify(cursor, out)
		return out
	}

	out := Outcome{Named: result.Named, Results: result.Rows(), Asserts: result.Asserts}
	s.applyAsserts(result.Asserts)
	s.notify(cursor, out)
	return out
}

// applyAsserts writes each asserted (entity, attribute, value) triple
// back onto the Bag, resolving the entity Value to its existing ref when
// one matches and minting a fresh ref otherwise.
func (s *Session) applyAsserts(asserts [][3]eav.Value) {
	for _, a := range asserts {
		ref, ok := s.bag.RefForEntityValue(a[0])
		if !ok {
			ref = eav.Ref(fmt.Sprintf("ref#assert-%d", s.nextRef))
			s.nextRef++
		}
		s.bag.Assert(ref, a[1].AsString(), a[2])
	}
}

func (s *Session) notify(cursor int, out Outcome) {
	if s.observer != nil {
		s.observer.ObserveRun(cursor, out)
	}
}
